// Package git reads the revision of the documentation source tree so builds
// can record which commit they were generated from.
package git

import (
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ShortLength is the number of hex digits kept in Revision.Short.
const ShortLength = 12

// Revision identifies the HEAD commit of a repository.
type Revision struct {
	Hash   string
	Short  string
	Branch string // empty for a detached HEAD
}

// IsZero reports whether no revision was found.
func (r Revision) IsZero() bool { return r.Hash == "" }

// HeadRevision opens the repository containing path (searching parent
// directories for .git) and returns its HEAD commit. A path outside any
// repository, or a repository without commits, yields a zero Revision and
// no error.
func HeadRevision(path string) (Revision, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return Revision{}, nil
		}
		return Revision{}, fmt.Errorf("open repository at %s: %w", path, err)
	}
	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return Revision{}, nil
		}
		return Revision{}, fmt.Errorf("resolve HEAD: %w", err)
	}

	hash := head.Hash().String()
	rev := Revision{Hash: hash, Short: hash}
	if len(hash) > ShortLength {
		rev.Short = hash[:ShortLength]
	}
	if head.Name().IsBranch() {
		rev.Branch = head.Name().Short()
	}
	return rev, nil
}

package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

func commitFile(t *testing.T, repo *gogit.Repository, dir, name string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("# "+name+"\n"), 0o600))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)
	hash, err := wt.Commit("add "+name, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Docs", Email: "docs@example.com", When: time.Unix(1700000000, 0)},
	})
	require.NoError(t, err)
	return hash.String()
}

func TestHeadRevision(t *testing.T) {
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	want := commitFile(t, repo, dir, "intro.md")

	sub := filepath.Join(dir, "documentation", "pages")
	require.NoError(t, os.MkdirAll(sub, 0o750))

	rev, err := HeadRevision(sub)
	require.NoError(t, err)
	require.Equal(t, want, rev.Hash)
	require.Equal(t, want[:ShortLength], rev.Short)
	require.Equal(t, "master", rev.Branch)
	require.False(t, rev.IsZero())
}

func TestHeadRevision_NotARepository(t *testing.T) {
	rev, err := HeadRevision(t.TempDir())
	require.NoError(t, err)
	require.True(t, rev.IsZero())
}

func TestHeadRevision_NoCommits(t *testing.T) {
	dir := t.TempDir()
	_, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	rev, err := HeadRevision(dir)
	require.NoError(t, err)
	require.True(t, rev.IsZero())
}

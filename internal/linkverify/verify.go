package linkverify

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// BrokenLink is a local link whose target is missing.
type BrokenLink struct {
	Page   string // page path relative to the site root
	Target string // link as written
	Tag    string
}

func (b BrokenLink) String() string {
	return fmt.Sprintf("%s: <%s> %s", b.Page, b.Tag, b.Target)
}

// Result summarizes a verification run.
type Result struct {
	Pages  int
	Links  int
	Broken []BrokenLink
}

// VerifyDir checks every .html file under root. A missing root is reported
// through the returned error so callers can tell "nothing generated" apart
// from "no broken links".
func VerifyDir(root string) (Result, error) {
	var res Result
	if _, err := os.Stat(root); err != nil {
		return res, fmt.Errorf("site root %s: %w", root, err)
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".html") {
			return nil
		}
		res.Pages++
		return verifyPage(root, path, &res)
	})
	if err != nil {
		return res, err
	}
	sort.Slice(res.Broken, func(i, j int) bool {
		if res.Broken[i].Page != res.Broken[j].Page {
			return res.Broken[i].Page < res.Broken[j].Page
		}
		return res.Broken[i].Target < res.Broken[j].Target
	})
	return res, nil
}

func verifyPage(root, path string, res *Result) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	links, err := ExtractLinks(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	rel, _ := filepath.Rel(root, path)
	seen := make(map[string]struct{})
	for _, l := range links {
		target, ok := LocalPath(l.URL)
		if !ok {
			continue
		}
		res.Links++
		if _, dup := seen[l.URL]; dup {
			continue
		}
		seen[l.URL] = struct{}{}

		var full string
		if strings.HasPrefix(target, "/") {
			full = filepath.Join(root, filepath.FromSlash(target))
		} else {
			full = filepath.Join(filepath.Dir(path), filepath.FromSlash(target))
		}
		if _, err := os.Stat(full); errors.Is(err, os.ErrNotExist) {
			res.Broken = append(res.Broken, BrokenLink{Page: filepath.ToSlash(rel), Target: l.URL, Tag: l.Tag})
		}
	}
	return nil
}

// Package markdown rewrites tutorial Markdown into the dialect the
// documentation generator understands.
package markdown

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/doxybuild/internal/logfields"
)

// DefaultFenceLanguages maps fenced code block languages to the class syntax
// the generator uses for highlighting.
var DefaultFenceLanguages = map[string]string{
	"python": "{.py}",
	"cpp":    "{.cpp}",
}

// FenceEdits returns one edit per fenced code block whose language is a key
// of languages, replacing the language token on the opening fence. Block
// contents and unmapped fences are left alone.
func FenceEdits(source []byte, languages map[string]string) []Edit {
	if len(languages) == 0 {
		return nil
	}
	root := goldmark.New().Parser().Parse(text.NewReader(source))

	var edits []Edit
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		fence, ok := n.(*gmast.FencedCodeBlock)
		if !ok || fence.Info == nil {
			return gmast.WalkContinue, nil
		}
		lang := fence.Language(source)
		replacement, ok := languages[string(lang)]
		if !ok {
			return gmast.WalkSkipChildren, nil
		}
		start := fence.Info.Segment.Start
		edits = append(edits, Edit{Start: start, End: start + len(lang), Replacement: []byte(replacement)})
		return gmast.WalkSkipChildren, nil
	})
	return edits
}

// ConvertFences applies FenceEdits to source and reports how many fences changed.
func ConvertFences(source []byte, languages map[string]string) ([]byte, int, error) {
	edits := FenceEdits(source, languages)
	out, err := ApplyEdits(source, edits)
	if err != nil {
		return nil, 0, err
	}
	return out, len(edits), nil
}

// ConvertFile reads src, converts its fences and writes the result to dst
// with src's permission bits and modification time.
func ConvertFile(src, dst string, languages map[string]string) (int, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", src, err)
	}
	// #nosec G304 -- src is a tutorial from the configured source tree.
	raw, err := os.ReadFile(src)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", src, err)
	}
	out, n, err := ConvertFences(raw, languages)
	if err != nil {
		return 0, fmt.Errorf("convert fences in %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return 0, fmt.Errorf("create directory for %s: %w", dst, err)
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("replace %s: %w", dst, err)
	}
	if err := os.WriteFile(dst, out, info.Mode().Perm()); err != nil {
		return 0, fmt.Errorf("write %s: %w", dst, err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return 0, fmt.Errorf("set times on %s: %w", dst, err)
	}
	if n > 0 {
		slog.Debug("Rewrote code fences", logfields.File(src), logfields.Count(n))
	}
	return n, nil
}

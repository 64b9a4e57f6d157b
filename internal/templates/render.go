package templates

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/doxybuild/internal/logfields"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([0-9A-Za-z_]+)\s*\}\}`)

// Render substitutes every placeholder in text with its parameter value.
func Render(text string, params Parameters) (string, error) {
	out, _, err := render(text, params)
	return out, err
}

func render(text string, params Parameters) (string, []string, error) {
	matches := placeholderPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil, nil
	}
	var b strings.Builder
	b.Grow(len(text))
	used := make([]string, 0, len(matches))
	last := 0
	for _, m := range matches {
		name := text[m[2]:m[3]]
		value, err := params.Get(name)
		if err != nil {
			return "", nil, err
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(value)
		last = m[1]
		used = append(used, name)
	}
	b.WriteString(text[last:])
	return b.String(), used, nil
}

// RenderFile renders the template at src and writes the result to dst,
// replacing any existing file. Nothing is written when rendering fails.
func RenderFile(src, dst string, params Parameters) error {
	// #nosec G304 -- src comes from the build configuration.
	raw, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read template %s: %w", src, err)
	}
	out, used, err := render(string(raw), params)
	if err != nil {
		return fmt.Errorf("render %s: %w", src, err)
	}
	for _, name := range used {
		v, _ := params.Get(name)
		slog.Debug("Substituted template parameter", logfields.Parameter(name), slog.String("value", v), logfields.File(src))
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(dst, []byte(out), 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", dst, err)
	}
	return nil
}

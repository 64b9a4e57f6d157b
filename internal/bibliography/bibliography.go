// Package bibliography embeds a BibTeX payload into the script template the
// generated site loads its citations from.
package bibliography

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPlaceholder is the token replaced in the script template.
const DefaultPlaceholder = "$bibliography"

var escaper = strings.NewReplacer("'", `\'`, "\n", "", "\r", "")

// Escape makes text safe inside a single-quoted script string literal:
// single quotes are backslash-escaped and line breaks removed.
func Escape(text string) string {
	return escaper.Replace(text)
}

// Inject replaces every occurrence of placeholder in tmpl with the escaped bibliography.
func Inject(tmpl, bibliography, placeholder string) string {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return strings.ReplaceAll(tmpl, placeholder, Escape(bibliography))
}

// Prepare reads the bibliography at bibPath and the script template at
// templatePath and writes the filled-in script to outPath.
func Prepare(bibPath, templatePath, outPath, placeholder string) error {
	// #nosec G304 -- paths come from the build configuration.
	bib, err := os.ReadFile(bibPath)
	if err != nil {
		return fmt.Errorf("read bibliography: %w", err)
	}
	// #nosec G304 -- paths come from the build configuration.
	tmpl, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("read bibliography template: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return fmt.Errorf("create bibliography directory: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(Inject(string(tmpl), string(bib), placeholder)), 0o600); err != nil {
		return fmt.Errorf("write bibliography script: %w", err)
	}
	return nil
}

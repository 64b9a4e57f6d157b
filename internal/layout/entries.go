package layout

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultRefPrefix is the identifier prefix the generator gives Markdown pages.
const DefaultRefPrefix = "md_pages_"

// ErrMissingHeading is returned when a page does not start with a level-1 heading.
var ErrMissingHeading = errors.New("missing level-1 heading on first line")

var headingPattern = regexp.MustCompile(`^#[ \t]+([\p{L}\p{N}_][\p{L}\p{N}_ \t]*)`)

// Entry is one Markdown page destined for the navigation.
type Entry struct {
	RefID string
	Title string
	Path  string
}

// ExtractHeadingTitle reads only the first line of r and returns the title of
// its level-1 heading. The title runs over letters, digits, underscores and
// blanks, so "# Getting Started!" yields "Getting Started". name identifies
// the source in errors.
func ExtractHeadingTitle(r io.Reader, name string) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	line = strings.TrimPrefix(line, "\ufeff")
	line = strings.TrimRight(line, "\r\n")
	line = norm.NFC.String(line)

	m := headingPattern.FindStringSubmatch(line)
	if m == nil {
		return "", fmt.Errorf("%w: %s", ErrMissingHeading, name)
	}
	title := strings.TrimSpace(m[1])
	if title == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingHeading, name)
	}
	return title, nil
}

// RefID derives the page identifier from a file name: the extension is
// dropped and hyphens become underscores.
func RefID(prefix, fileName string) string {
	stem := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	return prefix + strings.ReplaceAll(stem, "-", "_")
}

// CollectEntries returns an Entry for every ".md" file in dir, in
// lexicographic file name order, skipping names listed in exclude. A missing
// dir yields no entries.
func CollectEntries(dir, prefix string, exclude ...string) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	skip := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		skip[name] = struct{}{}
	}

	var entries []Entry
	for _, f := range files {
		name := f.Name()
		if !f.Type().IsRegular() || filepath.Ext(name) != ".md" {
			continue
		}
		if _, ok := skip[name]; ok {
			continue
		}
		path := filepath.Join(dir, name)
		title, err := readTitle(path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{RefID: RefID(prefix, name), Title: title, Path: path})
	}
	return entries, nil
}

// CollectTutorials is CollectEntries over a tutorials directory.
func CollectTutorials(dir, prefix string) ([]Entry, error) {
	return CollectEntries(dir, prefix)
}

func readTitle(path string) (string, error) {
	// #nosec G304 -- path is a listed entry of a configured source directory.
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return ExtractHeadingTitle(f, path)
}

// Package diff renders unified diffs between two versions of a text file.
package diff

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultContext is the number of context lines around each hunk.
const DefaultContext = 3

// Unified returns a unified diff turning a into b with context lines around
// each hunk. A negative context selects DefaultContext; zero shows only the
// changed lines. The result is empty when the inputs are identical.
func Unified(aName, bName string, a, b []byte, context int) (string, error) {
	if context < 0 {
		context = DefaultContext
	}
	u := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: aName,
		ToFile:   bName,
		Context:  context,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return "", fmt.Errorf("diff %s: %w", bName, err)
	}
	return s, nil
}

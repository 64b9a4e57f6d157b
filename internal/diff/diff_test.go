package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	layoutBefore = []byte("<navindex>\n  <tab type=\"mainpage\"/>\n  <tab type=\"namespaces\"/>\n</navindex>\n")
	layoutAfter  = []byte("<navindex>\n  <tab type=\"mainpage\"/>\n  <tab type=\"user\" url=\"@ref md_pages_setup\"/>\n  <tab type=\"namespaces\"/>\n</navindex>\n")
)

func TestUnified(t *testing.T) {
	out, err := Unified("a/DoxygenLayout.xml", "b/DoxygenLayout.xml", layoutBefore, layoutAfter, DefaultContext)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "--- a/DoxygenLayout.xml\n+++ b/DoxygenLayout.xml\n"))
	require.Contains(t, out, "@@ -1,5 +1,6 @@")
	require.Contains(t, out, " <navindex>\n")
	require.Contains(t, out, "+  <tab type=\"user\" url=\"@ref md_pages_setup\"/>\n")
}

func TestUnified_ContextLines(t *testing.T) {
	zero, err := Unified("a", "b", layoutBefore, layoutAfter, 0)
	require.NoError(t, err)
	require.Contains(t, zero, "@@ -2,0 +3 @@")
	require.NotContains(t, zero, "<navindex>")

	def, err := Unified("a", "b", layoutBefore, layoutAfter, DefaultContext)
	require.NoError(t, err)
	negative, err := Unified("a", "b", layoutBefore, layoutAfter, -1)
	require.NoError(t, err)
	require.Equal(t, def, negative)
	require.NotEqual(t, zero, def)
}

func TestUnified_Identical(t *testing.T) {
	out, err := Unified("a", "b", []byte("x\n"), []byte("x\n"), 1)
	require.NoError(t, err)
	require.Empty(t, out)
}

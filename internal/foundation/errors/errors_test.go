package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

var errSentinel = stdErrors.New("anchor not found")

func TestBuilder_CarriesCategorySeverityAndContext(t *testing.T) {
	err := WrapError(errSentinel, CategoryLayout, "cannot insert tutorials").
		Fatal().
		WithContext("anchor", "namespaces").
		Build()

	require.Equal(t, CategoryLayout, err.Category())
	require.True(t, err.IsFatal())
	v, ok := err.Context().GetString("anchor")
	require.True(t, ok)
	require.Equal(t, "namespaces", v)
	require.ErrorIs(t, err, errSentinel)
}

func TestAsClassified_FindsWrappedError(t *testing.T) {
	inner := TemplateError("unknown parameter").WithContext("name", "foo").Build()
	wrapped := fmt.Errorf("generate_config: %w", inner)

	got, ok := AsClassified(wrapped)
	require.True(t, ok)
	require.Same(t, inner, got)
	require.True(t, HasCategory(wrapped, CategoryTemplate))
	require.Equal(t, CategoryInternal, GetCategory(stdErrors.New("plain")))
}

func TestDescribe_SortsContextKeys(t *testing.T) {
	err := LayoutError("anchor tab not found").
		WithContext("file", "DoxygenLayout.xml").
		WithContext("anchor", "mainpage").
		Build()
	require.Equal(t, "anchor tab not found (anchor=mainpage, file=DoxygenLayout.xml)", err.Describe())
}

func TestWithContext_DoesNotMutateOriginal(t *testing.T) {
	base := ConfigError("bad config").Build()
	extended := base.WithContext("path", "doxybuild.yaml")

	_, ok := base.Context().Get("path")
	require.False(t, ok)
	_, ok = extended.Context().Get("path")
	require.True(t, ok)
}

package errors

import (
	"bytes"
	stdErrors "errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, quietLogger())

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"unclassified", stdErrors.New("boom"), 1},
		{"validation", ValidationError("bad version").Build(), 2},
		{"config", ConfigError("bad config").Build(), 7},
		{"tool", ToolError("doxygen missing").Build(), 8},
		{"layout", LayoutError("anchor").Build(), 11},
		{"template", TemplateError("unknown parameter").Build(), 11},
		{"internal", InternalError("bug").Build(), 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, adapter.ExitCodeFor(tc.err))
		})
	}
}

func TestReport_PrintsDescriptiveMessage(t *testing.T) {
	var out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, quietLogger()).WithOutput(&out)

	err := LayoutError("missing heading").WithContext("file", "pages/setup.md").Build()
	code := adapter.Report(err)

	require.Equal(t, 11, code)
	require.Equal(t, "Error: missing heading (file=pages/setup.md)\n", out.String())
}

func TestFormatError_VerboseShowsChain(t *testing.T) {
	adapter := NewCLIErrorAdapter(true, quietLogger())
	err := WrapError(stdErrors.New("permission denied"), CategoryFileSystem, "copy failed").Build()
	require.Equal(t, "Error: [filesystem:error] copy failed: permission denied", adapter.FormatError(err))
}

package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/doxybuild/internal/doxygen"
	"git.home.luguber.info/inful/doxybuild/internal/pipeline"
	"git.home.luguber.info/inful/doxybuild/internal/versioning"
)

const testLayout = `<?xml version="1.0" encoding="UTF-8"?>
<doxygenlayout version="1.0">
  <navindex>
    <tab type="mainpage" visible="yes" title=""/>
    <tab type="pages" visible="yes" title="" intro=""/>
    <tab type="namespaces" visible="yes" title=""/>
  </navindex>
</doxygenlayout>
`

// siteRenderer writes an index page into the configured output directory.
type siteRenderer struct{ htmlDir string }

func (r siteRenderer) Execute(_ context.Context, stagingDir, configFile string) (doxygen.Output, error) {
	if _, err := os.Stat(filepath.Join(stagingDir, configFile)); err != nil {
		return doxygen.Output{}, err
	}
	if err := os.MkdirAll(r.htmlDir, 0o750); err != nil {
		return doxygen.Output{}, err
	}
	return doxygen.Output{}, os.WriteFile(filepath.Join(r.htmlDir, "index.html"), []byte("<html></html>"), 0o600)
}

func toolAt(version string) pipeline.ToolChecker {
	return func(context.Context, string, versioning.Version, versioning.LessFunc) (versioning.Version, error) {
		return versioning.MustParse(version), nil
	}
}

type project struct {
	root   string
	output string
	config string
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newProject(t *testing.T, layoutXML, extraYAML string) project {
	t.Helper()
	base := t.TempDir()
	p := project{
		root:   filepath.Join(base, "documentation"),
		output: filepath.Join(base, "docs"),
	}
	p.config = filepath.Join(p.root, "doxybuild.yaml")
	files := map[string]string{
		"DoxygenLayout.xml":         layoutXML,
		"movetk-doxy-config.cfg.in": "OUTPUT_DIRECTORY = {{ output_folder }}\nPROJECT_NUMBER = {{ movetk_version }}\n",
		"pages/introduction.md":     "# Introduction\n",
		"pages/usage.md":            "# Usage\n",
		"tutorials/a.md":            "# First Steps\n\n```python\nprint(1)\n```\n",
		"doxybuild.yaml":            "version: \"1\"\nbibliography:\n  enabled: false\n" + extraYAML,
	}
	for rel, content := range files {
		writeFile(t, filepath.Join(p.root, filepath.FromSlash(rel)), content)
	}

	prev := extraGeneratorOptions
	extraGeneratorOptions = []pipeline.Option{
		pipeline.WithRenderer(siteRenderer{htmlDir: filepath.Join(p.output, "html")}),
		pipeline.WithToolChecker(toolAt("1.9.8")),
	}
	t.Cleanup(func() { extraGeneratorOptions = prev })
	return p
}

func run(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = Main(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestInitWritesConfigAndRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doxybuild.yaml")

	code, out, _ := run("-c", path, "init")
	require.Equal(t, 0, code)
	require.Contains(t, out, path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "source:")

	code, _, errOut := run("-c", path, "init")
	require.Equal(t, 2, code)
	require.Contains(t, errOut, "already exists")

	code, _, _ = run("-c", path, "init", "--force")
	require.Equal(t, 0, code)
}

func TestBuildWritesSiteMetricsAndHistory(t *testing.T) {
	p := newProject(t, testLayout, "history:\n  enabled: true\n")
	metricsFile := filepath.Join(t.TempDir(), "doxybuild.prom")

	code, out, errOut := run("-c", p.config, "build", "1.2", "--metrics-file", metricsFile)
	require.Equal(t, 0, code, errOut)
	require.Contains(t, out, "outcome=success")
	require.Contains(t, out, "Documentation for 1.2 written to "+p.output)
	require.FileExists(t, filepath.Join(p.output, "html", "index.html"))

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	require.Contains(t, string(prom), `doxybuild_build_outcomes_total{outcome="success"} 1`)

	code, out, _ = run("-c", p.config, "history", "-n", "5")
	require.Equal(t, 0, code)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "OUTCOME")
	require.Contains(t, lines[1], "1.2")
	require.Contains(t, lines[1], "success")
	require.Contains(t, lines[1], "cli")
}

func TestBuildOutputFlagOverridesConfig(t *testing.T) {
	p := newProject(t, testLayout, "")
	out := filepath.Join(t.TempDir(), "site")

	code, stdout, errOut := run("-c", p.config, "build", "2.0", "-o", out)
	require.Equal(t, 0, code, errOut)
	require.Contains(t, stdout, "written to "+out)
}

func TestBuildExitCodes(t *testing.T) {
	missingAnchor := strings.Replace(testLayout, `<tab type="namespaces" visible="yes" title=""/>`, "", 1)
	tests := []struct {
		name   string
		layout string
		args   []string
		want   int
	}{
		{name: "missing layout anchor", layout: missingAnchor, args: []string{"build", "1.0"}, want: 11},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newProject(t, tc.layout, "")
			code, out, errOut := run(append([]string{"-c", p.config}, tc.args...)...)
			require.Equal(t, tc.want, code, errOut)
			require.Contains(t, out, "outcome=failed")
			require.NoFileExists(t, filepath.Join(p.output, "html", "index.html"))
		})
	}
}

func TestBuildInvalidVersionOpensNoHistory(t *testing.T) {
	p := newProject(t, testLayout, "history:\n  enabled: true\n")

	code, out, errOut := run("-c", p.config, "build", "1.x")
	require.Equal(t, 2, code, errOut)
	require.Contains(t, errOut, "invalid version format")
	require.NotContains(t, out, "Documentation for")
	require.NoFileExists(t, filepath.Join(p.root, ".doxybuild", "history.db"))
	require.NoFileExists(t, filepath.Join(p.output, "html", "index.html"))
}

func TestMissingConfigFile(t *testing.T) {
	code, _, errOut := run("-c", filepath.Join(t.TempDir(), "nope.yaml"), "build", "1.0")
	require.Equal(t, 4, code)
	require.Contains(t, errOut, "configuration file not found")
}

func TestUnknownCommand(t *testing.T) {
	code, _, errOut := run("publish")
	require.Equal(t, 2, code)
	require.Contains(t, errOut, "error")
}

func TestLayoutPrintsEditedDocument(t *testing.T) {
	p := newProject(t, testLayout, "")

	code, out, errOut := run("-c", p.config, "layout")
	require.Equal(t, 0, code, errOut)
	require.Contains(t, out, "<navindex>")
	require.Contains(t, out, "First Steps")
	require.Contains(t, out, "Usage")
	require.NoDirExists(t, p.output)
}

func TestLayoutDiffAgainstTemplate(t *testing.T) {
	p := newProject(t, testLayout, "")

	code, out, errOut := run("-c", p.config, "layout", "--diff")
	require.Equal(t, 0, code, errOut)
	require.Contains(t, out, "--- DoxygenLayout.xml")
	require.Contains(t, out, "+++ DoxygenLayout.xml (edited)")
	require.Contains(t, out, "@@")
	require.Contains(t, out, "First Steps")
}

func TestLayoutListsTabs(t *testing.T) {
	p := newProject(t, testLayout, "")

	code, out, errOut := run("-c", p.config, "layout", "--tabs")
	require.Equal(t, 0, code, errOut)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Equal(t, []string{"TAB", "TITLE", "URL"}, strings.Fields(lines[0]))
	require.Equal(t, []string{"mainpage", "-", "-"}, strings.Fields(lines[1]))
	require.Contains(t, out, "usergroup")
	require.Contains(t, out, "  user")
	require.Contains(t, out, "@ref md_pages_a")
	require.NotContains(t, out, "<navindex>")
}

func TestLayoutToFile(t *testing.T) {
	p := newProject(t, testLayout, "")
	dest := filepath.Join(t.TempDir(), "layout.xml")

	code, out, errOut := run("-c", p.config, "layout", "-o", dest)
	require.Equal(t, 0, code, errOut)
	require.Contains(t, out, "1 tutorials")
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Contains(t, string(data), "doxygenlayout")
}

func TestHistoryWithoutDatabase(t *testing.T) {
	p := newProject(t, testLayout, "")
	code, out, _ := run("-c", p.config, "history")
	require.Equal(t, 0, code)
	require.Contains(t, out, "No builds recorded.")
}

package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/doxybuild/internal/config"
	"git.home.luguber.info/inful/doxybuild/internal/doxygen"
	"git.home.luguber.info/inful/doxybuild/internal/versioning"
)

const testLayout = `<?xml version="1.0" encoding="UTF-8"?>
<doxygenlayout version="1.0">
  <navindex>
    <tab type="mainpage" visible="yes" title=""/>
    <tab type="pages" visible="yes" title="" intro=""/>
    <tab type="namespaces" visible="yes" title=""/>
    <tab type="files" visible="yes" title=""/>
  </navindex>
</doxygenlayout>
`

const testConfigTemplate = "OUTPUT_DIRECTORY = {{ output_folder }}\nPROJECT_NUMBER = {{movetk_version}}\nHTML_OUTPUT = {{ html_output_name }}\n"

// fixture is a source tree laid out the way the build expects.
type fixture struct {
	root   string
	output string
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	base := t.TempDir()
	f := fixture{root: filepath.Join(base, "documentation"), output: filepath.Join(base, "docs")}
	files := map[string]string{
		"DoxygenLayout.xml":            testLayout,
		"movetk-doxy-config.cfg.in":    testConfigTemplate,
		"movetk.bib":                   "@book{knuth,\n  title={Art's}\n}\n",
		"resources/bibliography.js.in": "var bib = '$bibliography';\n",
		"resources/style.css":          "body{}",
		"images/logo.png":              "png",
		"templates/header.html":        "<header/>",
		"pages/introduction.md":        "# Introduction\n",
		"pages/setup.md":               "# Setup\n\nInstall it.\n",
		"tutorials/a.md":               "# First\n\n```python\nprint(1)\n```\n",
		"tutorials/b.md":               "# Second\n\n```cpp\nint x;\n```\n",
	}
	for rel, content := range files {
		write(t, filepath.Join(f.root, filepath.FromSlash(rel)), content)
	}
	return f
}

func (f fixture) config(t *testing.T, extra string) *config.Config {
	t.Helper()
	path := filepath.Join(f.root, "doxybuild.yaml")
	write(t, path, "version: \"1\"\n"+extra)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

func okTool(version string) ToolChecker {
	return func(_ context.Context, _ string, minimum versioning.Version, less versioning.LessFunc) (versioning.Version, error) {
		v := versioning.MustParse(version)
		if !versioning.Satisfies(v, minimum, less) {
			return v, doxygen.ErrToolVersionTooLow
		}
		return v, nil
	}
}

// fakeRenderer records calls and writes a minimal HTML site.
type fakeRenderer struct {
	mu      sync.Mutex
	calls   int
	htmlDir string
	pages   map[string]string
	stderr  string
	err     error
	block   bool
}

func (r *fakeRenderer) Execute(ctx context.Context, stagingDir, configFile string) (doxygen.Output, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if _, err := os.Stat(filepath.Join(stagingDir, configFile)); err != nil {
		return doxygen.Output{}, err
	}
	if r.block {
		select {
		case <-ctx.Done():
			return doxygen.Output{}, ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}
	if r.err != nil {
		return doxygen.Output{Stderr: r.stderr}, r.err
	}
	for name, body := range r.pages {
		if err := os.MkdirAll(r.htmlDir, 0o750); err != nil {
			return doxygen.Output{}, err
		}
		if err := os.WriteFile(filepath.Join(r.htmlDir, name), []byte(body), 0o600); err != nil {
			return doxygen.Output{}, err
		}
	}
	return doxygen.Output{Stderr: r.stderr}, nil
}

func (r *fakeRenderer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// recordingObserver keeps the order of callbacks.
type recordingObserver struct {
	events []string
	report *BuildReport
}

func (o *recordingObserver) OnStageStart(stage StageName) {
	o.events = append(o.events, "start:"+string(stage))
}

func (o *recordingObserver) OnStageComplete(stage StageName, _ time.Duration, res StageResult) {
	o.events = append(o.events, string(stage)+":"+string(res))
}

func (o *recordingObserver) OnBuildComplete(report *BuildReport) {
	o.report = report
	o.events = append(o.events, "build:"+string(report.Outcome))
}

package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/doxybuild/internal/doxygen"
	ferrors "git.home.luguber.info/inful/doxybuild/internal/foundation/errors"
	"git.home.luguber.info/inful/doxybuild/internal/layout"
	"git.home.luguber.info/inful/doxybuild/internal/templates"
	"git.home.luguber.info/inful/doxybuild/internal/versioning"
)

func TestBuild_EndToEnd(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "")
	renderer := &fakeRenderer{htmlDir: filepath.Join(f.output, "html"), pages: map[string]string{"index.html": `<a href="index.html">home</a>`}}
	obs := &recordingObserver{}
	g := NewGenerator(cfg, WithRenderer(renderer), WithToolChecker(okTool("1.9.8")), WithObserver(obs))

	report, err := g.Build(t.Context(), Request{Version: "1.2", OutputDir: f.output, Trigger: "test"})
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, report.Outcome)
	require.Equal(t, "1.2", report.Version)
	require.Equal(t, "1.9.8", report.ToolVersion)
	require.Equal(t, 1, renderer.Calls())
	require.Equal(t, 2, report.Tutorials)
	require.Equal(t, 1, report.Pages)
	require.Equal(t, 2, report.TutorialsCopied)
	require.Equal(t, 2, report.FencesRewritten)
	require.Empty(t, report.Issues)
	require.Same(t, report, obs.report)
	require.Equal(t, "build:success", obs.events[len(obs.events)-1])

	staging := filepath.Join(f.root, ".doxybuild", "staging")

	// Layout: page after mainpage, tutorials group before namespaces.
	doc, err := layout.Load(filepath.Join(staging, "DoxygenLayout.xml"))
	require.NoError(t, err)
	require.Equal(t, []layout.Tab{
		{Depth: 0, Type: "mainpage"},
		{Depth: 0, Type: "user", Title: "Setup", URL: "@ref md_pages_setup"},
		{Depth: 0, Type: "pages"},
		{Depth: 0, Type: "usergroup", Title: "Tutorials", URL: "[none]"},
		{Depth: 1, Type: "user", Title: "1 First", URL: "@ref md_pages_a"},
		{Depth: 1, Type: "user", Title: "2 Second", URL: "@ref md_pages_b"},
		{Depth: 0, Type: "namespaces"},
		{Depth: 0, Type: "files"},
	}, doc.Tabs())

	raw, err := os.ReadFile(filepath.Join(staging, "DoxygenLayout.xml"))
	require.NoError(t, err)
	require.False(t, strings.HasPrefix(string(raw), "<?xml"), "layout is written without a declaration")

	rendered, err := os.ReadFile(filepath.Join(staging, "doxygen.cfg"))
	require.NoError(t, err)
	require.Equal(t, "OUTPUT_DIRECTORY = "+f.output+"\nPROJECT_NUMBER = 1.2\nHTML_OUTPUT = html\n", string(rendered))

	bib, err := os.ReadFile(filepath.Join(staging, "resources", "bibliography.js"))
	require.NoError(t, err)
	require.Equal(t, `var bib = '@book{knuth,  title={Art\'s}}';`+"\n", string(bib))

	tut, err := os.ReadFile(filepath.Join(staging, "pages", "a.md"))
	require.NoError(t, err)
	require.Contains(t, string(tut), "```{.py}\n")

	require.FileExists(t, filepath.Join(staging, "images", "logo.png"))
	require.FileExists(t, filepath.Join(staging, "pages", "setup.md"))
	require.FileExists(t, filepath.Join(staging, "templates", "header.html"))
	require.NoFileExists(t, filepath.Join(staging, "resources", "bibliography.js.in"))
	require.FileExists(t, filepath.Join(f.output, "build-report.json"))
	require.FileExists(t, filepath.Join(f.output, "build-report.txt"))
}

func TestBuild_IncrementalSecondRun(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "")
	g := NewGenerator(cfg, WithRenderer(&fakeRenderer{}), WithToolChecker(okTool("1.9.8")))

	first, err := g.Build(t.Context(), Request{Version: "1.2.0", OutputDir: f.output})
	require.NoError(t, err)
	require.Positive(t, first.FilesCopied)

	second, err := g.Build(t.Context(), Request{Version: "1.2.0", OutputDir: f.output})
	require.NoError(t, err)
	require.Zero(t, second.FilesCopied)
	require.Zero(t, second.TutorialsCopied)
	require.Equal(t, first.FilesCopied, second.FilesSkipped)
	require.NotEqual(t, first.BuildID, second.BuildID)
}

func TestBuild_InvalidVersion(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "")
	renderer := &fakeRenderer{}
	g := NewGenerator(cfg, WithRenderer(renderer), WithToolChecker(okTool("1.9.8")))

	report, err := g.Build(t.Context(), Request{Version: "v1", OutputDir: f.output})
	require.ErrorIs(t, err, versioning.ErrInvalidVersionFormat)
	require.Equal(t, ferrors.CategoryValidation, ferrors.GetCategory(err))
	require.Equal(t, OutcomeFailed, report.Outcome)
	require.Equal(t, []string{string(IssueInvalidVersion)}, report.IssueCodes())
	require.Zero(t, renderer.Calls())
	require.NoDirExists(t, filepath.Join(f.root, ".doxybuild"))
}

func TestBuild_ToolVersionTooLow(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "")
	g := NewGenerator(cfg, WithRenderer(&fakeRenderer{}), WithToolChecker(okTool("1.8.17")))

	report, err := g.Build(t.Context(), Request{Version: "1.2", OutputDir: f.output})
	require.ErrorIs(t, err, doxygen.ErrToolVersionTooLow)
	require.Equal(t, ferrors.CategoryTool, ferrors.GetCategory(err))
	require.Equal(t, []string{string(IssueToolVersionTooLow)}, report.IssueCodes())
	require.Equal(t, StageErrorFatal, report.StageErrorKinds[StageCheckTool])
	require.NoDirExists(t, filepath.Join(f.root, ".doxybuild"), "nothing is written before the tool check passes")
}

func TestBuild_LegacyVersionCompare(t *testing.T) {
	f := newFixture(t)
	// 2.0.0 is "less than" 1.9.6 under the legacy field-by-field comparison.
	cfg := f.config(t, "tool:\n  legacy_version_compare: true\n")
	g := NewGenerator(cfg, WithRenderer(&fakeRenderer{}), WithToolChecker(okTool("2.0.0")))

	_, err := g.Build(t.Context(), Request{Version: "1.2", OutputDir: f.output})
	require.ErrorIs(t, err, doxygen.ErrToolVersionTooLow)
}

func TestBuild_MissingAnchor(t *testing.T) {
	f := newFixture(t)
	write(t, filepath.Join(f.root, "DoxygenLayout.xml"),
		`<doxygenlayout><navindex><tab type="mainpage" visible="yes" title=""/></navindex></doxygenlayout>`)
	cfg := f.config(t, "")
	renderer := &fakeRenderer{}
	g := NewGenerator(cfg, WithRenderer(renderer), WithToolChecker(okTool("1.9.8")))

	report, err := g.Build(t.Context(), Request{Version: "1.2", OutputDir: f.output})
	require.ErrorIs(t, err, layout.ErrAnchorNotFound)
	require.Equal(t, ferrors.CategoryLayout, ferrors.GetCategory(err))
	require.Equal(t, []string{string(IssueLayout)}, report.IssueCodes())
	require.Zero(t, renderer.Calls(), "generator never runs on a half-prepared tree")

	staging := filepath.Join(f.root, ".doxybuild", "staging")
	require.FileExists(t, filepath.Join(staging, "images", "logo.png"), "synced files remain")
	require.NoFileExists(t, filepath.Join(staging, "DoxygenLayout.xml"))
	require.NoFileExists(t, filepath.Join(staging, "doxygen.cfg"))
}

func TestBuild_MissingHeading(t *testing.T) {
	f := newFixture(t)
	write(t, filepath.Join(f.root, "tutorials", "c.md"), "\n# Late heading\n")
	cfg := f.config(t, "")
	g := NewGenerator(cfg, WithRenderer(&fakeRenderer{}), WithToolChecker(okTool("1.9.8")))

	_, err := g.Build(t.Context(), Request{Version: "1.2", OutputDir: f.output})
	require.ErrorIs(t, err, layout.ErrMissingHeading)
	require.Contains(t, err.Error(), "c.md")
}

func TestBuild_UnknownTemplateParameter(t *testing.T) {
	f := newFixture(t)
	write(t, filepath.Join(f.root, "movetk-doxy-config.cfg.in"), "X = {{ unknown_key }}\n")
	cfg := f.config(t, "")
	g := NewGenerator(cfg, WithRenderer(&fakeRenderer{}), WithToolChecker(okTool("1.9.8")))

	report, err := g.Build(t.Context(), Request{Version: "1.2", OutputDir: f.output})
	require.ErrorIs(t, err, templates.ErrUnknownParameter)
	require.Equal(t, ferrors.CategoryTemplate, ferrors.GetCategory(err))
	require.Equal(t, []string{string(IssueTemplate)}, report.IssueCodes())
}

func TestBuild_GeneratorWarnings(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "")
	g := NewGenerator(cfg, WithRenderer(&fakeRenderer{stderr: "warning: undocumented member\n"}), WithToolChecker(okTool("1.9.8")))

	report, err := g.Build(t.Context(), Request{Version: "1.2", OutputDir: f.output})
	require.NoError(t, err)
	require.Equal(t, OutcomeWarning, report.Outcome)
	require.Equal(t, 1, report.GeneratorWarns)
	require.Equal(t, []string{string(IssueGeneratorWarnings)}, report.IssueCodes())
}

func TestBuild_GeneratorFailure(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "")
	g := NewGenerator(cfg,
		WithRenderer(&fakeRenderer{err: errors.Join(doxygen.ErrGeneratorFailed, errors.New("exit status 1"))}),
		WithToolChecker(okTool("1.9.8")))

	report, err := g.Build(t.Context(), Request{Version: "1.2", OutputDir: f.output})
	require.ErrorIs(t, err, doxygen.ErrGeneratorFailed)
	require.Equal(t, ferrors.CategoryTool, ferrors.GetCategory(err))
	require.Equal(t, OutcomeFailed, report.Outcome)
	require.Equal(t, []string{string(IssueGeneratorFailed)}, report.IssueCodes())
}

func TestBuild_MissingBibliographyWarns(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(filepath.Join(f.root, "movetk.bib")))
	cfg := f.config(t, "")
	g := NewGenerator(cfg, WithRenderer(&fakeRenderer{}), WithToolChecker(okTool("1.9.8")))

	report, err := g.Build(t.Context(), Request{Version: "1.2", OutputDir: f.output})
	require.NoError(t, err)
	require.Equal(t, OutcomeWarning, report.Outcome)
	require.Equal(t, []string{string(IssueBibliography)}, report.IssueCodes())
	require.Equal(t, 1, report.StageCounts[StageBibliography].Warning)
}

func TestBuild_BibliographyCustomPlaceholderAndNestedOutput(t *testing.T) {
	f := newFixture(t)
	write(t, filepath.Join(f.root, "resources", "bibliography.js.in"), "const refs = '$refs';\n")
	cfg := f.config(t, "bibliography:\n  placeholder: \"$refs\"\n  output: scripts/cite/refs.js\n")
	require.Equal(t, "$refs", cfg.Bibliography.Placeholder)
	g := NewGenerator(cfg, WithRenderer(&fakeRenderer{}), WithToolChecker(okTool("1.9.8")))

	_, err := g.Build(t.Context(), Request{Version: "1.2", OutputDir: f.output})
	require.NoError(t, err)
	out, err := os.ReadFile(filepath.Join(f.root, ".doxybuild", "staging", "scripts", "cite", "refs.js"))
	require.NoError(t, err)
	require.Equal(t, `const refs = '@book{knuth,  title={Art\'s}}';`+"\n", string(out))
}

func TestBuild_BibliographyDisabled(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "bibliography:\n  enabled: false\n")
	g := NewGenerator(cfg, WithRenderer(&fakeRenderer{}), WithToolChecker(okTool("1.9.8")))

	for _, st := range g.Stages() {
		require.NotEqual(t, StageBibliography, st.Name)
	}
	_, err := g.Build(t.Context(), Request{Version: "1.2", OutputDir: f.output})
	require.NoError(t, err)
	require.NoFileExists(t, filepath.Join(f.root, ".doxybuild", "staging", "resources", "bibliography.js"))
}

func TestBuild_VerifyOutputReportsBrokenLinks(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "verify:\n  enabled: true\n")
	renderer := &fakeRenderer{
		htmlDir: filepath.Join(f.output, "html"),
		pages: map[string]string{
			"index.html": `<a href="md_pages_setup.html">setup</a><a href="gone.html">gone</a>`,
			"md_pages_setup.html": `<a href="index.html">home</a>`,
		},
	}
	g := NewGenerator(cfg, WithRenderer(renderer), WithToolChecker(okTool("1.9.8")))

	report, err := g.Build(t.Context(), Request{Version: "1.2", OutputDir: f.output})
	require.NoError(t, err)
	require.Equal(t, OutcomeWarning, report.Outcome)
	require.Equal(t, 1, report.BrokenLinks)
	require.Equal(t, []string{string(IssueBrokenLinks)}, report.IssueCodes())
}

func TestBuild_CanceledBeforeStart(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "")
	renderer := &fakeRenderer{}
	g := NewGenerator(cfg, WithRenderer(renderer), WithToolChecker(okTool("1.9.8")))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	report, err := g.Build(ctx, Request{Version: "1.2", OutputDir: f.output})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, ferrors.CategoryRuntime, ferrors.GetCategory(err))
	require.Equal(t, OutcomeCanceled, report.Outcome)
	require.Equal(t, []string{string(IssueCanceled)}, report.IssueCodes())
	require.Zero(t, renderer.Calls())
}

func TestBuild_CanceledDuringGenerator(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "")
	renderer := &fakeRenderer{block: true}
	g := NewGenerator(cfg, WithRenderer(renderer), WithToolChecker(okTool("1.9.8")))

	ctx, cancel := context.WithTimeout(t.Context(), 200*time.Millisecond)
	defer cancel()
	report, err := g.Build(ctx, Request{Version: "1.2", OutputDir: f.output})
	require.Error(t, err)
	require.Equal(t, OutcomeCanceled, report.Outcome)
	require.Equal(t, StageErrorCanceled, report.StageErrorKinds[StageRunGenerator])
}

func TestBuild_EphemeralStagingRemoved(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "staging:\n  ephemeral: true\n")
	g := NewGenerator(cfg, WithRenderer(&fakeRenderer{}), WithToolChecker(okTool("1.9.8")))

	report, err := g.Build(t.Context(), Request{Version: "1.2", OutputDir: f.output})
	require.NoError(t, err)
	require.NotEmpty(t, report.StagingDir)
	require.NoDirExists(t, report.StagingDir)
}

func TestOutputDir_DefaultsRelativeToSourceRoot(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "")
	g := NewGenerator(cfg)

	dir, err := g.OutputDir(Request{})
	require.NoError(t, err)
	require.Equal(t, f.output, dir)
}

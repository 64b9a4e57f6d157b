package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/doxybuild/internal/config"
	"git.home.luguber.info/inful/doxybuild/internal/doxygen"
	"git.home.luguber.info/inful/doxybuild/internal/logfields"
	"git.home.luguber.info/inful/doxybuild/internal/metrics"
	"git.home.luguber.info/inful/doxybuild/internal/versioning"
	"git.home.luguber.info/inful/doxybuild/internal/workspace"
)

// ToolChecker verifies the generator binary and returns its version.
type ToolChecker func(ctx context.Context, binary string, minimum versioning.Version, less versioning.LessFunc) (versioning.Version, error)

// Generator runs documentation builds for one configuration.
type Generator struct {
	cfg       *config.Config
	renderer  doxygen.Renderer
	checkTool ToolChecker
	recorder  metrics.Recorder
	observer  BuildObserver
}

// Option configures a Generator.
type Option func(*Generator)

// WithRenderer replaces the generator invocation (tests, dry runs).
func WithRenderer(r doxygen.Renderer) Option {
	return func(g *Generator) { g.renderer = r }
}

// WithToolChecker replaces the generator presence and version check.
func WithToolChecker(tc ToolChecker) Option {
	return func(g *Generator) { g.checkTool = tc }
}

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) { g.recorder = r }
}

// WithObserver injects a build observer. Use MultiObserver to combine several.
func WithObserver(o BuildObserver) Option {
	return func(g *Generator) { g.observer = o }
}

// NewGenerator creates a Generator that runs the configured Doxygen binary.
func NewGenerator(cfg *config.Config, opts ...Option) *Generator {
	g := &Generator{
		cfg:       cfg,
		renderer:  &doxygen.BinaryRenderer{Binary: cfg.Tool.Binary},
		checkTool: doxygen.CheckVersion,
		recorder:  metrics.NoopRecorder{},
		observer:  NoopObserver{},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.recorder == nil {
		g.recorder = metrics.NoopRecorder{}
	}
	if g.observer == nil {
		g.observer = NoopObserver{}
	}
	return g
}

// Request describes one build.
type Request struct {
	Version   string // MAJOR.MINOR[.PATCH]
	OutputDir string // overrides output.directory when set
	Trigger   string // what started the build, e.g. "cli" or "watch"
}

// Stages returns the ordered stage list for the configuration.
func (g *Generator) Stages() []StageDef {
	return NewPipeline().
		Add(StageCheckTool, stageCheckTool).
		Add(StagePrepareStaging, stagePrepareStaging).
		AddIf(g.cfg.BibliographyEnabled(), StageBibliography, stageBibliography).
		Add(StageSyncResources, stageSyncResources).
		Add(StageCopyTutorials, stageCopyTutorials).
		Add(StageLayout, stageLayout).
		Add(StageGenerateConfig, stageGenerateConfig).
		Add(StageRunGenerator, stageRunGenerator).
		AddIf(g.cfg.Verify.Enabled, StageVerifyOutput, stageVerifyOutput).
		Build()
}

// OutputDir resolves the absolute output directory for req.
func (g *Generator) OutputDir(req Request) (string, error) {
	dir := req.OutputDir
	if dir == "" {
		dir = g.cfg.Resolve(g.cfg.Output.Directory)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve output directory %s: %w", dir, err)
	}
	return abs, nil
}

// Build runs one documentation build. The returned report is never nil;
// the error is a ClassifiedError describing the first fatal failure.
func (g *Generator) Build(ctx context.Context, req Request) (*BuildReport, error) {
	report := NewBuildReport(req.Version)
	report.Trigger = req.Trigger
	log := slog.With(logfields.BuildID(report.BuildID))

	finish := func(err error) (*BuildReport, error) {
		report.Finish()
		report.DeriveOutcome()
		g.observer.OnBuildComplete(report)
		log.Info("Build finished", logfields.Outcome(string(report.Outcome)), slog.String("summary", report.Summary()))
		return report, Classify(err)
	}

	// Reject a malformed version before anything touches the disk.
	v, err := versioning.Parse(req.Version)
	if err != nil {
		report.AddIssue(IssueInvalidVersion, "", SeverityError, err.Error(), err)
		return finish(err)
	}
	report.Version = v.String()

	outDir, err := g.OutputDir(req)
	if err != nil {
		report.AddIssue(IssueGenericStageError, "", SeverityError, err.Error(), err)
		return finish(err)
	}
	report.OutputDir = outDir

	var staging *workspace.Manager
	if g.cfg.Staging.Ephemeral {
		staging = workspace.NewManager("")
	} else {
		staging = workspace.NewPersistentManager(g.cfg.Resolve(g.cfg.Staging.Directory))
	}
	defer func() {
		if err := staging.Cleanup(); err != nil {
			log.Warn("Failed to clean up staging directory", logfields.Error(err))
		}
	}()

	bs := &BuildState{
		Config:    g.cfg,
		Version:   v,
		OutputDir: outDir,
		Staging:   staging,
		Report:    report,
		generator: g,
	}
	log.Info("Starting documentation build", logfields.Version(v.String()), logfields.Path(outDir), logfields.Trigger(req.Trigger))
	err = RunStages(ctx, bs, g.Stages())

	if report.GeneratorRan {
		if perr := report.Persist(outDir); perr != nil {
			log.Warn("Failed to persist build report", logfields.Error(perr))
		}
	}
	return finish(err)
}

package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/doxybuild/internal/config"
	"git.home.luguber.info/inful/doxybuild/internal/layout"
	"git.home.luguber.info/inful/doxybuild/internal/logfields"
)

// LayoutResult is the edited navigation layout and what was added to it.
type LayoutResult struct {
	Document  *layout.Document
	Tutorials int
	Pages     int
}

// ComposeLayout loads the layout template of cfg and adds the tutorial
// group, then the pages. Nothing is written.
func ComposeLayout(cfg *config.Config) (LayoutResult, error) {
	tmpl := cfg.Resolve(cfg.Source.LayoutTemplate)
	doc, err := layout.Load(tmpl)
	if err != nil {
		return LayoutResult{}, err
	}
	opts := layout.EntryOptions{
		RefPrefix:        cfg.Layout.RefPrefix,
		TutorialsTitle:   cfg.Layout.TutorialsTitle,
		IntroductionFile: cfg.Layout.IntroductionFile,
	}
	tutorials, err := doc.AddTutorialPages(cfg.Resolve(cfg.Source.Tutorials), opts)
	if err != nil {
		return LayoutResult{}, fmt.Errorf("add tutorials to %s: %w", tmpl, err)
	}
	pages, err := doc.AddPages(cfg.Resolve(cfg.Source.Pages), opts)
	if err != nil {
		return LayoutResult{}, fmt.Errorf("add pages to %s: %w", tmpl, err)
	}
	return LayoutResult{Document: doc, Tutorials: tutorials, Pages: pages}, nil
}

func stageLayout(_ context.Context, bs *BuildState) error {
	res, err := ComposeLayout(bs.Config)
	if err != nil {
		return newFatalStageError(StageLayout, err)
	}
	out := bs.StagingPath(bs.Config.Layout.OutputName)
	if err := res.Document.Save(out); err != nil {
		return newFatalStageError(StageLayout, err)
	}
	bs.Report.Tutorials = res.Tutorials
	bs.Report.Pages = res.Pages
	bs.recorder().SetLayoutEntries("tutorials", res.Tutorials)
	bs.recorder().SetLayoutEntries("pages", res.Pages)
	slog.Info("Wrote navigation layout", logfields.Path(out),
		slog.Int("tutorials", res.Tutorials), slog.Int("pages", res.Pages))
	return nil
}

package pipeline

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/doxybuild/internal/git"
	"git.home.luguber.info/inful/doxybuild/internal/logfields"
	"git.home.luguber.info/inful/doxybuild/internal/templates"
)

func stageGenerateConfig(_ context.Context, bs *BuildState) error {
	cfg := bs.Config

	rev, err := git.HeadRevision(cfg.Source.Root)
	if err != nil {
		slog.Warn("Could not determine source revision", logfields.Path(cfg.Source.Root), logfields.Error(err))
	}
	bs.Report.SourceRevision = rev.Short

	params, err := templates.NewParameters(map[string]string{
		templates.OutputFolder:   bs.OutputDir,
		templates.MovetkVersion:  bs.Version.String(),
		templates.HTMLOutputName: cfg.Output.HTMLOutputName,
		templates.SourceRevision: rev.Short,
	})
	if err != nil {
		return newFatalStageError(StageGenerateConfig, err)
	}

	bs.ConfigFile = cfg.Tool.ConfigName
	src := cfg.Resolve(cfg.Source.ConfigTemplate)
	dst := bs.StagingPath(bs.ConfigFile)
	if err := templates.RenderFile(src, dst, params); err != nil {
		return newFatalStageError(StageGenerateConfig, err)
	}
	slog.Info("Rendered generator configuration", logfields.File(dst), logfields.Version(bs.Version.String()), logfields.Revision(rev.Short))
	return nil
}

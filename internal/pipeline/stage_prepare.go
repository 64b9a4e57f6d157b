package pipeline

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/doxybuild/internal/config"
	"git.home.luguber.info/inful/doxybuild/internal/logfields"
	"git.home.luguber.info/inful/doxybuild/internal/workspace"
)

func stagePrepareStaging(_ context.Context, bs *BuildState) error {
	if err := bs.Staging.Create(); err != nil {
		return newFatalStageError(StagePrepareStaging, err)
	}
	if bs.Config.Staging.Clean {
		if err := bs.Staging.Clean(); err != nil {
			return newFatalStageError(StagePrepareStaging, err)
		}
	}
	bs.Report.StagingDir = bs.Staging.Path()

	dirs := []string{bs.StagingPath(config.CategoryPages), bs.StagingPath(config.CategoryResources)}
	for _, c := range bs.Config.Categories() {
		dirs = append(dirs, bs.StagingPath(c.Name))
	}
	if err := workspace.EnsureDirectories(dirs...); err != nil {
		return newFatalStageError(StagePrepareStaging, err)
	}
	slog.Debug("Staging directories ready", logfields.Path(bs.Staging.Path()), logfields.Count(len(dirs)))
	return nil
}

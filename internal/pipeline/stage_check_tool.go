package pipeline

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/doxybuild/internal/logfields"
	"git.home.luguber.info/inful/doxybuild/internal/versioning"
)

func stageCheckTool(ctx context.Context, bs *BuildState) error {
	cfg := bs.Config
	minimum, err := versioning.Parse(cfg.Tool.MinVersion)
	if err != nil {
		return newFatalStageError(StageCheckTool, err)
	}
	v, err := bs.generator.checkTool(ctx, cfg.Tool.Binary, minimum, versioning.Comparator(cfg.Tool.LegacyVersionCompare))
	if v != (versioning.Version{}) {
		bs.Report.ToolVersion = v.String()
	}
	if err != nil {
		if ctx.Err() != nil {
			return newCanceledStageError(StageCheckTool, err)
		}
		return newFatalStageError(StageCheckTool, err)
	}
	slog.Info("Documentation generator found", logfields.Tool(cfg.Tool.Binary), logfields.ToolVersion(v.String()))
	return nil
}

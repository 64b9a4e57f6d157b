package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/doxybuild/internal/logfields"
)

func stageRunGenerator(ctx context.Context, bs *BuildState) error {
	if err := os.MkdirAll(bs.OutputDir, 0o750); err != nil {
		return newFatalStageError(StageRunGenerator, fmt.Errorf("create output directory: %w", err))
	}

	start := time.Now()
	out, err := bs.generator.renderer.Execute(ctx, bs.Staging.Path(), bs.ConfigFile)
	bs.recorder().ObserveGeneratorDuration(time.Since(start), err == nil)
	if err != nil {
		if ctx.Err() != nil {
			return newCanceledStageError(StageRunGenerator, err)
		}
		return newFatalStageError(StageRunGenerator, err)
	}
	bs.Report.GeneratorRan = true

	warnings := out.Warnings()
	bs.Report.GeneratorWarns = len(warnings)
	slog.Info("Documentation generated", logfields.Path(bs.OutputDir), slog.Int("warnings", len(warnings)))
	if len(warnings) > 0 {
		return newWarnStageError(StageRunGenerator, fmt.Errorf("generator reported %d warning(s), first: %s", len(warnings), warnings[0]))
	}
	return nil
}

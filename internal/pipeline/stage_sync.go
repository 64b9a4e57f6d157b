package pipeline

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/doxybuild/internal/logfields"
	"git.home.luguber.info/inful/doxybuild/internal/workspace"
)

func stageSyncResources(ctx context.Context, bs *BuildState) error {
	opts := workspace.SyncOptions{
		TemplateSuffix: bs.Config.Sync.TemplateSuffix,
		Recursive:      bs.Config.Sync.Recursive,
	}
	var total workspace.SyncStats
	for _, c := range bs.Config.Categories() {
		if err := ctx.Err(); err != nil {
			return newCanceledStageError(StageSyncResources, err)
		}
		stats, err := workspace.SyncDirectory(c.Dir, bs.StagingPath(c.Name), opts)
		if err != nil {
			return newFatalStageError(StageSyncResources, err)
		}
		bs.recorder().AddFilesSynced(c.Name, stats.Copied, stats.Skipped)
		slog.Debug("Synchronized category", logfields.Category(c.Name), logfields.Path(c.Dir),
			slog.Int("copied", stats.Copied), slog.Int("skipped", stats.Skipped))
		total.Add(stats)
	}
	bs.Report.FilesCopied += total.Copied
	bs.Report.FilesSkipped += total.Skipped
	bs.Report.FilesExcluded += total.Excluded
	slog.Info("Synchronized resources", slog.Int("copied", total.Copied), slog.Int("skipped", total.Skipped))
	return nil
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/doxybuild/internal/config"
	"git.home.luguber.info/inful/doxybuild/internal/logfields"
	"git.home.luguber.info/inful/doxybuild/internal/markdown"
	"git.home.luguber.info/inful/doxybuild/internal/workspace"
)

// stageCopyTutorials copies tutorials into the staged pages directory.
// Markdown tutorials have their fenced code languages rewritten on the way.
func stageCopyTutorials(ctx context.Context, bs *BuildState) error {
	cfg := bs.Config
	src := cfg.Resolve(cfg.Source.Tutorials)
	dst := bs.StagingPath(config.CategoryPages)

	entries, err := os.ReadDir(src)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("No tutorials directory", logfields.Path(src))
		return nil
	}
	if err != nil {
		return newFatalStageError(StageCopyTutorials, fmt.Errorf("read tutorials: %w", err))
	}

	copied, skipped := 0, 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return newCanceledStageError(StageCopyTutorials, err)
		}
		if e.IsDir() || strings.HasSuffix(e.Name(), cfg.Sync.TemplateSuffix) {
			continue
		}
		from := filepath.Join(src, e.Name())
		to := filepath.Join(dst, e.Name())

		if !strings.EqualFold(filepath.Ext(e.Name()), ".md") {
			ok, err := workspace.CopyIfNewer(from, to)
			if err != nil {
				return newFatalStageError(StageCopyTutorials, err)
			}
			if ok {
				copied++
			} else {
				skipped++
			}
			continue
		}

		stale, err := workspace.NeedsCopy(from, to)
		if err != nil {
			return newFatalStageError(StageCopyTutorials, err)
		}
		if !stale {
			skipped++
			continue
		}
		n, err := markdown.ConvertFile(from, to, cfg.Markdown.Fences)
		if err != nil {
			return newFatalStageError(StageCopyTutorials, err)
		}
		copied++
		bs.Report.FencesRewritten += n
	}
	bs.Report.TutorialsCopied = copied
	bs.recorder().AddFilesSynced("tutorials", copied, skipped)
	slog.Info("Copied tutorials", logfields.Path(src), logfields.Count(copied))
	return nil
}

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/doxybuild/internal/linkverify"
	"git.home.luguber.info/inful/doxybuild/internal/logfields"
)

// maxLoggedBrokenLinks bounds per-link log lines; the count is always reported.
const maxLoggedBrokenLinks = 20

// stageVerifyOutput checks the generated HTML for broken local links.
// Problems are warnings only.
func stageVerifyOutput(_ context.Context, bs *BuildState) error {
	if !bs.Report.GeneratorRan {
		return nil
	}
	root := filepath.Join(bs.OutputDir, bs.Config.Output.HTMLOutputName)
	res, err := linkverify.VerifyDir(root)
	if err != nil {
		return newWarnStageError(StageVerifyOutput, err)
	}
	bs.Report.BrokenLinks = len(res.Broken)
	for i, b := range res.Broken {
		if i == maxLoggedBrokenLinks {
			slog.Warn("More broken links omitted", logfields.Count(len(res.Broken)-i))
			break
		}
		slog.Warn("Broken link", logfields.File(b.Page), slog.String("target", b.Target), slog.String("tag", b.Tag))
	}
	slog.Info("Verified generated HTML", logfields.Path(root), slog.Int("pages", res.Pages), slog.Int("links", res.Links), slog.Int("broken", len(res.Broken)))
	if len(res.Broken) > 0 {
		return newWarnStageError(StageVerifyOutput, fmt.Errorf("%d broken link(s) in %s", len(res.Broken), root))
	}
	return nil
}

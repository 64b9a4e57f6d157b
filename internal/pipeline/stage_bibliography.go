package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/doxybuild/internal/bibliography"
	"git.home.luguber.info/inful/doxybuild/internal/logfields"
)

// stageBibliography fills the bibliography script template. A missing
// bibliography or template only warns: the site builds without citations.
func stageBibliography(_ context.Context, bs *BuildState) error {
	cfg := bs.Config
	bibPath := cfg.Resolve(cfg.Source.Bibliography)
	tmplPath := cfg.Resolve(cfg.Source.BibliographyTemplate)
	for _, p := range []string{bibPath, tmplPath} {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			return newWarnStageError(StageBibliography, fmt.Errorf("%s not found, skipping bibliography", p))
		}
	}

	rel := filepath.FromSlash(cfg.Bibliography.Output)
	dir, err := bs.Staging.Subdir(filepath.Dir(rel))
	if err != nil {
		return newFatalStageError(StageBibliography, err)
	}
	out := filepath.Join(dir, filepath.Base(rel))
	if err := bibliography.Prepare(bibPath, tmplPath, out, cfg.Bibliography.Placeholder); err != nil {
		return newFatalStageError(StageBibliography, err)
	}
	slog.Info("Prepared bibliography", logfields.File(bibPath), logfields.Path(out))
	return nil
}

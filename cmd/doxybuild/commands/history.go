package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/doxybuild/internal/eventstore"
	ferrors "git.home.luguber.info/inful/doxybuild/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" default:"10" help:"Number of builds to show (0 for all)"`
}

func (h *HistoryCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	path := cfg.Resolve(cfg.History.Path)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		_, _ = fmt.Fprintln(g.Stdout, "No builds recorded.")
		return nil
	}
	store, err := eventstore.NewSQLiteStore(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.Recent(ctx, h.Limit)
	if err != nil {
		return ferrors.FileSystemError("failed to read build history").WithCause(err).
			WithContext("file", path).Build()
	}
	if len(records) == 0 {
		_, _ = fmt.Fprintln(g.Stdout, "No builds recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(g.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tVERSION\tOUTCOME\tTRIGGER\tREVISION\tDURATION\tBUILD ID")
	for _, r := range records {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.StartedAt.Local().Format(time.DateTime), r.Version, r.Outcome, dash(r.Trigger),
			dash(r.Revision), r.Duration().Round(time.Millisecond), r.BuildID)
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

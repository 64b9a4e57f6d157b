package commands

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/doxybuild/internal/daemon"
	"git.home.luguber.info/inful/doxybuild/internal/pipeline"
	"git.home.luguber.info/inful/doxybuild/internal/versioning"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	DocVersion string `arg:"" name:"version" help:"Version to document (MAJOR.MINOR[.PATCH])"`
	Output     string `short:"o" help:"Output directory (default: output.directory)"`
}

func (w *WatchCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	// Fail fast instead of logging the same rejection on every rebuild.
	if _, err := versioning.Parse(w.DocVersion); err != nil {
		return pipeline.Classify(err)
	}
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	env := newBuildEnv(cfg)
	defer env.Close()

	d, err := daemon.New(daemon.Options{
		Config:   cfg,
		Builder:  env.generator(cfg),
		Request:  pipeline.Request{Version: w.DocVersion, OutputDir: w.Output},
		Registry: env.registry,
	})
	if err != nil {
		return err
	}
	slog.Info("Watch mode started; press Ctrl+C to stop")
	return d.Run(ctx)
}

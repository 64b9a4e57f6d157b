package commands

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/doxybuild/internal/logfields"
	"git.home.luguber.info/inful/doxybuild/internal/metrics"
	"git.home.luguber.info/inful/doxybuild/internal/pipeline"
	"git.home.luguber.info/inful/doxybuild/internal/versioning"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	DocVersion  string `arg:"" name:"version" help:"Version to document (MAJOR.MINOR[.PATCH])"`
	Output      string `short:"o" help:"Output directory (default: output.directory)"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics to this file after the build (default: metrics.textfile)"`
}

func (b *BuildCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	// Reject the version before history or notifications are opened.
	if _, err := versioning.Parse(b.DocVersion); err != nil {
		return pipeline.Classify(err)
	}
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	env := newBuildEnv(cfg)
	defer env.Close()

	report, err := env.generator(cfg).Build(ctx, pipeline.Request{
		Version:   b.DocVersion,
		OutputDir: b.Output,
		Trigger:   "cli",
	})

	textfile := b.MetricsFile
	if textfile == "" {
		textfile = cfg.Resolve(cfg.Metrics.Textfile)
	}
	if textfile != "" {
		if werr := metrics.WriteTextfile(env.registry, textfile); werr != nil {
			slog.Warn("Failed to write metrics textfile", logfields.Path(textfile), logfields.Error(werr))
		}
	}

	_, _ = fmt.Fprintln(g.Stdout, report.Summary())
	if err == nil {
		_, _ = fmt.Fprintf(g.Stdout, "Documentation for %s written to %s\n", report.Version, report.OutputDir)
	}
	return err
}

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/doxybuild/internal/config"
	"git.home.luguber.info/inful/doxybuild/internal/eventstore"
	ferrors "git.home.luguber.info/inful/doxybuild/internal/foundation/errors"
	"git.home.luguber.info/inful/doxybuild/internal/logfields"
	"git.home.luguber.info/inful/doxybuild/internal/metrics"
	"git.home.luguber.info/inful/doxybuild/internal/notify"
	"git.home.luguber.info/inful/doxybuild/internal/pipeline"
	"git.home.luguber.info/inful/doxybuild/internal/retry"
	"git.home.luguber.info/inful/doxybuild/internal/version"
)

// Global carries the output streams shared by all commands.
type Global struct {
	Stdout io.Writer
	Stderr io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (default: ${config_file} when present)"`
	Verbose bool             `short:"v" help:"Enable debug logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Build the documentation for a version"`
	Watch   WatchCmd   `cmd:"" help:"Rebuild the documentation whenever the sources change"`
	Layout  LayoutCmd  `cmd:"" help:"Print the edited navigation layout without building"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
	History HistoryCmd `cmd:"" help:"List recorded builds"`
}

// AfterApply sets up logging from the flags; loadConfig refines it.
func (c *CLI) AfterApply(g *Global) error {
	slog.SetDefault(newLogger(g.Stderr, "", "", c.Verbose))
	return nil
}

// extraGeneratorOptions are appended to every generator; tests swap the
// renderer and tool check through it.
var extraGeneratorOptions []pipeline.Option

// Main parses args, runs the selected command and returns the exit code.
func Main(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("doxybuild"),
		kong.Description("Stage, lay out and build Doxygen documentation."),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
		kong.Vars{"version": version.String(), "config_file": config.DefaultFile},
		kong.Bind(&Global{Stdout: stdout, Stderr: stderr}),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "doxybuild: %v\n", err)
		return 10
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "doxybuild: error: %v\n", err)
		return 2
	}
	err = kctx.Run()
	return ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).WithOutput(stderr).Report(err)
}

func newLogger(w io.Writer, level, format string, verbose bool) *slog.Logger {
	lvl := config.NormalizeLogLevel(level).SlogLevel()
	if verbose {
		lvl = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if config.NormalizeLogFormat(format) == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// loadConfig loads the configuration and applies its logging settings.
func (c *CLI) loadConfig(g *Global) (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(newLogger(g.Stderr, cfg.Logging.Level, cfg.Logging.Format, c.Verbose))
	return cfg, nil
}

// buildEnv holds the metrics registry and the observers wired into builds.
type buildEnv struct {
	registry  *prom.Registry
	recorder  *metrics.PrometheusRecorder
	observers pipeline.MultiObserver
	closers   []io.Closer
}

// newBuildEnv wires metrics, build history and notifications. History and
// notification failures only disable that integration.
func newBuildEnv(cfg *config.Config) *buildEnv {
	reg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	env := &buildEnv{
		registry:  reg,
		recorder:  rec,
		observers: pipeline.MultiObserver{pipeline.RecorderObserver{Recorder: rec}},
	}

	if cfg.History.Enabled {
		path := cfg.Resolve(cfg.History.Path)
		store, err := eventstore.NewSQLiteStore(path)
		if err != nil {
			slog.Warn("Build history disabled", logfields.Path(path), logfields.Error(err))
		} else {
			env.observers = append(env.observers, pipeline.HistoryObserver{Store: store, Timeout: 5 * time.Second})
			env.closers = append(env.closers, store)
		}
	}

	if cfg.Notify.NATSURL != "" {
		pub, err := notify.Connect(cfg.Notify.NATSURL, cfg.Notify.Subject, cfg.Notify.Timeout)
		if err != nil {
			slog.Warn("Build notifications disabled", slog.String("url", cfg.Notify.NATSURL), logfields.Error(err))
		} else {
			env.observers = append(env.observers, pipeline.NotifyObserver{
				Publisher: pub,
				Timeout:   cfg.Notify.Timeout,
				Retry:     retry.NewPolicy(retry.ModeExponential, 200*time.Millisecond, 2*time.Second, cfg.Notify.Retries),
			})
			env.closers = append(env.closers, pub)
		}
	}
	return env
}

func (e *buildEnv) generator(cfg *config.Config) *pipeline.Generator {
	opts := []pipeline.Option{pipeline.WithRecorder(e.recorder), pipeline.WithObserver(e.observers)}
	return pipeline.NewGenerator(cfg, append(opts, extraGeneratorOptions...)...)
}

func (e *buildEnv) Close() {
	for _, c := range e.closers {
		if err := c.Close(); err != nil {
			slog.Warn("Failed to close build integration", logfields.Error(err))
		}
	}
}

package daemon

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/doxybuild/internal/config"
	"git.home.luguber.info/inful/doxybuild/internal/logfields"
	"git.home.luguber.info/inful/doxybuild/internal/pipeline"
)

// Trigger reasons recorded on builds.
const (
	TriggerStartup  = "startup"
	TriggerChange   = "change"
	TriggerSchedule = "schedule"
)

// Options configures a Daemon.
type Options struct {
	Config  *config.Config
	Builder Builder
	Request pipeline.Request // version and output dir of every rebuild
	// Registry receives the daemon gauges and is served on metrics.listen.
	// Nil disables both.
	Registry *prom.Registry
}

// Daemon rebuilds the documentation on source changes and on a schedule.
type Daemon struct {
	opts   Options
	worker *Worker
	server atomic.Pointer[MetricsServer]
}

// New validates opts and creates a Daemon.
func New(opts Options) (*Daemon, error) {
	if opts.Config == nil {
		return nil, errors.New("daemon: config is required")
	}
	if opts.Builder == nil {
		return nil, errors.New("daemon: builder is required")
	}
	d := &Daemon{opts: opts, worker: NewWorker(opts.Builder, opts.Request)}
	if opts.Registry != nil {
		d.registerCollectors(opts.Registry)
	}
	return d, nil
}

func (d *Daemon) registerCollectors(reg *prom.Registry) {
	reg.MustRegister(
		prom.NewCounterFunc(prom.CounterOpts{Namespace: "doxybuild", Name: "daemon_builds_total", Help: "Builds run by the watch daemon"},
			func() float64 { return float64(d.worker.Builds()) }),
		prom.NewCounterFunc(prom.CounterOpts{Namespace: "doxybuild", Name: "daemon_coalesced_requests_total", Help: "Rebuild requests merged into a pending build"},
			func() float64 { return float64(d.worker.Coalesced()) }),
		prom.NewGaugeFunc(prom.GaugeOpts{Namespace: "doxybuild", Name: "daemon_last_build_success", Help: "1 if the most recent build succeeded or only warned"},
			func() float64 {
				r := d.worker.LastReport()
				if r != nil && (r.Outcome == pipeline.OutcomeSuccess || r.Outcome == pipeline.OutcomeWarning) {
					return 1
				}
				return 0
			}),
	)
}

// Worker exposes the build worker (status, tests).
func (d *Daemon) Worker() *Worker { return d.worker }

// MetricsAddr returns the metrics listen address, or "" when not serving.
func (d *Daemon) MetricsAddr() string {
	if s := d.server.Load(); s != nil {
		return s.Addr()
	}
	return ""
}

// Run builds once, then watches until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	cfg := d.opts.Config
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.worker.Run(ctx)
	}()
	d.worker.Request(TriggerStartup)

	outDir := d.opts.Request.OutputDir
	if outDir == "" {
		outDir = cfg.Resolve(cfg.Output.Directory)
	}
	ignore := []string{cfg.Resolve(cfg.Staging.Directory), outDir}
	if cfg.History.Path != "" {
		ignore = append(ignore, filepath.Dir(cfg.Resolve(cfg.History.Path)))
	}
	watcher, err := NewWatcher([]string{cfg.Source.Root}, ignore)
	if err != nil {
		wg.Wait()
		return err
	}
	debouncer := NewDebouncer(cfg.Watch.Debounce, func() { d.worker.Request(TriggerChange) })
	wg.Add(1)
	go func() {
		defer wg.Done()
		watcher.Run(ctx, func(string) { debouncer.Trigger() })
	}()
	slog.Info("Watching sources", logfields.Path(cfg.Source.Root), slog.Duration("debounce", cfg.Watch.Debounce))

	var sched *Scheduler
	if cfg.Watch.Interval > 0 {
		if sched, err = NewScheduler(); err == nil {
			_, err = sched.Every(cfg.Watch.Interval, "periodic-rebuild", func() { d.worker.Request(TriggerSchedule) })
		}
		if err != nil {
			slog.Error("Periodic rebuilds disabled", logfields.Error(err))
			sched = nil
		} else {
			sched.Start()
		}
	}

	if d.opts.Registry != nil && cfg.Metrics.Listen != "" {
		srv, err := StartMetricsServer(cfg.Metrics.Listen, d.opts.Registry)
		if err != nil {
			slog.Error("Metrics endpoint disabled", logfields.Error(err))
		} else {
			d.server.Store(srv)
		}
	}

	<-ctx.Done()
	slog.Info("Shutting down watcher")
	debouncer.Stop()
	if sched != nil {
		if err := sched.Stop(); err != nil {
			slog.Warn("Scheduler shutdown error", logfields.Error(err))
		}
	}
	if srv := d.server.Load(); srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Metrics server shutdown error", logfields.Error(err))
		}
	}
	_ = watcher.Close()
	wg.Wait()
	return nil
}

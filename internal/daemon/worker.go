package daemon

import (
	"context"
	"log/slog"
	"sync/atomic"

	"git.home.luguber.info/inful/doxybuild/internal/logfields"
	"git.home.luguber.info/inful/doxybuild/internal/pipeline"
)

// Builder runs one documentation build.
type Builder interface {
	Build(ctx context.Context, req pipeline.Request) (*pipeline.BuildReport, error)
}

// Worker serializes builds. At most one request waits while a build runs.
type Worker struct {
	builder  Builder
	template pipeline.Request
	pending  chan string

	builds    atomic.Int64
	coalesced atomic.Int64
	last      atomic.Pointer[pipeline.BuildReport]
}

// NewWorker creates a worker building template with the trigger reason filled in.
func NewWorker(b Builder, template pipeline.Request) *Worker {
	return &Worker{builder: b, template: template, pending: make(chan string, 1)}
}

// Request asks for a build. It never blocks; a request made while another
// is already waiting is merged into it.
func (w *Worker) Request(reason string) {
	select {
	case w.pending <- reason:
		slog.Debug("Build requested", logfields.Trigger(reason))
	default:
		w.coalesced.Add(1)
		slog.Debug("Build request coalesced", logfields.Trigger(reason))
	}
}

// Run processes requests until ctx is done.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case reason := <-w.pending:
			req := w.template
			req.Trigger = reason
			report, err := w.builder.Build(ctx, req)
			w.builds.Add(1)
			if report != nil {
				w.last.Store(report)
			}
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Error("Rebuild failed", logfields.Trigger(reason), logfields.Error(err))
			}
		}
	}
}

// Builds is the number of builds run so far.
func (w *Worker) Builds() int64 { return w.builds.Load() }

// Coalesced is the number of requests merged into an already pending one.
func (w *Worker) Coalesced() int64 { return w.coalesced.Load() }

// LastReport returns the report of the most recent build, or nil.
func (w *Worker) LastReport() *pipeline.BuildReport { return w.last.Load() }

package pipeline

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/doxybuild/internal/eventstore"
	"git.home.luguber.info/inful/doxybuild/internal/logfields"
	"git.home.luguber.info/inful/doxybuild/internal/metrics"
	"git.home.luguber.info/inful/doxybuild/internal/notify"
	"git.home.luguber.info/inful/doxybuild/internal/retry"
)

// BuildObserver receives callbacks around stage execution and build lifecycle.
type BuildObserver interface {
	OnStageStart(stage StageName)
	OnStageComplete(stage StageName, duration time.Duration, result StageResult)
	OnBuildComplete(report *BuildReport)
}

// NoopObserver is a no-op implementation.
type NoopObserver struct{}

func (NoopObserver) OnStageStart(_ StageName)                                    {}
func (NoopObserver) OnStageComplete(_ StageName, _ time.Duration, _ StageResult) {}
func (NoopObserver) OnBuildComplete(_ *BuildReport)                              {}

// MultiObserver fans callbacks out to each observer in order.
type MultiObserver []BuildObserver

func (m MultiObserver) OnStageStart(stage StageName) {
	for _, o := range m {
		o.OnStageStart(stage)
	}
}

func (m MultiObserver) OnStageComplete(stage StageName, d time.Duration, res StageResult) {
	for _, o := range m {
		o.OnStageComplete(stage, d, res)
	}
}

func (m MultiObserver) OnBuildComplete(report *BuildReport) {
	for _, o := range m {
		o.OnBuildComplete(report)
	}
}

// RecorderObserver adapts metrics.Recorder into a BuildObserver.
type RecorderObserver struct{ Recorder metrics.Recorder }

func (r RecorderObserver) OnStageStart(_ StageName) {}

func (r RecorderObserver) OnStageComplete(stage StageName, d time.Duration, _ StageResult) {
	if r.Recorder != nil {
		r.Recorder.ObserveStageDuration(string(stage), d)
	}
}

func (r RecorderObserver) OnBuildComplete(report *BuildReport) {
	if r.Recorder != nil {
		r.Recorder.ObserveBuildDuration(report.Duration())
		r.Recorder.IncBuildOutcome(string(report.Outcome))
	}
}

// HistoryObserver appends every finished build to a history store.
type HistoryObserver struct {
	Store   eventstore.Store
	Timeout time.Duration
}

func (HistoryObserver) OnStageStart(_ StageName)                                    {}
func (HistoryObserver) OnStageComplete(_ StageName, _ time.Duration, _ StageResult) {}

func (h HistoryObserver) OnBuildComplete(report *BuildReport) {
	if h.Store == nil {
		return
	}
	payload, err := report.JSON()
	if err != nil {
		slog.Warn("Failed to encode build report for history", logfields.BuildID(report.BuildID), logfields.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeoutOr(h.Timeout, 5*time.Second))
	defer cancel()
	rec := eventstore.Record{
		BuildID:    report.BuildID,
		Version:    report.RequestedVersion,
		Outcome:    string(report.Outcome),
		Revision:   report.SourceRevision,
		Trigger:    report.Trigger,
		StartedAt:  report.Start,
		FinishedAt: report.End,
		Payload:    payload,
	}
	if err := h.Store.Append(ctx, rec); err != nil {
		slog.Warn("Failed to record build history", logfields.BuildID(report.BuildID), logfields.Error(err))
	}
}

// NotifyObserver publishes a BuildEvent for every finished build.
// Timeout bounds all attempts together.
type NotifyObserver struct {
	Publisher notify.Publisher
	Timeout   time.Duration
	Retry     retry.Policy
}

func (NotifyObserver) OnStageStart(_ StageName)                                    {}
func (NotifyObserver) OnStageComplete(_ StageName, _ time.Duration, _ StageResult) {}

func (n NotifyObserver) OnBuildComplete(report *BuildReport) {
	if n.Publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeoutOr(n.Timeout, 5*time.Second))
	defer cancel()
	ev := notify.BuildEvent{
		BuildID:    report.BuildID,
		Version:    report.Version,
		Outcome:    string(report.Outcome),
		Revision:   report.SourceRevision,
		Trigger:    report.Trigger,
		DurationMS: report.Duration().Milliseconds(),
		Issues:     report.IssueCodes(),
		OutputDir:  report.OutputDir,
		FinishedAt: report.End,
	}
	if err := retry.Do(ctx, n.Retry, func() error { return n.Publisher.Publish(ctx, ev) }); err != nil {
		slog.Warn("Failed to publish build event", logfields.BuildID(report.BuildID), logfields.Error(err))
	}
}

func timeoutOr(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/doxybuild/internal/logfields"
)

// RunStages executes stages in order, recording timing and stopping on the
// first fatal or canceled stage. Warnings are recorded and the run continues.
func RunStages(ctx context.Context, bs *BuildState, stages []StageDef) error {
	obs := bs.observer()
	rec := bs.recorder()

	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := newCanceledStageError(st.Name, ctx.Err())
			bs.Report.StageErrorKinds[st.Name] = se.Kind
			bs.Report.AddIssue(IssueCanceled, st.Name, SeverityError, se.Error(), se)
			bs.Report.RecordStageResult(st.Name, StageResultCanceled, rec)
			obs.OnStageComplete(st.Name, 0, StageResultCanceled)
			return se
		default:
		}

		obs.OnStageStart(st.Name)
		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)
		bs.Report.StageDurations[string(st.Name)] = dur

		out := ClassifyStageResult(st.Name, err)
		if out.Error != nil {
			bs.Report.StageErrorKinds[st.Name] = out.Error.Kind
			bs.Report.AddIssue(out.IssueCode, out.Stage, out.Severity, out.Error.Error(), out.Error)
		}
		bs.Report.RecordStageResult(st.Name, out.Result, rec)
		obs.OnStageComplete(st.Name, dur, out.Result)

		attrs := []any{logfields.Stage(string(st.Name)), logfields.DurationMS(float64(dur.Microseconds()) / 1000), logfields.BuildID(bs.Report.BuildID)}
		switch out.Result {
		case StageResultSuccess:
			slog.Debug("Stage complete", attrs...)
		case StageResultWarning:
			slog.Warn("Stage completed with warnings", append(attrs, logfields.Error(out.Error.Err))...)
		default:
			slog.Error("Stage failed", append(attrs, logfields.Error(out.Error.Err))...)
		}

		if out.Abort {
			if out.Error != nil {
				return out.Error
			}
			return fmt.Errorf("stage %s aborted", st.Name)
		}
	}
	return nil
}

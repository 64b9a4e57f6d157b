package pipeline

import (
	"context"
	stdErrors "errors"
	"io/fs"

	"git.home.luguber.info/inful/doxybuild/internal/doxygen"
	"git.home.luguber.info/inful/doxybuild/internal/foundation/errors"
	"git.home.luguber.info/inful/doxybuild/internal/layout"
	"git.home.luguber.info/inful/doxybuild/internal/templates"
	"git.home.luguber.info/inful/doxybuild/internal/versioning"
)

// StageOutcome is the normalized result of one stage execution.
type StageOutcome struct {
	Stage     StageName
	Error     *StageError
	Result    StageResult
	IssueCode ReportIssueCode
	Severity  IssueSeverity
	Abort     bool
}

func resultFromStageErrorKind(k StageErrorKind) StageResult {
	switch k {
	case StageErrorWarning:
		return StageResultWarning
	case StageErrorCanceled:
		return StageResultCanceled
	default:
		return StageResultFatal
	}
}

func severityFromStageErrorKind(k StageErrorKind) IssueSeverity {
	if k == StageErrorWarning {
		return SeverityWarning
	}
	return SeverityError
}

// ClassifyStageResult converts a raw error from a stage into a StageOutcome.
// Errors that are not StageErrors are fatal, except context cancellation.
func ClassifyStageResult(stage StageName, err error) StageOutcome {
	if err == nil {
		return StageOutcome{Stage: stage, Result: StageResultSuccess}
	}

	var se *StageError
	if !stdErrors.As(err, &se) {
		if stdErrors.Is(err, context.Canceled) || stdErrors.Is(err, context.DeadlineExceeded) {
			se = newCanceledStageError(stage, err)
		} else {
			se = newFatalStageError(stage, err)
		}
	}

	return StageOutcome{
		Stage:     stage,
		Error:     se,
		Result:    resultFromStageErrorKind(se.Kind),
		IssueCode: issueCode(se),
		Severity:  severityFromStageErrorKind(se.Kind),
		Abort:     se.Kind != StageErrorWarning,
	}
}

// issueCode picks the report code from the cause first, then the stage.
func issueCode(se *StageError) ReportIssueCode {
	cause := se.Err
	switch {
	case se.Kind == StageErrorCanceled:
		return IssueCanceled
	case stdErrors.Is(cause, doxygen.ErrToolNotFound):
		return IssueToolUnavailable
	case stdErrors.Is(cause, doxygen.ErrToolVersionTooLow):
		return IssueToolVersionTooLow
	case stdErrors.Is(cause, versioning.ErrInvalidVersionFormat):
		return IssueInvalidVersion
	case stdErrors.Is(cause, layout.ErrMissingHeading),
		stdErrors.Is(cause, layout.ErrMalformedLayout),
		stdErrors.Is(cause, layout.ErrAnchorNotFound):
		return IssueLayout
	case stdErrors.Is(cause, templates.ErrUnknownParameter):
		return IssueTemplate
	}

	switch se.Stage {
	case StagePrepareStaging, StageSyncResources, StageCopyTutorials:
		return IssueSyncFailure
	case StageBibliography:
		return IssueBibliography
	case StageLayout:
		return IssueLayout
	case StageGenerateConfig:
		return IssueTemplate
	case StageRunGenerator:
		if se.Kind == StageErrorWarning {
			return IssueGeneratorWarnings
		}
		return IssueGeneratorFailed
	case StageVerifyOutput:
		return IssueBrokenLinks
	default:
		return IssueGenericStageError
	}
}

// Classify wraps a build failure into a ClassifiedError whose category
// drives the CLI exit code. Already classified errors pass through.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.AsClassified(err); ok {
		return err
	}

	var b *errors.ErrorBuilder
	switch {
	case stdErrors.Is(err, context.Canceled), stdErrors.Is(err, context.DeadlineExceeded):
		b = errors.NewError(errors.CategoryRuntime, "build canceled")
	case stdErrors.Is(err, versioning.ErrInvalidVersionFormat):
		b = errors.ValidationError("invalid version")
	case stdErrors.Is(err, doxygen.ErrToolNotFound), stdErrors.Is(err, doxygen.ErrToolVersionTooLow):
		b = errors.ToolError("documentation generator unavailable")
	case stdErrors.Is(err, doxygen.ErrGeneratorFailed):
		b = errors.ToolError("documentation generator failed")
	case stdErrors.Is(err, layout.ErrMissingHeading),
		stdErrors.Is(err, layout.ErrMalformedLayout),
		stdErrors.Is(err, layout.ErrAnchorNotFound):
		b = errors.LayoutError("navigation layout could not be built")
	case stdErrors.Is(err, templates.ErrUnknownParameter):
		b = errors.TemplateError("configuration template could not be rendered")
	case isFSError(err):
		b = errors.FileSystemError("file system error")
	default:
		b = errors.BuildError("build failed")
	}
	b = b.WithCause(err)
	var se *StageError
	if stdErrors.As(err, &se) {
		b = b.WithContext("stage", string(se.Stage))
	}
	return b.Build()
}

func isFSError(err error) bool {
	var pe *fs.PathError
	return stdErrors.As(err, &pe) || stdErrors.Is(err, fs.ErrNotExist) || stdErrors.Is(err, fs.ErrPermission)
}

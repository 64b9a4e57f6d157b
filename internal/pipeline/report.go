package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/doxybuild/internal/metrics"
	"git.home.luguber.info/inful/doxybuild/internal/version"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// ReportIssueCode enumerates machine-parseable issue identifiers.
// These codes are a stable contract: append only.
type ReportIssueCode string

const (
	IssueToolUnavailable   ReportIssueCode = "TOOL_UNAVAILABLE"
	IssueToolVersionTooLow ReportIssueCode = "TOOL_VERSION_TOO_LOW"
	IssueInvalidVersion    ReportIssueCode = "INVALID_VERSION"
	IssueLayout            ReportIssueCode = "LAYOUT_ERROR"
	IssueTemplate          ReportIssueCode = "TEMPLATE_ERROR"
	IssueSyncFailure       ReportIssueCode = "SYNC_FAILURE"
	IssueBibliography      ReportIssueCode = "BIBLIOGRAPHY"
	IssueGeneratorFailed   ReportIssueCode = "GENERATOR_FAILED"
	IssueGeneratorWarnings ReportIssueCode = "GENERATOR_WARNINGS"
	IssueBrokenLinks       ReportIssueCode = "BROKEN_LINKS"
	IssueCanceled          ReportIssueCode = "BUILD_CANCELED"
	IssueGenericStageError ReportIssueCode = "GENERIC_STAGE_ERROR"
)

// IssueSeverity represents normalized severity levels.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// ReportIssue is a structured entry describing a discrete problem encountered.
type ReportIssue struct {
	Code     ReportIssueCode `json:"code"`
	Stage    StageName       `json:"stage,omitempty"`
	Severity IssueSeverity   `json:"severity"`
	Message  string          `json:"message"`
}

// StageCount aggregates counts of outcomes for a stage.
type StageCount struct {
	Success  int `json:"success"`
	Warning  int `json:"warning"`
	Fatal    int `json:"fatal"`
	Canceled int `json:"canceled"`
	Skipped  int `json:"skipped"`
}

// BuildReport captures what a build did and how it ended.
type BuildReport struct {
	SchemaVersion    int
	BuildID          string
	Trigger          string
	RequestedVersion string // version as given on the command line
	Version          string // normalized rendering of the parsed version
	ToolVersion      string
	SourceRevision   string
	OutputDir        string
	StagingDir       string
	Start            time.Time
	End              time.Time
	Errors           []error // fatal errors (at most one today)
	Warnings         []error
	StageDurations   map[string]time.Duration
	StageErrorKinds  map[StageName]StageErrorKind
	StageCounts      map[StageName]StageCount
	FilesCopied      int
	FilesSkipped     int
	FilesExcluded    int
	TutorialsCopied  int
	FencesRewritten  int
	Tutorials        int // tutorial tabs added to the layout
	Pages            int // page tabs added to the layout
	GeneratorRan     bool
	GeneratorWarns   int
	BrokenLinks      int
	Outcome          BuildOutcome
	Issues           []ReportIssue
	DoxybuildVersion string
}

// NewBuildReport constructs a report with a fresh build ID.
func NewBuildReport(requested string) *BuildReport {
	return &BuildReport{
		SchemaVersion:    1,
		BuildID:          uuid.NewString(),
		RequestedVersion: requested,
		Start:            time.Now(),
		StageDurations:   make(map[string]time.Duration),
		StageErrorKinds:  make(map[StageName]StageErrorKind),
		StageCounts:      make(map[StageName]StageCount),
		DoxybuildVersion: version.Version,
	}
}

// AddIssue appends a structured issue and mirrors severity into Errors/Warnings.
func (r *BuildReport) AddIssue(code ReportIssueCode, stage StageName, severity IssueSeverity, msg string, err error) {
	r.Issues = append(r.Issues, ReportIssue{Code: code, Stage: stage, Severity: severity, Message: msg})
	if err == nil {
		return
	}
	switch severity {
	case SeverityError:
		r.Errors = append(r.Errors, err)
	case SeverityWarning:
		r.Warnings = append(r.Warnings, err)
	}
}

// IssueCodes lists the codes of all recorded issues in order.
func (r *BuildReport) IssueCodes() []string {
	out := make([]string, 0, len(r.Issues))
	for _, is := range r.Issues {
		out = append(out, string(is.Code))
	}
	return out
}

// Finish sets the end time of the report.
func (r *BuildReport) Finish() { r.End = time.Now() }

// Duration is the wall-clock time of the build so far.
func (r *BuildReport) Duration() time.Duration {
	if r.End.IsZero() {
		return time.Since(r.Start)
	}
	return r.End.Sub(r.Start)
}

// RecordStageResult updates stage counters and emits metrics (if recorder non-nil).
func (r *BuildReport) RecordStageResult(stage StageName, res StageResult, recorder metrics.Recorder) {
	if r.StageCounts == nil {
		r.StageCounts = make(map[StageName]StageCount)
	}
	sc := r.StageCounts[stage]
	var label metrics.ResultLabel
	switch res {
	case StageResultSuccess:
		sc.Success++
		label = metrics.ResultSuccess
	case StageResultWarning:
		sc.Warning++
		label = metrics.ResultWarning
	case StageResultFatal:
		sc.Fatal++
		label = metrics.ResultFatal
	case StageResultCanceled:
		sc.Canceled++
		label = metrics.ResultCanceled
	case StageResultSkipped:
		sc.Skipped++
		label = metrics.ResultSkipped
	}
	r.StageCounts[stage] = sc
	if recorder != nil && label != "" {
		recorder.IncStageResult(string(stage), label)
	}
}

// DeriveOutcome sets Outcome from the recorded errors and warnings.
func (r *BuildReport) DeriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			var se *StageError
			if errors.As(e, &se) && se.Kind == StageErrorCanceled {
				r.Outcome = OutcomeCanceled
				return
			}
		}
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 {
		r.Outcome = OutcomeWarning
		return
	}
	r.Outcome = OutcomeSuccess
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	return fmt.Sprintf("version=%s tool=%s revision=%s duration=%s copied=%d skipped=%d tutorials=%d pages=%d generator_warnings=%d broken_links=%d errors=%d warnings=%d outcome=%s",
		r.Version, r.ToolVersion, r.SourceRevision, r.Duration().Truncate(time.Millisecond),
		r.FilesCopied, r.FilesSkipped, r.Tutorials, r.Pages, r.GeneratorWarns, r.BrokenLinks,
		len(r.Errors), len(r.Warnings), string(r.Outcome))
}

// JSON encodes the sanitized report.
func (r *BuildReport) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r.SanitizedCopy(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report json: %w", err)
	}
	return data, nil
}

// Persist writes build-report.json and build-report.txt atomically into root.
func (r *BuildReport) Persist(root string) error {
	if r.End.IsZero() {
		r.Finish()
		r.DeriveOutcome()
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return fmt.Errorf("ensure root for report: %w", err)
	}
	jb, err := r.JSON()
	if err != nil {
		return err
	}
	if err := writeAtomic(filepath.Join(root, "build-report.json"), jb); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(root, "build-report.txt"), []byte(r.Summary()+"\n"))
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("atomic rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

// SanitizedCopy converts the report into its JSON form, with errors as strings.
func (r *BuildReport) SanitizedCopy() *BuildReportSerializable {
	stageCounts := make(map[string]StageCount, len(r.StageCounts))
	for k, v := range r.StageCounts {
		stageCounts[string(k)] = v
	}
	sek := make(map[string]string, len(r.StageErrorKinds))
	for k, v := range r.StageErrorKinds {
		sek[string(k)] = string(v)
	}
	durations := make(map[string]int64, len(r.StageDurations))
	for k, v := range r.StageDurations {
		durations[k] = v.Milliseconds()
	}
	issues := r.Issues
	if issues == nil {
		issues = []ReportIssue{}
	}

	s := &BuildReportSerializable{
		SchemaVersion:    r.SchemaVersion,
		BuildID:          r.BuildID,
		Trigger:          r.Trigger,
		RequestedVersion: r.RequestedVersion,
		Version:          r.Version,
		ToolVersion:      r.ToolVersion,
		SourceRevision:   r.SourceRevision,
		OutputDir:        r.OutputDir,
		Start:            r.Start,
		End:              r.End,
		Errors:           make([]string, len(r.Errors)),
		Warnings:         make([]string, len(r.Warnings)),
		StageDurationsMS: durations,
		StageErrorKinds:  sek,
		StageCounts:      stageCounts,
		FilesCopied:      r.FilesCopied,
		FilesSkipped:     r.FilesSkipped,
		FilesExcluded:    r.FilesExcluded,
		TutorialsCopied:  r.TutorialsCopied,
		FencesRewritten:  r.FencesRewritten,
		Tutorials:        r.Tutorials,
		Pages:            r.Pages,
		GeneratorRan:     r.GeneratorRan,
		GeneratorWarns:   r.GeneratorWarns,
		BrokenLinks:      r.BrokenLinks,
		Outcome:          string(r.Outcome),
		Issues:           issues,
		DoxybuildVersion: r.DoxybuildVersion,
	}
	for i, e := range r.Errors {
		s.Errors[i] = e.Error()
	}
	for i, w := range r.Warnings {
		s.Warnings[i] = w.Error()
	}
	return s
}

// BuildReportSerializable mirrors BuildReport with string errors for JSON output.
type BuildReportSerializable struct {
	SchemaVersion    int                   `json:"schema_version"`
	BuildID          string                `json:"build_id"`
	Trigger          string                `json:"trigger,omitempty"`
	RequestedVersion string                `json:"requested_version"`
	Version          string                `json:"version,omitempty"`
	ToolVersion      string                `json:"tool_version,omitempty"`
	SourceRevision   string                `json:"source_revision,omitempty"`
	OutputDir        string                `json:"output_dir,omitempty"`
	Start            time.Time             `json:"start"`
	End              time.Time             `json:"end"`
	Errors           []string              `json:"errors"`
	Warnings         []string              `json:"warnings"`
	StageDurationsMS map[string]int64      `json:"stage_durations_ms"`
	StageErrorKinds  map[string]string     `json:"stage_error_kinds"`
	StageCounts      map[string]StageCount `json:"stage_counts"`
	FilesCopied      int                   `json:"files_copied"`
	FilesSkipped     int                   `json:"files_skipped"`
	FilesExcluded    int                   `json:"files_excluded"`
	TutorialsCopied  int                   `json:"tutorials_copied"`
	FencesRewritten  int                   `json:"fences_rewritten"`
	Tutorials        int                   `json:"tutorials"`
	Pages            int                   `json:"pages"`
	GeneratorRan     bool                  `json:"generator_ran"`
	GeneratorWarns   int                   `json:"generator_warnings"`
	BrokenLinks      int                   `json:"broken_links"`
	Outcome          string                `json:"outcome"`
	Issues           []ReportIssue         `json:"issues"`
	DoxybuildVersion string                `json:"doxybuild_version,omitempty"`
}

package pipeline

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/doxybuild/internal/metrics"
)

func TestNewBuildReport(t *testing.T) {
	r := NewBuildReport("1.2")
	_, err := uuid.Parse(r.BuildID)
	require.NoError(t, err)
	require.Equal(t, "1.2", r.RequestedVersion)
	require.False(t, r.Start.IsZero())
}

func TestDeriveOutcome(t *testing.T) {
	r := NewBuildReport("1.0")
	r.DeriveOutcome()
	require.Equal(t, OutcomeSuccess, r.Outcome)

	r.AddIssue(IssueGeneratorWarnings, StageRunGenerator, SeverityWarning, "w", errors.New("w"))
	r.DeriveOutcome()
	require.Equal(t, OutcomeWarning, r.Outcome)

	r.AddIssue(IssueLayout, StageLayout, SeverityError, "e", newFatalStageError(StageLayout, errors.New("e")))
	r.DeriveOutcome()
	require.Equal(t, OutcomeFailed, r.Outcome)

	c := NewBuildReport("1.0")
	c.AddIssue(IssueCanceled, StageLayout, SeverityError, "c", newCanceledStageError(StageLayout, errors.New("c")))
	c.DeriveOutcome()
	require.Equal(t, OutcomeCanceled, c.Outcome)
}

func TestPersist(t *testing.T) {
	dir := t.TempDir()
	r := NewBuildReport("1.2")
	r.Version = "1.2"
	r.StageDurations[string(StageLayout)] = 1500 * time.Millisecond
	r.RecordStageResult(StageLayout, StageResultSuccess, metrics.NoopRecorder{})
	r.AddIssue(IssueBibliography, StageBibliography, SeverityWarning, "missing", errors.New("missing"))

	require.NoError(t, r.Persist(dir))
	require.NoFileExists(t, filepath.Join(dir, "build-report.json.tmp"))

	data, err := os.ReadFile(filepath.Join(dir, "build-report.json"))
	require.NoError(t, err)
	var decoded BuildReportSerializable
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, r.BuildID, decoded.BuildID)
	require.Equal(t, "warning", decoded.Outcome)
	require.Equal(t, int64(1500), decoded.StageDurationsMS["layout"])
	require.Equal(t, 1, decoded.StageCounts["layout"].Success)
	require.Equal(t, []string{"missing"}, decoded.Warnings)
	require.Empty(t, decoded.Errors)

	txt, err := os.ReadFile(filepath.Join(dir, "build-report.txt"))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(string(txt), "outcome=warning\n"))
}

package notify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildEventJSON(t *testing.T) {
	ev := BuildEvent{
		BuildID:    "b-1",
		Version:    "1.4",
		Outcome:    "warning",
		DurationMS: 1200,
		Issues:     []string{"GENERATOR_WARNINGS"},
		FinishedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"build_id":"b-1","version":"1.4","outcome":"warning","duration_ms":1200,
		"issues":["GENERATOR_WARNINGS"],"finished_at":"2026-01-02T03:04:05Z"
	}`, string(data))
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	require.NoError(t, p.Publish(t.Context(), BuildEvent{}))
	require.NoError(t, p.Close())
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect("nats://127.0.0.1:1", "doxybuild.builds", 200*time.Millisecond)
	require.Error(t, err)
	require.Contains(t, err.Error(), "connect to NATS")
}

func TestNATSPublisher_CloseNil(t *testing.T) {
	var p *NATSPublisher
	require.NoError(t, p.Close())
}

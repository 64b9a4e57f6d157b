package eventstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newRecord(id string, started time.Time) Record {
	return Record{
		BuildID:    id,
		Version:    "1.2",
		Outcome:    "success",
		Revision:   "0123456789ab",
		Trigger:    "cli",
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
		Payload:    []byte(`{"outcome":"success"}`),
	}
}

func TestSQLiteStore_AppendAndGet(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	started := time.UnixMilli(1_700_000_000_000)
	require.NoError(t, store.Append(ctx, newRecord("b1", started)))

	got, err := store.Get(ctx, "b1")
	require.NoError(t, err)
	require.Equal(t, "b1", got.BuildID)
	require.Equal(t, "1.2", got.Version)
	require.Equal(t, "success", got.Outcome)
	require.Equal(t, "0123456789ab", got.Revision)
	require.Equal(t, "cli", got.Trigger)
	require.True(t, got.StartedAt.Equal(started))
	require.Equal(t, 1500*time.Millisecond, got.Duration())
	require.JSONEq(t, `{"outcome":"success"}`, string(got.Payload))
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.Get(t.Context(), "nope")
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func TestSQLiteStore_DuplicateBuildID(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	rec := newRecord("dup", time.Now())
	require.NoError(t, store.Append(t.Context(), rec))
	require.Error(t, store.Append(t.Context(), rec))
}

func TestSQLiteStore_RecentNewestFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "history.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)

	ctx := t.Context()
	base := time.UnixMilli(1_700_000_000_000)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Append(ctx, newRecord(id, base.Add(time.Duration(i)*time.Minute))))
	}
	require.NoError(t, store.Close())

	// Reopen to check persistence.
	store, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	recent, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "c", recent[0].BuildID)
	require.Equal(t, "b", recent[1].BuildID)

	all, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

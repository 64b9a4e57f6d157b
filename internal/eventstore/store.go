// Package eventstore persists a history of documentation builds.
package eventstore

import (
	"context"
	"time"
)

// Record is one finished build as stored in the history.
type Record struct {
	ID         int64
	BuildID    string
	Version    string
	Outcome    string
	Revision   string
	Trigger    string
	StartedAt  time.Time
	FinishedAt time.Time
	// Payload holds the JSON-encoded build report.
	Payload []byte
}

// Duration is the wall-clock time of the build.
func (r Record) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store defines the interface for persisting and retrieving build records.
type Store interface {
	// Append adds a finished build.
	Append(ctx context.Context, rec Record) error

	// Get returns the record for buildID, or ErrRecordNotFound.
	Get(ctx context.Context, buildID string) (Record, error)

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)

	// Close closes the store and releases resources.
	Close() error
}

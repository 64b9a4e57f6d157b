// Package notify publishes build completion events to NATS.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/doxybuild/internal/logfields"
)

// BuildEvent is the message published when a build finishes.
type BuildEvent struct {
	BuildID    string    `json:"build_id"`
	Version    string    `json:"version"`
	Outcome    string    `json:"outcome"`
	Revision   string    `json:"revision,omitempty"`
	Trigger    string    `json:"trigger,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	Issues     []string  `json:"issues,omitempty"`
	OutputDir  string    `json:"output_dir,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// Publisher delivers build events.
type Publisher interface {
	Publish(ctx context.Context, ev BuildEvent) error
	Close() error
}

// NoopPublisher discards events.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, BuildEvent) error { return nil }
func (NoopPublisher) Close() error                              { return nil }

// NATSPublisher publishes events on a core NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	timeout time.Duration
}

// Connect dials url and returns a publisher for subject.
func Connect(url, subject string, timeout time.Duration) (*NATSPublisher, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	opts := []nats.Option{
		nats.Name("doxybuild"),
		nats.Timeout(timeout),
		nats.MaxReconnects(3),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("NATS disconnected", logfields.Error(err))
			}
		}),
	}
	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	slog.Debug("Connected to NATS", "url", conn.ConnectedUrl(), "subject", subject)
	return &NATSPublisher{conn: conn, subject: subject, timeout: timeout}, nil
}

// Publish encodes ev as JSON and flushes it to the server.
func (p *NATSPublisher) Publish(ctx context.Context, ev BuildEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal build event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", p.subject, err)
	}

	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if err := p.conn.FlushTimeout(timeout); err != nil {
		return fmt.Errorf("flush NATS connection: %w", err)
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if p == nil || p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}

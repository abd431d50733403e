// Package telemetry publishes generation lifecycle events to NATS so that
// external QA and dashboard tooling can follow a running engine.
package telemetry

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/middleware"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/pkg/retry"
)

// DefaultSubjectPrefix is used when no prefix is configured.
const DefaultSubjectPrefix = "rngen.generation"

// Conn is the subset of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Event is the JSON payload published for every lifecycle event.
type Event struct {
	Timestamp  string         `json:"timestamp"` // RFC3339 format
	Event      string         `json:"event"`
	RequestID  string         `json:"request_id"`
	StrategyID string         `json:"strategy_id"`
	Seed       int64          `json:"seed"`
	StreamPath []string       `json:"stream_path"`
	Result     string         `json:"result,omitempty"`
	Error      map[string]any `json:"error,omitempty"`
}

// Publisher is a middleware.Listener that forwards events to NATS.
// Publish failures are logged and never affect generation.
type Publisher struct {
	conn   Conn
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

// NewPublisher creates a publisher writing to <prefix>.started,
// <prefix>.completed and <prefix>.failed.
func NewPublisher(conn Conn, prefix string, logger *slog.Logger) *Publisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		conn:   conn,
		prefix: prefix,
		logger: logger.With("component", "telemetry"),
		now:    time.Now,
	}
}

// Connect dials a NATS server for telemetry, retrying with backoff
// according to policy.
func Connect(ctx context.Context, url string, policy retry.Policy, opts ...nats.Option) (*nats.Conn, error) {
	opts = append([]nats.Option{nats.Name("rngen-telemetry")}, opts...)
	nc, err := retry.Do(ctx, policy, func() (*nats.Conn, error) {
		return nats.Connect(url, opts...)
	})
	if err != nil {
		return nil, errors.WrapResource(err, "telemetry", "Connect", "NATS connection")
	}
	return nc, nil
}

// Subject returns the subject for an event name.
func (p *Publisher) Subject(event string) string {
	return p.prefix + "." + event
}

// OnStarted implements middleware.Listener.
func (p *Publisher) OnStarted(_ map[string]any, meta middleware.Metadata) {
	p.publish(p.event("started", meta))
}

// OnCompleted implements middleware.Listener.
func (p *Publisher) OnCompleted(_ map[string]any, result string, meta middleware.Metadata) {
	e := p.event("completed", meta)
	e.Result = result
	p.publish(e)
}

// OnFailed implements middleware.Listener.
func (p *Publisher) OnFailed(_ map[string]any, err *errors.GenerationError, meta middleware.Metadata) {
	e := p.event("failed", meta)
	e.Error = err.ToMap()
	p.publish(e)
}

func (p *Publisher) event(name string, meta middleware.Metadata) Event {
	return Event{
		Timestamp:  p.now().UTC().Format(time.RFC3339Nano),
		Event:      name,
		RequestID:  meta.RequestID,
		StrategyID: meta.StrategyID,
		Seed:       meta.Seed,
		StreamPath: meta.StreamPath,
	}
}

func (p *Publisher) publish(e Event) {
	if p.conn == nil {
		return
	}

	data, err := json.Marshal(e)
	if err != nil {
		// Failed to marshal - log locally but don't fail
		p.logger.Error("Failed to marshal telemetry event", "event", e.Event, "error", err)
		return
	}

	if err := p.conn.Publish(p.Subject(e.Event), data); err != nil {
		p.logger.Warn("Failed to publish telemetry event",
			"subject", p.Subject(e.Event), "request_id", e.RequestID, "error", err)
	}
}

// Package debug records generation activity and renders it as a plain-text
// report.
//
// A Recorder is attached to the middleware as a lifecycle listener and to the
// engine context as a stream observer. It collects an ordered timeline,
// warnings, stream usage and counters until Close writes the report.
package debug

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/middleware"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/stream"
)

// ErrRecorderClosed is returned when a closed recorder is closed again.
var ErrRecorderClosed = errors.New("debug recorder already closed")

// EntryKind labels a timeline entry.
type EntryKind string

// Timeline entry kinds
const (
	EntryStart         EntryKind = "START"
	EntryComplete      EntryKind = "COMPLETE"
	EntryFail          EntryKind = "FAIL"
	EntryStrategyError EntryKind = "STRATEGY_ERROR"
)

// Entry is one timeline line.
type Entry struct {
	Seq        int
	Time       time.Time
	Kind       EntryKind
	StrategyID string
	RequestID  string
	Seed       int64
	StreamPath string
	Detail     string
}

// Warning is a diagnostic message with optional context.
type Warning struct {
	Time    time.Time
	Message string
	Context map[string]any
}

// StreamRecord notes one root stream derivation.
type StreamRecord struct {
	Time        time.Time
	Path        string
	MasterSeed  int64
	DerivedSeed int64
}

// Counters are the report's aggregate numbers.
type Counters struct {
	TotalCalls      int
	SuccessfulCalls int
	FailedCalls     int
	StrategyErrors  int
	Warnings        int
	StreamRecords   int
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock replaces time.Now, for reproducible reports.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// WithSessionID overrides the generated session id.
func WithSessionID(id string) Option {
	return func(r *Recorder) {
		if id != "" {
			r.sessionID = id
		}
	}
}

// Recorder accumulates debug information. All methods are safe for
// concurrent use; entries keep the order in which they were appended.
type Recorder struct {
	mu        sync.Mutex
	now       func() time.Time
	sessionID string
	started   time.Time
	timeline  []Entry
	warnings  []Warning
	streams   []StreamRecord
	counters  Counters
	closed    bool
}

// NewRecorder creates an open recorder.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		now:       time.Now,
		sessionID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.started = r.now()
	return r
}

// SessionID returns the recorder's session id.
func (r *Recorder) SessionID() string {
	return r.sessionID
}

func (r *Recorder) appendEntry(e Entry) {
	e.Seq = len(r.timeline) + 1
	e.Time = r.now()
	r.timeline = append(r.timeline, e)
}

func entryFor(kind EntryKind, meta middleware.Metadata, detail string) Entry {
	return Entry{
		Kind:       kind,
		StrategyID: meta.StrategyID,
		RequestID:  meta.RequestID,
		Seed:       meta.Seed,
		StreamPath: strings.Join(meta.StreamPath, stream.Separator),
		Detail:     detail,
	}
}

// OnStarted implements middleware.Listener.
func (r *Recorder) OnStarted(_ map[string]any, meta middleware.Metadata) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.counters.TotalCalls++
	r.appendEntry(entryFor(EntryStart, meta, ""))
}

// OnCompleted implements middleware.Listener.
func (r *Recorder) OnCompleted(_ map[string]any, result string, meta middleware.Metadata) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.counters.SuccessfulCalls++
	r.appendEntry(entryFor(EntryComplete, meta, fmt.Sprintf("result=%q", result)))
}

// OnFailed implements middleware.Listener.
func (r *Recorder) OnFailed(_ map[string]any, err *pkgerrors.GenerationError, meta middleware.Metadata) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.counters.FailedCalls++
	r.appendEntry(entryFor(EntryFail, meta, fmt.Sprintf("code=%s message=%q", err.Code, err.Message)))
}

// OnStreamDerived implements engine.StreamObserver.
func (r *Recorder) OnStreamDerived(path []string, masterSeed, derivedSeed int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.counters.StreamRecords++
	r.streams = append(r.streams, StreamRecord{
		Time:        r.now(),
		Path:        strings.Join(path, stream.Separator),
		MasterSeed:  masterSeed,
		DerivedSeed: derivedSeed,
	})
}

// RecordStrategyError notes a strategy failure observed outside the
// middleware, for example by a tool that calls a strategy directly.
func (r *Recorder) RecordStrategyError(strategyID string, err *pkgerrors.GenerationError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || err == nil {
		return
	}
	r.counters.StrategyErrors++
	r.appendEntry(Entry{
		Kind:       EntryStrategyError,
		StrategyID: strategyID,
		Detail:     fmt.Sprintf("code=%s message=%q", err.Code, err.Message),
	})
}

// Warn records a warning.
func (r *Recorder) Warn(message string, context map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.counters.Warnings++
	r.warnings = append(r.warnings, Warning{Time: r.now(), Message: message, Context: maps.Clone(context)})
}

// Counters returns a snapshot of the aggregate counters.
func (r *Recorder) Counters() Counters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters
}

// Timeline returns a copy of the timeline.
func (r *Recorder) Timeline() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.timeline...)
}

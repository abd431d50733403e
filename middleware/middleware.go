// Package middleware is the façade collaborators call to generate text.
//
// A Middleware resolves the seed and root stream path of each request,
// dispatches it through the strategy registry and emits exactly one pair of
// lifecycle events (started, then completed or failed) per top-level call.
// Nested sub-generations never emit events.
package middleware

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/dataset"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/engine"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/metric"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/schema"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/strategy"
)

// DefaultMaxDepth is the hard limit on nested dispatch per request.
const DefaultMaxDepth = 32

// Metadata describes one top-level request.
type Metadata struct {
	StrategyID string   `json:"strategy_id"`
	Seed       int64    `json:"seed"`
	StreamPath []string `json:"stream_path"`
	RequestID  string   `json:"request_id"`
}

// Listener observes request lifecycle events. Callbacks run synchronously on
// the generating goroutine; implementations must be safe for concurrent use
// when requests run in parallel.
type Listener interface {
	OnStarted(config map[string]any, meta Metadata)
	OnCompleted(config map[string]any, result string, meta Metadata)
	OnFailed(config map[string]any, err *errors.GenerationError, meta Metadata)
}

// Option is a functional option for configuring a Middleware
type Option func(*Middleware)

// WithListener attaches a lifecycle listener. May be given more than once.
func WithListener(l Listener) Option {
	return func(m *Middleware) {
		if l != nil {
			m.listeners = append(m.listeners, l)
		}
	}
}

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(m *Middleware) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetrics records generation metrics in registry
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(m *Middleware) {
		m.metrics = registry
	}
}

// WithResources sets the dataset resolver handed to strategies
func WithResources(r dataset.Resolver) Option {
	return func(m *Middleware) {
		m.resources = r
	}
}

// WithMaxDepth sets the nested dispatch limit. Non-positive values are ignored.
func WithMaxDepth(depth int) Option {
	return func(m *Middleware) {
		if depth > 0 {
			m.maxDepth = depth
		}
	}
}

// Middleware dispatches generation requests.
type Middleware struct {
	engine    *engine.Context
	registry  *strategy.Registry
	listeners []Listener
	logger    *slog.Logger
	metrics   *metric.MetricsRegistry
	resources dataset.Resolver
	maxDepth  int
}

// New creates a Middleware over ctx and registry.
func New(ctx *engine.Context, registry *strategy.Registry, opts ...Option) *Middleware {
	m := &Middleware{
		engine:   ctx,
		registry: registry,
		logger:   slog.Default().With("component", "middleware"),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Engine returns the engine context.
func (m *Middleware) Engine() *engine.Context {
	return m.engine
}

// Registry returns the strategy registry.
func (m *Middleware) Registry() *strategy.Registry {
	return m.registry
}

// Reseed replaces the master seed. Do not call it while requests that must
// see a specific seed are in flight.
func (m *Middleware) Reseed(seed int64) {
	m.engine.SetSeed(seed)
	m.recordSeedChange()
	m.logger.Info("Master seed changed", "seed", seed)
}

// Randomize picks a new random master seed and returns it.
func (m *Middleware) Randomize() int64 {
	seed := m.engine.Randomize()
	m.recordSeedChange()
	m.logger.Info("Master seed randomized", "seed", seed)
	return seed
}

func (m *Middleware) recordSeedChange() {
	if m.metrics != nil {
		m.metrics.CoreMetrics().RecordSeedChange()
	}
}

// Generate runs one request and returns the generated string or the failure.
func (m *Middleware) Generate(config map[string]any) (string, *errors.GenerationError) {
	return m.run(config)
}

// GenerateResult runs one request and returns its wire form: the generated
// string on success, or a {code, message, details} map on failure. A success
// is never a map.
func (m *Middleware) GenerateResult(config any) any {
	result, ge := m.run(config)
	if ge != nil {
		return ge.ToMap()
	}
	return result
}

var seedContract = schema.ConfigSchema{
	Properties: map[string]schema.PropertySchema{
		"seed":       {Type: schema.TypeInt},
		"rng_stream": {Type: schema.TypeString},
	},
}

// resolve computes the request metadata. A non-integer seed is reported
// after the started event so listeners still see the request.
func (m *Middleware) resolve(cfg map[string]any) (Metadata, *errors.GenerationError) {
	meta := Metadata{
		RequestID: uuid.NewString(),
		Seed:      m.engine.Seed(),
	}
	meta.StrategyID, _ = cfg["strategy"].(string)

	if cfg == nil {
		return m.rootPath(cfg, meta), nil
	}
	if ge := schema.Validate(cfg, seedContract); ge != nil {
		key, _ := ge.Details["key"].(string)
		if key == "seed" {
			return m.rootPath(cfg, meta), errors.NewGenerationError(errors.CodeInvalidSeed,
				fmt.Sprintf("seed must be an integer, got %T", cfg["seed"]),
				map[string]any{"received_type": fmt.Sprintf("%T", cfg["seed"])})
		}
	}
	if _, ok := cfg["seed"]; ok {
		meta.Seed = schema.Int64(cfg, "seed", meta.Seed)
	}
	return m.rootPath(cfg, meta), nil
}

func (m *Middleware) rootPath(cfg map[string]any, meta Metadata) Metadata {
	switch {
	case schema.String(cfg, "rng_stream", "") != "":
		meta.StreamPath = []string{schema.String(cfg, "rng_stream", "")}
	case meta.StrategyID != "":
		meta.StreamPath = []string{meta.StrategyID}
	default:
		meta.StreamPath = []string{"generation"}
	}
	return meta
}

func (m *Middleware) run(config any) (string, *errors.GenerationError) {
	start := time.Now()
	cfg, _ := schema.AsMap(config)

	meta, ge := m.resolve(cfg)
	m.emitStarted(cfg, meta)
	m.logger.Debug("Generation started",
		"request_id", meta.RequestID, "strategy", meta.StrategyID, "seed", meta.Seed, "path", meta.StreamPath)

	if ge == nil && cfg == nil {
		ge = schema.Validate(config, schema.ConfigSchema{})
	}

	var result string
	if ge == nil {
		result, ge = m.registry.Dispatch(&strategy.Request{
			Config:     cfg,
			Stream:     m.engine.DeriveWithSeed(meta.Seed, meta.StreamPath...),
			Remaining:  m.maxDepth,
			Resources:  m.resources,
			Dispatcher: m.registry,
		})
	}
	m.record(meta.StrategyID, ge, time.Since(start))
	if ge != nil {
		m.logger.Warn("Generation failed",
			"request_id", meta.RequestID, "strategy", meta.StrategyID, "code", ge.Code, "error", ge.Message)
		m.emitFailed(cfg, ge, meta)
		return "", ge
	}

	m.logger.Debug("Generation completed",
		"request_id", meta.RequestID, "strategy", meta.StrategyID, "duration", time.Since(start))
	m.emitCompleted(cfg, result, meta)
	return result, nil
}

func (m *Middleware) record(strategyID string, ge *errors.GenerationError, duration time.Duration) {
	if m.metrics == nil {
		return
	}
	if strategyID == "" {
		strategyID = "unknown"
	}
	core := m.metrics.CoreMetrics()
	core.RecordGeneration(strategyID, ge == nil, duration)
	if ge != nil {
		core.RecordError(strategyID, string(ge.Code))
	}
}

// Listeners get their own copy of the path so they cannot alias each other.
func (m *Middleware) emitStarted(cfg map[string]any, meta Metadata) {
	for _, l := range m.listeners {
		l.OnStarted(cfg, copyMeta(meta))
	}
}

func (m *Middleware) emitCompleted(cfg map[string]any, result string, meta Metadata) {
	for _, l := range m.listeners {
		l.OnCompleted(cfg, result, copyMeta(meta))
	}
}

func (m *Middleware) emitFailed(cfg map[string]any, ge *errors.GenerationError, meta Metadata) {
	for _, l := range m.listeners {
		l.OnFailed(cfg, ge, copyMeta(meta))
	}
}

func copyMeta(meta Metadata) Metadata {
	meta.StreamPath = slices.Clone(meta.StreamPath)
	return meta
}

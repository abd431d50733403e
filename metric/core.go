package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the engine-level generation metrics
type Metrics struct {
	GenerationsTotal   *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	ErrorsTotal        *prometheus.CounterVec
	MasterSeedChanges  prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all engine metrics
func NewMetrics() *Metrics {
	return &Metrics{
		GenerationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rngen",
				Subsystem: "generation",
				Name:      "requests_total",
				Help:      "Total number of top-level generation requests",
			},
			[]string{"strategy", "status"},
		),

		GenerationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "rngen",
				Subsystem: "generation",
				Name:      "duration_seconds",
				Help:      "Generation duration in seconds, nested dispatch included",
				Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .05, .1},
			},
			[]string{"strategy"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rngen",
				Subsystem: "generation",
				Name:      "errors_total",
				Help:      "Total number of failed generations by error code",
			},
			[]string{"strategy", "code"},
		),

		MasterSeedChanges: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "rngen",
				Subsystem: "engine",
				Name:      "seed_changes_total",
				Help:      "Total number of master seed changes",
			},
		),
	}
}

// RecordGeneration counts a finished request and its duration
func (m *Metrics) RecordGeneration(strategy string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.GenerationsTotal.WithLabelValues(strategy, status).Inc()
	m.GenerationDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// RecordError counts a failure by its error code
func (m *Metrics) RecordError(strategy, code string) {
	m.ErrorsTotal.WithLabelValues(strategy, code).Inc()
}

// RecordSeedChange counts a master seed change
func (m *Metrics) RecordSeedChange() {
	m.MasterSeedChanges.Inc()
}

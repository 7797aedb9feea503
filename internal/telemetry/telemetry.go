// Package telemetry collects Prometheus metrics about evaluation runs.
package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Evaluation outcomes used as the "outcome" label.
const (
	OutcomeScored = "scored" // Non-empty proposed community
	OutcomeEmpty  = "empty"  // Proposed community had no members
	OutcomeFailed = "failed" // Read or lookup error
)

// Metrics holds the collectors on a private registry.
type Metrics struct {
	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram
	F1Score            prometheus.Histogram
	ProposedSize       prometheus.Histogram

	registry *prometheus.Registry
}

// New creates a Metrics with all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{registry: reg}

	m.EvaluationsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "lfreval_evaluations_total",
			Help: "Total number of community evaluations by outcome",
		},
		[]string{"outcome"},
	)

	m.EvaluationDuration = promauto.With(reg).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lfreval_evaluation_duration_seconds",
			Help:    "Time to read and score one proposed community",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	m.F1Score = promauto.With(reg).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lfreval_f1_score",
			Help:    "F1 score of scored evaluations",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		},
	)

	m.ProposedSize = promauto.With(reg).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lfreval_proposed_size",
			Help:    "Number of nodes in scored proposed communities",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveScored records a successful evaluation.
func (m *Metrics) ObserveScored(d time.Duration, f1 float64, proposedSize int) {
	m.EvaluationDuration.Observe(d.Seconds())
	if proposedSize == 0 {
		m.EvaluationsTotal.WithLabelValues(OutcomeEmpty).Inc()
		return
	}
	m.EvaluationsTotal.WithLabelValues(OutcomeScored).Inc()
	m.F1Score.Observe(f1)
	m.ProposedSize.Observe(float64(proposedSize))
}

// ObserveFailed records a failed evaluation.
func (m *Metrics) ObserveFailed(d time.Duration) {
	m.EvaluationDuration.Observe(d.Seconds())
	m.EvaluationsTotal.WithLabelValues(OutcomeFailed).Inc()
}

// WriteTextfile writes all metrics in the text exposition format, suitable for
// the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

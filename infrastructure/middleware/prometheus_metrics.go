// Package middleware provides cross-cutting concerns for rubric
// evaluation, currently Prometheus-backed metrics collection.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tvaroska/teval/infrastructure/runner"
)

// PrometheusMetrics implements runner.MetricsCollector using
// Prometheus. It provides real-time monitoring of evaluation volume,
// batch latency, pass rates, and judge alignment.
type PrometheusMetrics struct {
	evaluationsTotal *prometheus.CounterVec
	batchFailures    *prometheus.CounterVec
	batchLatency     *prometheus.HistogramVec
	passRate         *prometheus.GaugeVec
	alignmentScore   *prometheus.GaugeVec
	scoreHistogram   *prometheus.HistogramVec
}

var _ runner.MetricsCollector = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics creates a new PrometheusMetrics instance and
// registers all metrics in the global Prometheus registry. Call it at
// most once per process.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		evaluationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rubric_evaluations_total",
				Help: "Total number of results scored, by rubric and outcome.",
			},
			[]string{"rubric_id", "outcome"},
		),
		batchFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rubric_batch_failures_total",
				Help: "Total number of batches rejected for malformed or incomplete payloads.",
			},
			[]string{"rubric_id"},
		),
		batchLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rubric_evaluation_duration_seconds",
				Help:    "Wall-clock time spent evaluating a batch.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "rubric_id"},
		),
		passRate: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rubric_batch_pass_rate",
				Help: "Fraction of passing results in the most recent batch.",
			},
			[]string{"rubric_id"},
		),
		alignmentScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rubric_alignment_score",
				Help: "Most recent pass/fail agreement between two result sets.",
			},
			[]string{"rubric_id"},
		),
		scoreHistogram: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rubric_score_distribution",
				Help:    "Distribution of recorded evaluation values.",
				Buckets: prometheus.LinearBuckets(0, 0.1, 11),
			},
			[]string{"metric", "rubric_id"},
		),
	}
}

// RecordLatency records batch execution time in the latency histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string, duration time.Duration, labels map[string]string,
) {
	pm.batchLatency.WithLabelValues(operation, rubricID(labels)).Observe(duration.Seconds())
}

// RecordCounter increments the counter matching the metric name.
// Unknown counters are dropped rather than registered on the fly.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "rubric_evaluations_total":
		outcome, ok := labels["outcome"]
		if !ok {
			outcome = "unknown"
		}
		pm.evaluationsTotal.WithLabelValues(rubricID(labels), outcome).Add(value)
	case "rubric_batch_failures_total":
		pm.batchFailures.WithLabelValues(rubricID(labels)).Add(value)
	}
}

// RecordGauge sets the gauge matching the metric name.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "rubric_batch_pass_rate":
		pm.passRate.WithLabelValues(rubricID(labels)).Set(value)
	case "rubric_alignment_score":
		pm.alignmentScore.WithLabelValues(rubricID(labels)).Set(value)
	}
}

// RecordHistogram records a value in the score distribution histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	pm.scoreHistogram.WithLabelValues(metric, rubricID(labels)).Observe(value)
}

func rubricID(labels map[string]string) string {
	if id, ok := labels["rubric_id"]; ok {
		return id
	}
	return "unknown"
}

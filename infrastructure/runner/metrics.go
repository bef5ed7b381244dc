package runner

import "time"

// MetricsCollector defines the interface for collecting operational
// metrics from batch evaluation. Implementations should integrate with
// observability platforms like Prometheus, OpenTelemetry, or custom
// monitoring solutions.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	// This is useful for tracking distributions like scores.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// NoopMetrics is a MetricsCollector that discards everything. It is
// the default when no collector is supplied.
type NoopMetrics struct{}

var _ MetricsCollector = NoopMetrics{}

func (NoopMetrics) RecordLatency(string, time.Duration, map[string]string) {}
func (NoopMetrics) RecordCounter(string, float64, map[string]string)       {}
func (NoopMetrics) RecordGauge(string, float64, map[string]string)         {}
func (NoopMetrics) RecordHistogram(string, float64, map[string]string)     {}

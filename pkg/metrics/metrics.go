// Package metrics exposes Prometheus instrumentation for the task pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors recorded by the runner, sink,
// and event queue.
type Metrics struct {
	tasksTotal       *prometheus.CounterVec
	taskDuration     prometheus.Histogram
	sinkLinesTotal   *prometheus.CounterVec
	eventsDropped    prometheus.Counter
	rateLimitWaits   prometheus.Counter
	taskRunning      prometheus.Gauge
	commandSizeBytes prometheus.Histogram
}

// NewMetrics creates and registers the collectors on the given registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		tasksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "luma_tasks_total",
			Help: "Total tasks by terminal outcome",
		}, []string{"outcome"}),

		taskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "luma_task_duration_seconds",
			Help:    "Task wall-clock duration from start to terminal state",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}),

		sinkLinesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "luma_sink_lines_total",
			Help: "Agent progress lines by classified category",
		}, []string{"category"}),

		eventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "luma_events_dropped_total",
			Help: "UI events discarded because the queue was full",
		}),

		rateLimitWaits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "luma_rate_limit_waits_total",
			Help: "Task starts delayed by the rate limiter",
		}),

		taskRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "luma_task_running",
			Help: "1 while a task occupies the run slot, 0 when idle",
		}),

		commandSizeBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "luma_command_size_bytes",
			Help:    "Dispatched command size after rule injection",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		}),
	}

	registry.MustRegister(
		m.tasksTotal,
		m.taskDuration,
		m.sinkLinesTotal,
		m.eventsDropped,
		m.rateLimitWaits,
		m.taskRunning,
		m.commandSizeBytes,
	)

	return m
}

// RecordTaskStart marks the run slot occupied.
func (m *Metrics) RecordTaskStart() {
	m.taskRunning.Set(1)
}

// RecordTaskEnd records the terminal outcome and duration, and marks the
// run slot free.
func (m *Metrics) RecordTaskEnd(outcome string, duration time.Duration) {
	m.tasksTotal.WithLabelValues(outcome).Inc()
	m.taskDuration.Observe(duration.Seconds())
	m.taskRunning.Set(0)
}

// RecordSinkLine counts one classified progress line.
func (m *Metrics) RecordSinkLine(category string) {
	m.sinkLinesTotal.WithLabelValues(category).Inc()
}

// RecordEventDropped counts one discarded UI event.
func (m *Metrics) RecordEventDropped() {
	m.eventsDropped.Inc()
}

// RecordRateLimitWait counts one delayed task start.
func (m *Metrics) RecordRateLimitWait() {
	m.rateLimitWaits.Inc()
}

// RecordCommandSize observes the dispatched command size.
func (m *Metrics) RecordCommandSize(bytes int) {
	m.commandSizeBytes.Observe(float64(bytes))
}

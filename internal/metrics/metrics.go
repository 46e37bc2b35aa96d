// ABOUTME: Prometheus metrics for the bridge pipeline
// ABOUTME: Tracks run outcomes, backend stream durations, and emitted events

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run outcome label values.
const (
	OutcomeFinished = "finished"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
)

// Metrics collects gateway metrics into a private registry.
//
// Metrics:
//   - agui_gateway_runs_total: run count by target and outcome
//   - agui_gateway_backend_stream_duration_seconds: backend stream duration by target
//   - agui_gateway_events_total: emitted front events by type
type Metrics struct {
	registry *prometheus.Registry

	runsTotal      *prometheus.CounterVec
	streamDuration *prometheus.HistogramVec
	eventsTotal    *prometheus.CounterVec
}

// New creates and registers all gateway metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agui_gateway",
				Name:      "runs_total",
				Help:      "Total number of bridged runs by outcome",
			},
			[]string{"target", "outcome"},
		),
		streamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "agui_gateway",
				Name:      "backend_stream_duration_seconds",
				Help:      "Duration of backend A2A streams in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
			},
			[]string{"target"},
		),
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agui_gateway",
				Name:      "events_total",
				Help:      "Total number of AG-UI events written to clients",
			},
			[]string{"type"},
		),
	}

	m.registry.MustRegister(
		m.runsTotal,
		m.streamDuration,
		m.eventsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler returns the Prometheus exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// ObserveRun records one completed run.
func (m *Metrics) ObserveRun(target, outcome string) {
	m.runsTotal.WithLabelValues(target, outcome).Inc()
}

// ObserveStream records the duration of one backend stream.
func (m *Metrics) ObserveStream(target string, d time.Duration) {
	m.streamDuration.WithLabelValues(target).Observe(d.Seconds())
}

// ObserveEvent records one front event written to the outbound stream.
func (m *Metrics) ObserveEvent(eventType string) {
	m.eventsTotal.WithLabelValues(eventType).Inc()
}

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the snapshot harvester.
// A nil *Metrics is valid and records nothing, so components can run without it.
type Metrics struct {
	registry            *prometheus.Registry
	cyclesTotal         prometheus.Counter
	cycleDuration       prometheus.Gauge
	lastCycleTimestamp  prometheus.Gauge
	registryErrorsTotal prometheus.Counter
	resolvedTotal       prometheus.Counter
	resolveFailures     *prometheus.CounterVec
	snapshotsTotal      prometheus.Counter
	extractFailures     *prometheus.CounterVec
	requestsTotal       prometheus.Counter
	errorsTotal         prometheus.Counter
}

// New creates and registers Prometheus metrics for the harvester.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		cyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "snapshotter_cycles_total",
			Help: "Total number of completed harvest cycles",
		}),
		cycleDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "snapshotter_cycle_duration_seconds",
			Help: "Wall-clock duration of the most recent cycle",
		}),
		lastCycleTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "snapshotter_last_cycle_timestamp_seconds",
			Help: "Unix time at which the most recent cycle finished",
		}),
		registryErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "snapshotter_registry_errors_total",
			Help: "Total number of rejected source registry lines",
		}),
		resolvedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "snapshotter_playlists_resolved_total",
			Help: "Total number of playlists fetched and parsed successfully",
		}),
		resolveFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "snapshotter_resolve_failures_total",
			Help: "Total number of playlist resolution failures by reason",
		}, []string{"reason"}),
		snapshotsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "snapshotter_snapshots_saved_total",
			Help: "Total number of snapshots written to disk",
		}),
		extractFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "snapshotter_extract_failures_total",
			Help: "Total number of snapshot extraction failures by reason",
		}, []string{"reason"}),
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "snapshotter_http_requests_total",
			Help: "Total number of status API requests received",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "snapshotter_http_errors_total",
			Help: "Total number of status API responses with error status (4xx or 5xx)",
		}),
	}

	registry.MustRegister(
		m.cyclesTotal,
		m.cycleDuration,
		m.lastCycleTimestamp,
		m.registryErrorsTotal,
		m.resolvedTotal,
		m.resolveFailures,
		m.snapshotsTotal,
		m.extractFailures,
		m.requestsTotal,
		m.errorsTotal,
	)
	return m
}

// ObserveCycle records a finished cycle.
func (m *Metrics) ObserveCycle(d time.Duration, finished time.Time) {
	if m == nil {
		return
	}
	m.cyclesTotal.Inc()
	m.cycleDuration.Set(d.Seconds())
	m.lastCycleTimestamp.Set(float64(finished.Unix()))
}

// AddRegistryErrors counts rejected registry lines.
func (m *Metrics) AddRegistryErrors(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.registryErrorsTotal.Add(float64(n))
}

// IncResolved increments the resolved playlists counter.
func (m *Metrics) IncResolved() {
	if m == nil {
		return
	}
	m.resolvedTotal.Inc()
}

// IncResolveFailure increments the resolve failure counter for reason.
func (m *Metrics) IncResolveFailure(reason string) {
	if m == nil {
		return
	}
	m.resolveFailures.WithLabelValues(reason).Inc()
}

// IncSnapshots increments the saved snapshots counter.
func (m *Metrics) IncSnapshots() {
	if m == nil {
		return
	}
	m.snapshotsTotal.Inc()
}

// IncExtractFailure increments the extract failure counter for reason.
func (m *Metrics) IncExtractFailure(reason string) {
	if m == nil {
		return
	}
	m.extractFailures.WithLabelValues(reason).Inc()
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	if m == nil {
		return
	}
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	if m == nil {
		return
	}
	m.errorsTotal.Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

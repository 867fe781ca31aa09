package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics aggregates all Prometheus collectors for the engine. A custom
// registry keeps the scrape surface limited to what we register here.
type Metrics struct {
	registry *prometheus.Registry

	RefreshTicks      *prometheus.CounterVec
	RefreshFailures   *prometheus.CounterVec
	RefreshDuration   *prometheus.HistogramVec
	MutationOutcomes  *prometheus.CounterVec
	CoalescedRequests prometheus.Counter
	StoreOps          *prometheus.CounterVec
	StoreOpDuration   *prometheus.HistogramVec
	ActiveSessions    prometheus.Gauge
	TrackedPosts      prometheus.Gauge
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
}

// NewMetrics builds and registers every collector.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		RefreshTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engagement_refresh_ticks_total",
			Help: "Scheduled refresh ticks executed, by stream.",
		}, []string{"stream"}),
		RefreshFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engagement_refresh_failures_total",
			Help: "Refresh ticks that failed and were deferred to the next interval.",
		}, []string{"stream"}),
		RefreshDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "engagement_refresh_duration_seconds",
			Help:    "Wall time of a full refresh pass, by stream.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stream"}),
		MutationOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engagement_mutation_outcomes_total",
			Help: "Optimistic mutations by kind and outcome.",
		}, []string{"kind", "outcome"}),
		CoalescedRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engagement_mutations_coalesced_total",
			Help: "Mutation requests absorbed by an already in-flight commit.",
		}),
		StoreOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engagement_store_operations_total",
			Help: "Record store operations by collection, operation and status.",
		}, []string{"collection", "operation", "status"}),
		StoreOpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "engagement_store_operation_duration_seconds",
			Help:    "Latency of record store operations.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"collection", "operation"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "engagement_active_sessions",
			Help: "User sessions currently held by the session manager.",
		}),
		TrackedPosts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "engagement_tracked_posts",
			Help: "Posts present in the most recent engagement snapshot.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		m.RefreshTicks,
		m.RefreshFailures,
		m.RefreshDuration,
		m.MutationOutcomes,
		m.CoalescedRequests,
		m.StoreOps,
		m.StoreOpDuration,
		m.ActiveSessions,
		m.TrackedPosts,
		m.HTTPRequests,
		m.HTTPDuration,
	)

	return m
}

// Handler returns the scrape endpoint for the custom registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveStoreOp records one store call.
func (m *Metrics) ObserveStoreOp(collection, operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.StoreOps.WithLabelValues(collection, operation, status).Inc()
	m.StoreOpDuration.WithLabelValues(collection, operation).Observe(time.Since(start).Seconds())
}

// ObserveRefresh records one refresh pass.
func (m *Metrics) ObserveRefresh(stream string, start time.Time, err error) {
	m.RefreshTicks.WithLabelValues(stream).Inc()
	m.RefreshDuration.WithLabelValues(stream).Observe(time.Since(start).Seconds())
	if err != nil {
		m.RefreshFailures.WithLabelValues(stream).Inc()
	}
}

// Package metrics provides Prometheus metrics for the rating and
// leaderboard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace string
	registry  *prometheus.Registry

	// Rating pipeline
	bundlesComputed      prometheus.Counter
	bundleComputeLatency prometheus.Histogram

	// Bundle cache
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	cacheEvictions prometheus.Counter

	// Leaderboard queries
	leaderboardQueries      prometheus.Counter
	leaderboardQueryLatency prometheus.Histogram

	// Population gauges
	totalUsers prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// Runtime
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace overrides the metric namespace.
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// NewManager creates a manager and registers all collectors on its own
// registry, keeping the default Go collectors out of the scrape.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "podium",
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.bundlesComputed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "rating_bundles_computed_total",
		Help:      "Rating bundles computed from scratch (cache misses included).",
	})
	m.bundleComputeLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "rating_bundle_compute_latency_ms",
		Help:      "Latency of full rating bundle computations in milliseconds.",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
	})

	m.cacheHits = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "bundle_cache_hits_total",
		Help:      "Bundle cache hits.",
	})
	m.cacheMisses = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "bundle_cache_misses_total",
		Help:      "Bundle cache misses, including lazy TTL expiries.",
	})
	m.cacheEvictions = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "bundle_cache_evictions_total",
		Help:      "Bundle cache entries removed by expiry or invalidation.",
	})

	m.leaderboardQueries = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "leaderboard_queries_total",
		Help:      "Leaderboard queries served.",
	})
	m.leaderboardQueryLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "leaderboard_query_latency_ms",
		Help:      "End-to-end leaderboard query latency in milliseconds.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})

	m.totalUsers = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "users_total",
		Help:      "User profiles known to the population store.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"endpoint", "method", "status"})

	m.errorsByComponent = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "errors_total",
		Help:      "Errors by component and kind.",
	}, []string{"component", "kind"})

	m.systemMemoryUsage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "system_memory_bytes",
		Help:      "Allocated heap bytes.",
	})
	m.systemGoroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "system_goroutines",
		Help:      "Current goroutine count.",
	})

	return m
}

// Global manager instance serving the package-level helpers.
var globalManager = NewManager() //nolint:gochecknoglobals // singleton metrics manager

// GetRegistry exposes the registry for the /healthz scrape handler.
func GetRegistry() *prometheus.Registry {
	return globalManager.registry
}

// Package-level recording helpers.

func RecordBundleComputed() {
	globalManager.bundlesComputed.Inc()
}

func RecordBundleComputeLatency(ms float64) {
	globalManager.bundleComputeLatency.Observe(ms)
}

func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

func RecordCacheEviction() {
	globalManager.cacheEvictions.Inc()
}

func RecordLeaderboardQuery() {
	globalManager.leaderboardQueries.Inc()
}

func RecordLeaderboardQueryLatency(ms float64) {
	globalManager.leaderboardQueryLatency.Observe(ms)
}

func UpdateTotalUsers(count int) {
	globalManager.totalUsers.Set(float64(count))
}

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

func RecordErrorByComponent(component, kind string) {
	globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
}

func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

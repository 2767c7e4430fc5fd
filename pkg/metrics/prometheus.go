// Package metrics provides Prometheus metrics for the hoopline projection service.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ledger outcomes recorded by RecordLedgerOp.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	totalBuckets     []float64
	registry         prometheus.Registerer

	// Projection metrics
	projectionsTotal  prometheus.Counter
	blowoutsTotal     prometheus.Counter
	projectionLatency prometheus.Histogram
	projectedTotal    prometheus.Histogram
	injuryPenalty     *prometheus.HistogramVec
	unknownTeamsTotal prometheus.Counter

	// Ledger metrics
	ledgerOps         *prometheus.CounterVec
	ledgerLatency     *prometheus.HistogramVec
	ledgerMAE         prometheus.Gauge
	ledgerHitRate     prometheus.Gauge
	ledgerSampleCount prometheus.Gauge

	// Feed metrics
	feedFetches      *prometheus.CounterVec
	feedFallbacks    *prometheus.CounterVec
	feedFetchLatency *prometheus.HistogramVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "hoopline",
		subsystem:        "projection",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		totalBuckets:     prometheus.LinearBuckets(190, 5, 14),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.projectionsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "projections_total",
		Help:      "Total number of match projections computed",
	})

	m.blowoutsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "blowouts_total",
		Help:      "Projections where garbage-time decay was applied to the fourth quarter",
	})

	m.projectionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "latency_milliseconds",
		Help:      "End-to-end projection latency in milliseconds, feed lookups included",
		Buckets:   m.histogramBuckets,
	})

	m.projectedTotal = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "projected_total_points",
		Help:      "Distribution of projected combined match totals",
		Buckets:   m.totalBuckets,
	})

	m.injuryPenalty = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "injury_penalty_ratio",
		Help:      "Capped injury penalty applied per side",
		Buckets:   []float64{0, 0.015, 0.05, 0.1, 0.15, 0.2, 0.25, 0.3, 0.35},
	}, []string{"side"})

	m.unknownTeamsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "unknown_team_total",
		Help:      "Projection requests rejected for an unknown team identifier",
	})

	m.ledgerOps = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "ledger",
		Name:      "operations_total",
		Help:      "Ledger operations by kind and outcome",
	}, []string{"op", "outcome"})

	m.ledgerLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "ledger",
		Name:      "latency_milliseconds",
		Help:      "Ledger operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"op"})

	m.ledgerMAE = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "ledger",
		Name:      "mean_absolute_error_points",
		Help:      "Mean absolute error of predicted totals from the last unfiltered report",
	})

	m.ledgerHitRate = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "ledger",
		Name:      "over_under_hit_rate_ratio",
		Help:      "Over/under hit rate against the posted line from the last unfiltered report",
	})

	m.ledgerSampleCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "ledger",
		Name:      "reconciled_records",
		Help:      "Number of reconciled predictions in the last unfiltered report",
	})

	m.feedFetches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "feed",
		Name:      "fetches_total",
		Help:      "Upstream feed fetches by feed and result",
	}, []string{"feed", "result"})

	m.feedFallbacks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "feed",
		Name:      "fallbacks_total",
		Help:      "Lookups served from a fallback because the feed had no data",
	}, []string{"feed"})

	m.feedFetchLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "feed",
		Name:      "fetch_latency_milliseconds",
		Help:      "Upstream feed fetch latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"feed"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.httpErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "errors_total",
		Help:      "HTTP responses with an error status by endpoint and error type",
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Heap memory in use in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutine_count",
		Help:      "Number of goroutines",
	})
}

// RecordProjection records one completed projection.
func RecordProjection(latencyMs, total float64, blowout bool) {
	globalManager.projectionsTotal.Inc()
	globalManager.projectionLatency.Observe(latencyMs)
	globalManager.projectedTotal.Observe(total)
	if blowout {
		globalManager.blowoutsTotal.Inc()
	}
}

// RecordInjuryPenalty records the capped penalty applied to one side ("home" or "away").
func RecordInjuryPenalty(side string, penalty float64) {
	globalManager.injuryPenalty.WithLabelValues(side).Observe(penalty)
}

// RecordUnknownTeam increments the rejected-team counter.
func RecordUnknownTeam() {
	globalManager.unknownTeamsTotal.Inc()
}

// RecordLedgerOp records a ledger operation ("record", "reconcile", "list") and its outcome.
func RecordLedgerOp(op, outcome string, latencyMs float64) error {
	switch outcome {
	case OutcomeOK, OutcomeNotFound, OutcomeRejected, OutcomeError:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOutcome, outcome)
	}
	globalManager.ledgerOps.WithLabelValues(op, outcome).Inc()
	globalManager.ledgerLatency.WithLabelValues(op).Observe(latencyMs)
	return nil
}

// UpdateAccuracy publishes the latest unfiltered accuracy report.
func UpdateAccuracy(mae, hitRate float64, samples int) {
	globalManager.ledgerMAE.Set(mae)
	globalManager.ledgerHitRate.Set(hitRate)
	globalManager.ledgerSampleCount.Set(float64(samples))
}

// RecordFeedFetch records an upstream fetch ("ok" or "error") and its latency.
func RecordFeedFetch(feed, result string, latencyMs float64) {
	globalManager.feedFetches.WithLabelValues(feed, result).Inc()
	globalManager.feedFetchLatency.WithLabelValues(feed).Observe(latencyMs)
}

// RecordFeedFallback counts a lookup that fell back to defaults.
func RecordFeedFallback(feed string) {
	globalManager.feedFallbacks.WithLabelValues(feed).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordHTTPError records an error response classified by errorType.
func RecordHTTPError(endpoint, method, errorType string) {
	globalManager.httpErrors.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

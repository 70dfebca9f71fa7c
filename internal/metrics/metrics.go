package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   prometheus.CounterVec
	HTTPRequestDuration prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal         prometheus.CounterVec
	CacheMissesTotal       prometheus.CounterVec
	CacheOperationsTotal   prometheus.CounterVec
	CacheOperationDuration prometheus.HistogramVec

	// Feed metrics
	FeedPageDuration  prometheus.HistogramVec
	FeedInvalidations prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			CacheHitsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_hits_total",
					Help: "Total number of cache hits",
				},
				[]string{"cache_name"},
			),
			CacheMissesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_misses_total",
					Help: "Total number of cache misses",
				},
				[]string{"cache_name"},
			),
			CacheOperationsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_operations_total",
					Help: "Total number of cache operations",
				},
				[]string{"operation", "cache_name"},
			),
			CacheOperationDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "cache_operation_duration_seconds",
					Help:    "Cache operation latency in seconds",
					Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
				},
				[]string{"operation", "cache_name"},
			),
			FeedPageDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "feed_page_duration_seconds",
					Help:    "Time to produce a feed page, by source",
					Buckets: []float64{.001, .005, .01, .05, .1, .5, 1},
				},
				[]string{"feed", "source"},
			),
			FeedInvalidations: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "feed_invalidations_total",
					Help: "Feed cache invalidations by trigger",
				},
				[]string{"trigger"},
			),
		}
	})
	return instance
}

// Get returns the metrics instance, initializing on first use
func Get() *Metrics {
	return Initialize()
}

// RecordCacheHit increments the hit counter for a named cache
func RecordCacheHit(cacheName string) {
	Get().CacheHitsTotal.WithLabelValues(cacheName).Inc()
}

// RecordCacheMiss increments the miss counter for a named cache
func RecordCacheMiss(cacheName string) {
	Get().CacheMissesTotal.WithLabelValues(cacheName).Inc()
}

// RecordCacheOperation records a cache operation and its latency
func RecordCacheOperation(operation, cacheName string, duration time.Duration) {
	m := Get()
	m.CacheOperationsTotal.WithLabelValues(operation, cacheName).Inc()
	m.CacheOperationDuration.WithLabelValues(operation, cacheName).Observe(duration.Seconds())
}

// RecordFeedPage records how long a feed page took, labeled by whether it
// came from cache or the store.
func RecordFeedPage(feed, source string, duration time.Duration) {
	Get().FeedPageDuration.WithLabelValues(feed, source).Observe(duration.Seconds())
}

// RecordFeedInvalidation counts an invalidation by its trigger
func RecordFeedInvalidation(trigger string) {
	Get().FeedInvalidations.WithLabelValues(trigger).Inc()
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CategoryMetrics holds all Prometheus metrics for the category API.
type CategoryMetrics struct {
	OperationsTotal      *prometheus.CounterVec
	UnionCacheHits       prometheus.Counter
	UnionCacheMisses     prometheus.Counter
	HTTPRequestDuration  *prometheus.HistogramVec
	RateLimitedTotal     prometheus.Counter
	AuditPublishFailures prometheus.Counter
}

// NewCategoryMetrics initializes and registers the Prometheus metrics.
func NewCategoryMetrics() *CategoryMetrics {
	return &CategoryMetrics{
		OperationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "erp",
			Subsystem: "categories",
			Name:      "operations_total",
			Help:      "Total number of category operations by operation and status.",
		}, []string{"operation", "status"}), // status: ok, rejected, error
		UnionCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "erp",
			Subsystem: "categories",
			Name:      "union_cache_hits_total",
			Help:      "Total number of merged-listing cache hits.",
		}),
		UnionCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "erp",
			Subsystem: "categories",
			Name:      "union_cache_misses_total",
			Help:      "Total number of merged-listing cache misses.",
		}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "erp",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method, route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		RateLimitedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "erp",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by the per-tenant rate limiter.",
		}),
		AuditPublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "erp",
			Subsystem: "audit",
			Name:      "publish_failures_total",
			Help:      "Total number of audit events that could not be published.",
		}),
	}
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PermissionDecisions counts evaluator decisions and their outcome (allow|deny|error).
	PermissionDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsentry_permission_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"permission", "result"},
	)

	// CacheHits counts permission cache hits per namespace (permissions|assignments|visibility).
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsentry_cache_hits_total",
			Help: "Total number of permission cache hits",
		},
		[]string{"namespace"},
	)

	// CacheMisses counts permission cache misses per namespace.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsentry_cache_misses_total",
			Help: "Total number of permission cache misses",
		},
		[]string{"namespace"},
	)

	// CacheEvictions counts explicit cache evictions per namespace.
	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsentry_cache_evictions_total",
			Help: "Total number of explicit permission cache evictions",
		},
		[]string{"namespace"},
	)

	// CacheFallbacks counts reads served directly from the permission store
	// because the cache backend was unreachable.
	CacheFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsentry_cache_fallbacks_total",
			Help: "Total number of cache reads that fell back to the permission store",
		},
		[]string{"namespace"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docsentry_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

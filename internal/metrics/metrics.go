package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Статусы операций
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusConflict = "conflict"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkalias_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linkalias_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	MappingCreationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkalias_mapping_creation_total",
			Help: "Total number of created mappings",
		},
		[]string{"kind", "status"},
	)

	MappingDeletionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkalias_mapping_deletion_total",
			Help: "Total number of deleted mappings",
		},
		[]string{"status"},
	)

	ResolveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkalias_resolve_total",
			Help: "Total number of alias resolutions",
		},
		[]string{"status"},
	)

	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linkalias_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linkalias_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	CacheErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkalias_cache_errors_total",
			Help: "Total number of cache errors by operation",
		},
		[]string{"operation"},
	)
)

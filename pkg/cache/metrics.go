package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by store backend (file, redis).
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hh_cache_hits_total",
			Help: "Total number of dataset cache hits",
		},
		[]string{"store"},
	)

	// CacheMisses tracks cache misses by store backend.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hh_cache_misses_total",
			Help: "Total number of dataset cache misses",
		},
		[]string{"store"},
	)

	// CacheCorrupt tracks entries that failed to decode and were
	// downgraded to misses.
	CacheCorrupt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hh_cache_corrupt_total",
			Help: "Total number of corrupt cache entries downgraded to misses",
		},
		[]string{"store"},
	)

	// CacheErrors tracks write-side cache failures.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hh_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"store", "operation"},
	)
)

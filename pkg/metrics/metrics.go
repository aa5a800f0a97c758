// Package metrics provides the centralized Prometheus metrics registry for
// the researcher. All metrics are defined in their respective packages
// (hh, cache, collector, rates) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the researcher.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/hh):
//   - hh_api_requests_total{endpoint, status} (Counter): Total vacancy API requests by endpoint and HTTP status
//   - hh_api_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//
// Cache Metrics (pkg/cache):
//   - hh_cache_hits_total{store} (Counter): Dataset cache hits by store backend (file, redis)
//   - hh_cache_misses_total{store} (Counter): Dataset cache misses
//   - hh_cache_corrupt_total{store} (Counter): Corrupt cache entries downgraded to misses
//   - hh_cache_errors_total{store, operation} (Counter): Cache operation errors
//
// Collection Metrics (pkg/collector):
//   - hh_collections_total{outcome} (Counter): Collection runs by outcome (cached, collected, error)
//   - hh_collection_duration_seconds (Histogram): End-to-end collection run duration
//   - hh_vacancies_fetched_total (Counter): Vacancy details fetched over all runs
//   - hh_fetch_failures_total (Counter): Per-vacancy fetch failures (skipped or fatal)
//
// Exchange Rate Metrics (pkg/rates):
//   - hh_rate_refreshes_total{status} (Counter): Exchange rate refresh attempts by status
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(hh_cache_hits_total[5m])) /
//   (sum(rate(hh_cache_hits_total[5m])) + sum(rate(hh_cache_misses_total[5m])))
//
//   # Fetch Failure Rate
//   rate(hh_fetch_failures_total[5m]) / rate(hh_vacancies_fetched_total[5m])
//
//   # P95 API Latency
//   histogram_quantile(0.95, rate(hh_api_request_duration_seconds_bucket[5m]))

package collector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	collectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hh_collections_total",
		Help: "Total collection runs by outcome (cached, collected, error)",
	}, []string{"outcome"})

	collectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hh_collection_duration_seconds",
		Help:    "End-to-end collection run duration in seconds",
		Buckets: []float64{0.5, 1, 5, 15, 60, 300, 900},
	})

	vacanciesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hh_vacancies_fetched_total",
		Help: "Total vacancy details fetched over all runs",
	})

	fetchFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hh_fetch_failures_total",
		Help: "Total per-vacancy fetch failures (skipped or fatal)",
	})
)

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts fetches served from the disk cache, per endpoint family.
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "defectwatch_cache_hits_total",
			Help: "Total number of fetches served from the disk cache",
		},
		[]string{"endpoint"},
	)

	// CacheMisses counts fetches that went to the network, per endpoint family.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "defectwatch_cache_misses_total",
			Help: "Total number of fetches that required a network call",
		},
		[]string{"endpoint"},
	)

	// FetchFailures counts upstream fetch failures, per endpoint family.
	FetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "defectwatch_fetch_failures_total",
			Help: "Total number of failed upstream fetches",
		},
		[]string{"endpoint"},
	)

	// EnrichmentOutcomes counts enrichment results by outcome (enriched, failed, skipped).
	EnrichmentOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "defectwatch_enrichment_outcomes_total",
			Help: "Total number of per-record enrichment outcomes",
		},
		[]string{"outcome"},
	)
)

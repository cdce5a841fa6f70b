package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "recollect"

// Search Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of searches by outcome",
		},
		[]string{"outcome"}, // "ok" / "empty" / "invalid" / "error"
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "End-to-end search duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	RetrievalCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_calls_total",
			Help:      "Total number of index queries by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	ExpansionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expansions_total",
			Help:      "Query expansions by source",
		},
		[]string{"source"},
	)

	EvidenceItems = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evidence_items",
			Help:      "Number of evidence items returned per search",
			Buckets:   prometheus.LinearBuckets(0, 1, 11),
		},
	)
)

var registerOnce sync.Once

// Register registers all collectors with the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			SearchesTotal,
			SearchDuration,
			RetrievalCallsTotal,
			ExpansionsTotal,
			EvidenceItems,
			httpRequestDuration,
			httpRequestsTotal,
		)
	})
}

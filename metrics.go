package tactic

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// searchesTotal counts searches by outcome.
	// Labels: "found", "no_results", "fault", "canceled"
	searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tactic_searches_total",
		Help: "Total searches by outcome",
	}, []string{"outcome"})

	searchResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tactic_search_results",
		Help:    "Results produced per search",
		Buckets: []float64{0, 1, 2, 5, 10, 50, 100, 1000},
	})

	searchPulls = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tactic_search_pulls",
		Help:    "Sequence pulls per search",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tactic_search_duration_seconds",
		Help:    "Search duration",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1, 10},
	})
)

// Search outcomes, used as metric labels and persisted with benchmark runs.
const (
	OutcomeFound     = "found"
	OutcomeNoResults = "no_results"
	OutcomeFault     = "fault"
	OutcomeCanceled  = "canceled"
)

func recordSearch(outcome string, results, pulls int, seconds float64) {
	searchesTotal.WithLabelValues(outcome).Inc()
	searchResults.Observe(float64(results))
	searchPulls.Observe(float64(pulls))
	searchDuration.Observe(seconds)
}

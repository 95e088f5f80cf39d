// Package metrics provides Prometheus instrumentation for candidate
// retrieval: which path served a request, how long it took, and why
// candidates were dropped before ranking.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	SourceExisting  = "existing"
	SourceDiscovery = "discovery"
	SourceFailed    = "failed"

	ExcludedNoPreference      = "no_preference"
	ExcludedInvalidPreference = "invalid_preference"
	ExcludedIneligible        = "ineligible"
	ExcludedInvisible         = "invisible"
)

var (
	// CandidateRequests counts served candidate requests by path.
	CandidateRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchcore_candidate_requests_total",
		Help: "Candidate requests by serving path",
	}, []string{"source"}) // source = "existing", "discovery", "failed"

	// CandidatesExcluded counts candidates dropped before ranking.
	CandidatesExcluded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchcore_candidates_excluded_total",
		Help: "Candidates excluded from discovery by reason",
	}, []string{"reason"})

	// CandidatesReturned records result sizes.
	CandidatesReturned = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "matchcore_candidates_returned",
		Help:    "Number of candidates returned per request",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	})

	// CandidateLatency records end-to-end retrieval latency in seconds.
	CandidateLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "matchcore_candidate_latency_seconds",
		Help:    "Candidate retrieval latency in seconds",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	})

	// PreferenceCacheLookups counts preference cache hits and misses.
	PreferenceCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchcore_preference_cache_lookups_total",
		Help: "Preference cache lookups by result",
	}, []string{"result"}) // result = "hit", "miss", "error"
)

func init() {
	prometheus.MustRegister(
		CandidateRequests,
		CandidatesExcluded,
		CandidatesReturned,
		CandidateLatency,
		PreferenceCacheLookups,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

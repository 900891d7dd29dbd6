// Package metrics holds the Prometheus collectors exported by the API.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of every routed request, by route pattern and status
	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "champions_api_request_duration_seconds",
		Help:    "Latency of API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "status"})

	// Responses served from the in-memory cache vs. freshly encoded
	CacheResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "champions_api_cache_results_total",
		Help: "Cache lookups by result (hit, miss, not_modified)",
	}, []string{"result"})

	// Artifact reloads by outcome
	ArtifactReloads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "champions_artifact_reloads_total",
		Help: "Artifact reload attempts by outcome (ok, error)",
	}, []string{"outcome"})

	// Heroes in the currently served artifact
	ArtifactHeroes = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "champions_artifact_heroes",
		Help: "Number of heroes in the loaded artifact",
	})

	// Requests rejected by the per-IP rate limiter
	RateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "champions_api_rate_limited_total",
		Help: "Total number of requests rejected by the rate limiter",
	})
)

// Init registers every collector with the default registry. Call once.
func Init() {
	prometheus.MustRegister(
		RequestDuration,
		CacheResults,
		ArtifactReloads,
		ArtifactHeroes,
		RateLimited,
	)
}

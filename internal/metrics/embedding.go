package metrics

import "github.com/prometheus/client_golang/prometheus"

// Core Prometheus metrics for the matching engine.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobhunt",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jobhunt",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobhunt",
			Name:      "embedding_tokens_total",
			Help:      "Total embedding tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	EmbeddingErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobhunt",
			Name:      "embedding_errors_total",
			Help:      "Total embedding errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobhunt",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	MatchScoresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobhunt",
			Name:      "match_scores_total",
			Help:      "Job match scoring outcomes",
		},
		[]string{"status"}, // "complete" / "error"
	)

	RetrievalQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobhunt",
			Name:      "retrieval_queries_total",
			Help:      "Retrieval queries issued, by source tag",
		},
		[]string{"tag", "status"},
	)

	RetrievalFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "jobhunt",
			Name:      "retrieval_fallback_total",
			Help:      "Retrieval passes that fell back to recency-based selection",
		},
	)
)

var coreMetricsRegistered bool

// RegisterCoreMetrics registers the engine's Prometheus metrics. Must be called once from main.
func RegisterCoreMetrics() {
	if coreMetricsRegistered {
		return
	}
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingTokensTotal)
	prometheus.MustRegister(EmbeddingErrorsTotal)
	prometheus.MustRegister(EmbeddingCacheTotal)
	prometheus.MustRegister(MatchScoresTotal)
	prometheus.MustRegister(RetrievalQueriesTotal)
	prometheus.MustRegister(RetrievalFallbackTotal)
	coreMetricsRegistered = true
}

package metrics

import "github.com/prometheus/client_golang/prometheus"

// Corpus and query Prometheus metrics.
var (
	CorpusMovies = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cinematch",
			Name:      "corpus_movies",
			Help:      "Number of movies in the published snapshot",
		},
	)

	CorpusVocabularyTerms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cinematch",
			Name:      "corpus_vocabulary_terms",
			Help:      "Vocabulary size of the published snapshot",
		},
	)

	CorpusBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "cinematch",
			Name:      "corpus_build_duration_seconds",
			Help:      "Snapshot build duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	CorpusLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinematch",
			Name:      "corpus_loads_total",
			Help:      "Corpus load attempts by outcome",
		},
		[]string{"status"}, // "ok" / "error"
	)

	FeatureParseErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinematch",
			Name:      "feature_parse_errors_total",
			Help:      "Malformed categorical fields that degraded to empty features",
		},
		[]string{"field"},
	)

	RecommendTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinematch",
			Name:      "recommend_total",
			Help:      "Recommendation requests by outcome",
		},
		[]string{"outcome"}, // "ok" / "not_found" / "not_ready" / "invalid"
	)

	ResolveConfidence = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cinematch",
			Name:      "resolve_confidence",
			Help:      "Best title match confidence per query",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		},
		[]string{"operation"}, // "search" / "recommend"
	)
)

var corpusMetricsRegistered bool

// RegisterCorpusMetrics registers corpus and query metrics. Must be called once from main.
func RegisterCorpusMetrics() {
	if corpusMetricsRegistered {
		return
	}
	prometheus.MustRegister(CorpusMovies)
	prometheus.MustRegister(CorpusVocabularyTerms)
	prometheus.MustRegister(CorpusBuildDuration)
	prometheus.MustRegister(CorpusLoadsTotal)
	prometheus.MustRegister(FeatureParseErrorsTotal)
	prometheus.MustRegister(RecommendTotal)
	prometheus.MustRegister(ResolveConfidence)
	corpusMetricsRegistered = true
}

package metrics

import (
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry     *prometheus.Registry
	registryOnce sync.Once

	// Ingestion metrics
	UtterancesIngested prometheus.Counter
	UtterancesDropped  *prometheus.CounterVec

	// Classification metrics
	SentimentLabels  *prometheus.CounterVec
	IntentLabels     *prometheus.CounterVec
	ComplianceLabels *prometheus.CounterVec

	// Aggregation metrics
	AggregationRuns     *prometheus.CounterVec
	AggregationFailures *prometheus.CounterVec
	AggregationDuration prometheus.Histogram

	// Read cache metrics
	CacheHits       *prometheus.CounterVec
	CacheMisses     *prometheus.CounterVec
	CacheStaleServe *prometheus.CounterVec

	// Escalation metrics
	EscalationsRecommended prometheus.Counter
)

// Init initializes all metrics and registers them with Prometheus
func Init() {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()

		UtterancesIngested = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "callsight_utterances_ingested_total",
				Help: "Total number of utterances admitted past the quality gate",
			},
		)

		UtterancesDropped = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callsight_utterances_dropped_total",
				Help: "Total number of utterances dropped by the quality gate",
			},
			[]string{"reason"},
		)

		SentimentLabels = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callsight_sentiment_labels_total",
				Help: "Sentiment labels produced by the classifier",
			},
			[]string{"sentiment"},
		)

		IntentLabels = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callsight_intent_labels_total",
				Help: "Intent categories produced by the classifier",
			},
			[]string{"intent"},
		)

		ComplianceLabels = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callsight_compliance_labels_total",
				Help: "Compliance flags produced by the classifier",
			},
			[]string{"flag", "severity"},
		)

		AggregationRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callsight_aggregation_runs_total",
				Help: "Aggregation runs by kind (call, agent_day, day)",
			},
			[]string{"kind"},
		)

		AggregationFailures = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callsight_aggregation_failures_total",
				Help: "Aggregation failures by kind",
			},
			[]string{"kind"},
		)

		AggregationDuration = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "callsight_aggregation_duration_seconds",
				Help:    "Duration of a full aggregation sweep",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		)

		CacheHits = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callsight_cache_hits_total",
				Help: "Read cache hits by entity type",
			},
			[]string{"entity"},
		)

		CacheMisses = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callsight_cache_misses_total",
				Help: "Read cache misses by entity type",
			},
			[]string{"entity"},
		)

		CacheStaleServe = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callsight_cache_stale_serves_total",
				Help: "Responses served stale after a failed recompute",
			},
			[]string{"entity"},
		)

		EscalationsRecommended = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "callsight_escalations_recommended_total",
				Help: "Escalation assessments that recommended escalation",
			},
		)

		registry.MustRegister(
			UtterancesIngested,
			UtterancesDropped,
			SentimentLabels,
			IntentLabels,
			ComplianceLabels,
			AggregationRuns,
			AggregationFailures,
			AggregationDuration,
			CacheHits,
			CacheMisses,
			CacheStaleServe,
			EscalationsRecommended,
		)
	})
}

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() echo.HandlerFunc {
	Init()
	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return echo.WrapHandler(h)
}

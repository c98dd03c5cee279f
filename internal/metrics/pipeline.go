package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "docnav"

// Query pipeline Prometheus metrics.
var (
	PipelineRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_requests_total",
			Help:      "Query pipeline outcomes",
		},
		[]string{"outcome"}, // answered / blocked / cached / error
	)

	PipelineStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"stage"},
	)

	PipelineCategoryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_category_total",
			Help:      "Queries routed per category",
		},
		[]string{"category"},
	)

	LookupOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_outcomes_total",
			Help:      "Auxiliary lookup outcomes",
		},
		[]string{"lookup", "outcome"}, // found / absent / failed
	)

	GenerationFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_fallbacks_total",
			Help:      "Generative answers replaced by the template strategy",
		},
	)

	ResultCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_cache_total",
			Help:      "Result cache lookups",
		},
		[]string{"result"}, // hit / miss / expired
	)

	SafetyRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "safety_rejections_total",
			Help:      "Queries rejected by the input safety check",
		},
		[]string{"reason"}, // jailbreak / off_topic
	)

	IngestDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_documents_total",
			Help:      "Documents processed by ingestion",
		},
		[]string{"status"}, // added / invalid / failed
	)

	CacheInvalidationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_cache_invalidations_total",
			Help:      "Result cache flushes triggered by ingestion or operators",
		},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(PipelineRequestsTotal)
	prometheus.MustRegister(PipelineStageDuration)
	prometheus.MustRegister(PipelineCategoryTotal)
	prometheus.MustRegister(LookupOutcomesTotal)
	prometheus.MustRegister(GenerationFallbacksTotal)
	prometheus.MustRegister(ResultCacheTotal)
	prometheus.MustRegister(SafetyRejectionsTotal)
	prometheus.MustRegister(IngestDocumentsTotal)
	prometheus.MustRegister(CacheInvalidationsTotal)
	pipelineMetricsRegistered = true
}

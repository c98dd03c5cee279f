package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterPipelineMetrics_Idempotent(t *testing.T) {
	RegisterPipelineMetrics()
	RegisterPipelineMetrics() // must not panic on duplicate registration

	ResultCacheTotal.WithLabelValues("hit").Inc()
	if v := testutil.ToFloat64(ResultCacheTotal.WithLabelValues("hit")); v < 1 {
		t.Errorf("expected result_cache_total{hit} >= 1, got %f", v)
	}
}

func TestRegisterEmbeddingMetrics_Idempotent(t *testing.T) {
	RegisterEmbeddingMetrics()
	RegisterEmbeddingMetrics()

	GenerationRequestsTotal.WithLabelValues("openai", "gpt", "ok").Inc()
	if v := testutil.ToFloat64(GenerationRequestsTotal.WithLabelValues("openai", "gpt", "ok")); v < 1 {
		t.Errorf("expected generation_requests_total >= 1, got %f", v)
	}
}

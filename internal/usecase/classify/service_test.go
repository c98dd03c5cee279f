package classify

import (
	"slices"
	"testing"

	"github.com/kailas-cloud/docnav/internal/domain/category"
)

func TestClassify_Unclassified(t *testing.T) {
	svc := New()

	for _, text := range []string{"pizza recipe", "what is the weather", ""} {
		r := svc.Classify(text)
		if r.Category != category.Unclassified {
			t.Errorf("%q: expected unclassified, got %q", text, r.Category)
		}
		if r.Confidence != 0 {
			t.Errorf("%q: expected 0 confidence, got %v", text, r.Confidence)
		}
		if len(r.Matched) != 0 {
			t.Errorf("%q: expected no evidence, got %v", text, r.Matched)
		}
		if !slices.Equal(r.Tags, []string{"general", "nvidia"}) {
			t.Errorf("%q: unexpected tags %v", text, r.Tags)
		}
	}
}

func TestClassify_NVLink(t *testing.T) {
	r := New().Classify("How do I configure NVLink on A100?")

	if r.Category != category.InterconnectTopology {
		t.Fatalf("expected interconnect-topology, got %q", r.Category)
	}
	if r.Confidence <= 0 {
		t.Errorf("expected positive confidence, got %v", r.Confidence)
	}
	if !slices.Contains(r.Matched, "nvlink") {
		t.Errorf("expected nvlink in evidence, got %v", r.Matched)
	}
	if !slices.Equal(r.Tags, []string{"nvlink", "interconnect", "p2p"}) {
		t.Errorf("unexpected tags %v", r.Tags)
	}
}

func TestClassify_HighestScoreWins(t *testing.T) {
	// general-compute: cuda, kernel; profiling: nsight, profiling, bottleneck
	r := New().Classify("nsight profiling shows a bottleneck in my cuda kernel")
	if r.Category != category.PerformanceProfiling {
		t.Fatalf("expected performance-profiling, got %q (%v)", r.Category, r.Matched)
	}
	want := []string{"nsight", "profiling", "bottleneck"}
	if !slices.Equal(r.Matched, want) {
		t.Errorf("expected evidence %v in declaration order, got %v", want, r.Matched)
	}
}

func TestClassify_TieBreakByPriority(t *testing.T) {
	// One phrase each for MIG and Triton: MIG is declared first.
	r := New().Classify("triton on mig")
	if r.Category != category.DevicePartitioning {
		t.Errorf("expected device-partitioning-config, got %q", r.Category)
	}

	// Reversed table order flips the winner.
	table := []Table{
		{Category: category.InferenceServing, Phrases: []string{"triton"}},
		{Category: category.DevicePartitioning, Phrases: []string{"mig"}},
	}
	r = NewWithTable(table).Classify("triton on mig")
	if r.Category != category.InferenceServing {
		t.Errorf("expected inference-serving, got %q", r.Category)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	svc := New()
	first := svc.Classify("tensorrt int8 with triton deployment")
	for i := 0; i < 50; i++ {
		r := svc.Classify("tensorrt int8 with triton deployment")
		if r.Category != first.Category || r.Confidence != first.Confidence {
			t.Fatalf("non-deterministic result on iteration %d", i)
		}
	}
}

func TestClassify_ConfidenceBounds(t *testing.T) {
	svc := New()
	queries := []string{
		"mig multi-instance gpu partitioning mig mode gpu instance compute instance",
		"cuda kernel thread block grid device host memory shared memory global memory",
		"MIG",
		"trt",
	}
	for _, q := range queries {
		r := svc.Classify(q)
		if r.Confidence < 0 || r.Confidence > 1 {
			t.Errorf("%q: confidence out of range: %v", q, r.Confidence)
		}
	}

	r := svc.Classify(queries[0])
	if r.Confidence != 1 {
		t.Errorf("expected full confidence when every phrase matches, got %v", r.Confidence)
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	r := New().Classify("TENSORRT with FP16")
	if r.Category != category.InferenceOptimization {
		t.Fatalf("expected inference-optimization, got %q", r.Category)
	}
	if !slices.Equal(r.Matched, []string{"tensorrt", "fp16"}) {
		t.Errorf("unexpected evidence %v", r.Matched)
	}
}

func TestDefaultTable_FollowsPriority(t *testing.T) {
	table := DefaultTable()
	if len(table) != len(category.Priority) {
		t.Fatalf("expected %d entries, got %d", len(category.Priority), len(table))
	}
	for i, c := range category.Priority {
		if table[i].Category != c {
			t.Errorf("position %d: expected %q, got %q", i, c, table[i].Category)
		}
		if len(table[i].Phrases) == 0 {
			t.Errorf("%q has no trigger phrases", c)
		}
	}
}

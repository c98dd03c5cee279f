// Package category defines the fixed set of routing labels a query can receive.
package category

import "fmt"

// Category is the single routing label assigned to a query.
type Category string

const (
	// DevicePartitioning covers Multi-Instance GPU setup and partitioning.
	DevicePartitioning Category = "device-partitioning-config"
	// InterconnectTopology covers NVLink and peer-to-peer GPU communication.
	InterconnectTopology Category = "interconnect-topology"
	// InferenceOptimization covers TensorRT and reduced-precision inference.
	InferenceOptimization Category = "inference-optimization"
	// ConversationalAIToolkit covers NeMo, LLMs and speech models.
	ConversationalAIToolkit Category = "conversational-ai-toolkit"
	// InferenceServing covers Triton and model deployment.
	InferenceServing Category = "inference-serving"
	// PerformanceProfiling covers Nsight and kernel performance analysis.
	PerformanceProfiling Category = "performance-profiling"
	// GeneralCompute covers general CUDA programming.
	GeneralCompute Category = "general-compute"
	// Unclassified is assigned when no trigger phrase matched.
	Unclassified Category = "unclassified"
	// Blocked marks a query rejected by the input safety check. Never produced by classification.
	Blocked Category = "blocked"
)

// Priority lists the classifiable categories in tie-break order: when two
// categories score equally the one declared earlier wins.
var Priority = []Category{
	DevicePartitioning,
	InterconnectTopology,
	InferenceOptimization,
	ConversationalAIToolkit,
	InferenceServing,
	PerformanceProfiling,
	GeneralCompute,
}

var tags = map[Category][]string{
	DevicePartitioning:      {"mig", "configuration", "multi-instance"},
	InterconnectTopology:    {"nvlink", "interconnect", "p2p"},
	InferenceOptimization:   {"tensorrt", "inference", "optimization"},
	ConversationalAIToolkit: {"nemo", "llm", "ai"},
	InferenceServing:        {"triton", "inference-server", "deployment"},
	PerformanceProfiling:    {"cuda", "profiling", "performance"},
	GeneralCompute:          {"cuda", "programming", "gpu"},
	Unclassified:            {"general", "nvidia"},
}

// Tags returns the static suggested tag set for the category.
// The returned slice is a copy.
func (c Category) Tags() []string {
	t, ok := tags[c]
	if !ok {
		return []string{"nvidia"}
	}
	out := make([]string, len(t))
	copy(out, t)
	return out
}

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	switch c {
	case Unclassified, Blocked:
		return true
	}
	for _, p := range Priority {
		if p == c {
			return true
		}
	}
	return false
}

// Parse converts a wire string into a Category.
func Parse(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

func (c Category) String() string { return string(c) }

// Routing is the classifier's verdict for one query.
type Routing struct {
	Category   Category
	Confidence float64
	// Matched lists the trigger phrases found, in declaration order.
	Matched []string
	Tags    []string
}

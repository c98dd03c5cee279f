package classify

import "github.com/kailas-cloud/docnav/internal/domain/category"

// Trigger phrases per category. Matching is a lower-cased substring test,
// so short phrases like "trt" also fire inside longer words.
var triggers = map[category.Category][]string{
	category.DevicePartitioning: {
		"mig", "multi-instance", "gpu partitioning", "mig mode", "gpu instance", "compute instance",
	},
	category.InterconnectTopology: {
		"nvlink", "nv-link", "gpu interconnect", "peer-to-peer", "p2p", "gpu communication",
	},
	category.InferenceOptimization: {
		"tensorrt", "trt", "inference optimization", "fp16", "int8", "inference engine", "onnx",
	},
	category.ConversationalAIToolkit: {
		"nemo", "llm", "language model", "asr", "speech recognition", "conversational ai",
	},
	category.InferenceServing: {
		"triton", "inference server", "model serving", "deployment", "triton server",
	},
	category.PerformanceProfiling: {
		"nsight", "profiling", "profiler", "performance analysis", "kernel slow", "optimization", "bottleneck",
	},
	category.GeneralCompute: {
		"cuda", "kernel", "thread", "block", "grid", "device", "host", "memory", "shared memory", "global memory",
	},
}

// Table is an ordered category -> trigger phrases mapping.
type Table struct {
	Category category.Category
	Phrases  []string
}

// DefaultTable returns the built-in trigger table in priority order.
func DefaultTable() []Table {
	out := make([]Table, 0, len(category.Priority))
	for _, c := range category.Priority {
		out = append(out, Table{Category: c, Phrases: append([]string(nil), triggers[c]...)})
	}
	return out
}

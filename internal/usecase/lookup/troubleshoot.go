package lookup

import (
	"context"
	"strings"

	"github.com/kailas-cloud/docnav/internal/domain/category"
	"github.com/kailas-cloud/docnav/internal/domain/finding"
	"github.com/kailas-cloud/docnav/internal/domain/query"
)

type flowRule struct {
	flow    finding.TroubleshootFlow
	matches func(lower string, cat category.Category) bool
}

var (
	migFlow = finding.TroubleshootFlow{
		Issue: "MIG configuration",
		Steps: []finding.Step{
			{
				Title:       "Check that MIG mode is enabled",
				Command:     "nvidia-smi -i <gpu_id> --query-gpu=mig.mode.current --format=csv,noheader",
				Description: "Expect Enabled. Otherwise run `sudo nvidia-smi -i <gpu_id> -mig 1` (root and a GPU reset are required).",
			},
			{
				Title:       "List available MIG profiles",
				Command:     "nvidia-smi mig -lgip",
				Description: "Expect profiles such as 1g.5gb or 2g.10gb. If empty, confirm the GPU supports MIG (A100, H100) and the driver is current.",
			},
			{
				Title:       "Create a GPU instance",
				Command:     "sudo nvidia-smi mig -cgi <profile_id> -C",
				Description: "If creation fails, look for existing instances holding the resources.",
			},
		},
	}

	oomFlow = finding.TroubleshootFlow{
		Issue: "CUDA out of memory",
		Steps: []finding.Step{
			{
				Title:       "Check current GPU memory usage",
				Command:     "nvidia-smi",
				Description: "Free memory should exceed what the job needs. Kill stale processes with `kill -9 <pid>`.",
			},
			{
				Title:       "Analyze memory fragmentation",
				Command:     "torch.cuda.memory_summary()",
				Description: "Or inspect with Nsight Systems. Reduce the batch size or call `torch.cuda.empty_cache()` between phases.",
			},
		},
	}

	nvlinkFlow = finding.TroubleshootFlow{
		Issue: "NVLink status",
		Steps: []finding.Step{
			{
				Title:       "Check link state",
				Command:     "nvidia-smi nvlink --status",
				Description: "Every link should report its speed. Inactive links point to a seating or firmware problem.",
			},
			{
				Title:       "Inspect the topology",
				Command:     "nvidia-smi topo -m",
				Description: "GPU pairs expected to use NVLink should show NV# rather than PHB or SYS.",
			},
			{
				Title:       "Verify the driver and fabric manager",
				Command:     "systemctl status nvidia-fabricmanager",
				Description: "NVSwitch systems need the fabric manager running at the same version as the driver.",
			},
		},
	}

	slowKernelFlow = finding.TroubleshootFlow{
		Issue: "Slow kernel",
		Steps: []finding.Step{
			{
				Title:       "Capture a system timeline",
				Command:     "nsys profile -o report ./app",
				Description: "Look for gaps between kernels, host synchronization and large memory copies.",
			},
			{
				Title:       "Profile the hot kernel",
				Command:     "ncu --set full -k <kernel_name> ./app",
				Description: "Compare achieved memory throughput and compute utilization against the device peak.",
			},
			{
				Title:       "Check occupancy",
				Command:     "ncu --section Occupancy ./app",
				Description: "Low occupancy usually comes from register or shared memory pressure. Adjust the block size.",
			},
		},
	}
)

var flowRules = []flowRule{
	{
		flow: migFlow,
		matches: func(lower string, _ category.Category) bool {
			return strings.Contains(lower, "mig") && containsAny(lower, "config", "enable", "error")
		},
	},
	{
		flow: oomFlow,
		matches: func(lower string, _ category.Category) bool {
			return containsAny(lower, "out of memory", "oom")
		},
	},
	{
		flow: nvlinkFlow,
		matches: func(lower string, cat category.Category) bool {
			return cat == category.InterconnectTopology && containsAny(lower, "error", "not working", "status", "down")
		},
	},
	{
		flow: slowKernelFlow,
		matches: func(lower string, cat category.Category) bool {
			return cat == category.PerformanceProfiling && containsAny(lower, "slow", "bottleneck")
		},
	},
}

// Troubleshoot matches the query against known step-by-step debugging flows.
// The first matching flow wins.
type Troubleshoot struct{}

// NewTroubleshoot creates the troubleshooting flow matcher.
func NewTroubleshoot() *Troubleshoot { return &Troubleshoot{} }

// Name implements Lookup.
func (*Troubleshoot) Name() string { return "troubleshooting" }

// Find implements Lookup.
func (*Troubleshoot) Find(_ context.Context, q query.Query, cat category.Category) (finding.Finding, error) {
	lower := q.Lower()
	for _, r := range flowRules {
		if r.matches(lower, cat) {
			f := r.flow
			f.Steps = append([]finding.Step(nil), r.flow.Steps...)
			return f, nil
		}
	}
	return nil, nil
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

package lookup

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kailas-cloud/docnav/internal/domain/category"
	"github.com/kailas-cloud/docnav/internal/domain/finding"
	"github.com/kailas-cloud/docnav/internal/domain/query"
)

// SupportMatrixURL is attached to every compatibility finding.
const SupportMatrixURL = "https://docs.nvidia.com/deeplearning/tensorrt/support-matrix/index.html"

var versionPatterns = []struct {
	component string
	re        *regexp.Regexp
}{
	{"cuda", regexp.MustCompile(`cuda\s*v?(\d+(\.\d+)?)`)},
	{"tensorrt", regexp.MustCompile(`tensorrt\s*v?(\d+(\.\d+)?)`)},
	{"cudnn", regexp.MustCompile(`cudnn\s*v?(\d+(\.\d+)?)`)},
	{"driver", regexp.MustCompile(`driver\s*v?(\d+(\.\d+)?)`)},
}

type requirement struct {
	component string
	minimum   string
}

// Minimum dependency versions per component release.
var matrix = map[string]map[string][]requirement{
	"tensorrt": {
		"10.0": {{"cuda", "12.0"}, {"cudnn", "8.9"}},
		"8.6":  {{"cuda", "11.0"}, {"cudnn", "8.6"}},
		"8.5":  {{"cuda", "10.2"}, {"cudnn", "8.5"}},
	},
	"cuda": {
		"12.4": {{"driver", "550.54"}},
		"12.1": {{"driver", "530.30"}},
		"11.8": {{"driver", "520.61"}},
	},
}

// Compatibility reports version mismatches between CUDA, TensorRT, cuDNN and
// the driver when the query names explicit versions.
type Compatibility struct{}

// NewCompatibility creates the compatibility reasoner.
func NewCompatibility() *Compatibility { return &Compatibility{} }

// Name implements Lookup.
func (*Compatibility) Name() string { return "compatibility" }

// Find implements Lookup. Absent when the query names no versions.
func (c *Compatibility) Find(_ context.Context, q query.Query, _ category.Category) (finding.Finding, error) {
	versions := ExtractVersions(q.Text())
	if len(versions) == 0 {
		return nil, nil
	}
	return finding.Compatibility{Versions: versions, Notes: c.notes(versions)}, nil
}

func (*Compatibility) notes(v map[string]string) []finding.Note {
	var notes []finding.Note
	warn := func(format string, args ...any) {
		notes = append(notes, finding.Note{Severity: finding.SeverityWarning, Message: fmt.Sprintf(format, args...)})
	}
	info := func(format string, args ...any) {
		notes = append(notes, finding.Note{Severity: finding.SeverityInfo, Message: fmt.Sprintf(format, args...)})
	}

	trt, hasTRT := v["tensorrt"]
	cuda, hasCUDA := v["cuda"]
	if hasTRT && hasCUDA {
		switch {
		case major(trt) == 10 && major(cuda) != 12:
			warn("TensorRT %s is built for CUDA 12.x. Using CUDA %s may cause issues.", trt, cuda)
		case major(trt) == 8 && major(cuda) == 12:
			info("TensorRT %s supports CUDA %s, but check the minor version requirements.", trt, cuda)
		}
	}

	for _, component := range []string{"tensorrt", "cuda"} {
		ver, ok := v[component]
		if !ok {
			continue
		}
		reqs, known := matrix[component][releaseKey(ver)]
		if !known {
			continue
		}
		for _, r := range reqs {
			have, present := v[r.component]
			if present && compareVersions(have, r.minimum) < 0 {
				warn("%s %s requires %s >= %s, found %s.", displayName(component), ver, displayName(r.component), r.minimum, have)
				continue
			}
			if !present {
				info("%s %s requires %s >= %s.", displayName(component), ver, displayName(r.component), r.minimum)
			}
		}
	}

	info("See the support matrix: %s", SupportMatrixURL)
	return notes
}

// ExtractVersions finds "<component> [v]<major>[.<minor>]" mentions.
func ExtractVersions(text string) map[string]string {
	lower := strings.ToLower(text)
	out := make(map[string]string)
	for _, p := range versionPatterns {
		if m := p.re.FindStringSubmatch(lower); m != nil {
			out[p.component] = m[1]
		}
	}
	return out
}

// releaseKey reduces v to major.minor, padding a missing minor with 0.
func releaseKey(v string) string {
	head, rest, _ := strings.Cut(v, ".")
	minor, _, _ := strings.Cut(rest, ".")
	if minor == "" {
		minor = "0"
	}
	return head + "." + minor
}

func major(v string) int {
	head, _, _ := strings.Cut(v, ".")
	n, _ := strconv.Atoi(head)
	return n
}

// compareVersions compares dotted numeric versions; missing parts count as zero.
func compareVersions(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var x, y int
		if i < len(as) {
			x, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			y, _ = strconv.Atoi(bs[i])
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}

func displayName(component string) string {
	switch component {
	case "cuda":
		return "CUDA"
	case "tensorrt":
		return "TensorRT"
	case "cudnn":
		return "cuDNN"
	case "driver":
		return "driver"
	}
	return component
}

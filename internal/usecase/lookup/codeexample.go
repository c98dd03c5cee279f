package lookup

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/docnav/internal/domain/category"
	"github.com/kailas-cloud/docnav/internal/domain/finding"
	"github.com/kailas-cloud/docnav/internal/domain/query"
)

// DefaultMaxExamples is the number of code examples requested per query.
const DefaultMaxExamples = 2

// OfficialRepos are searched when a generic query names an NVIDIA product.
var OfficialRepos = []string{
	"NVIDIA/cuda-samples",
	"NVIDIA/TensorRT",
	"NVIDIA/NeMo",
	"triton-inference-server/server",
	"NVIDIA/cutlass",
	"NVIDIA/cuDNN",
	"NVIDIA/DeepLearningExamples",
}

type scope struct {
	repo     string
	language string
}

var categoryScopes = map[category.Category]scope{
	category.GeneralCompute:          {repo: "NVIDIA/cuda-samples", language: "cuda"},
	category.PerformanceProfiling:    {repo: "NVIDIA/cuda-samples", language: "cuda"},
	category.InferenceOptimization:   {repo: "NVIDIA/TensorRT", language: "python"},
	category.ConversationalAIToolkit: {repo: "NVIDIA/NeMo", language: "python"},
}

// CodeExamples searches public repositories for code related to the query.
type CodeExamples struct {
	searcher   CodeSearcher
	maxResults int
}

// NewCodeExamples creates the code example lookup.
func NewCodeExamples(searcher CodeSearcher, maxResults int) *CodeExamples {
	if maxResults <= 0 {
		maxResults = DefaultMaxExamples
	}
	return &CodeExamples{searcher: searcher, maxResults: maxResults}
}

// Name implements Lookup.
func (*CodeExamples) Name() string { return "code_examples" }

// Find implements Lookup. Skipped when the caller opted out or the query is unclassified.
func (c *CodeExamples) Find(ctx context.Context, q query.Query, cat category.Category) (finding.Finding, error) {
	if !q.IncludeCodeExamples() || cat == category.Unclassified || cat == category.Blocked {
		return nil, nil
	}

	examples, err := c.searcher.SearchCode(ctx, c.searchFor(q, cat))
	if err != nil {
		return nil, fmt.Errorf("search code: %w", err)
	}
	if len(examples) == 0 {
		return nil, nil
	}
	if len(examples) > c.maxResults {
		examples = examples[:c.maxResults]
	}
	return finding.CodeExamples{Examples: examples}, nil
}

func (c *CodeExamples) searchFor(q query.Query, cat category.Category) CodeSearch {
	s := CodeSearch{Terms: q.Text(), MaxResults: c.maxResults}
	if sc, ok := categoryScopes[cat]; ok {
		s.Repos = []string{sc.repo}
		s.Language = sc.language
		return s
	}
	if containsAny(q.Lower(), "cuda", "tensorrt", "nemo", "triton") {
		s.Repos = append([]string(nil), OfficialRepos[:3]...)
	}
	return s
}

// Qualifiers renders the search as a GitHub code search query string.
func (s CodeSearch) Qualifiers() string {
	parts := []string{strings.TrimSpace(s.Terms)}
	for _, r := range s.Repos {
		parts = append(parts, "repo:"+r)
	}
	if s.Language != "" {
		parts = append(parts, "language:"+s.Language)
	}
	return strings.Join(parts, " ")
}

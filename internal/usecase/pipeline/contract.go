package pipeline

import (
	"context"

	"github.com/kailas-cloud/docnav/internal/domain/answer"
	"github.com/kailas-cloud/docnav/internal/domain/category"
	"github.com/kailas-cloud/docnav/internal/domain/finding"
	"github.com/kailas-cloud/docnav/internal/domain/passage"
	"github.com/kailas-cloud/docnav/internal/domain/query"
	"github.com/kailas-cloud/docnav/internal/usecase/resultcache"
	"github.com/kailas-cloud/docnav/internal/usecase/safety"
)

// Classifier routes query text to a category.
type Classifier interface {
	Classify(text string) category.Routing
}

// SafetyFilter applies input and output policies.
type SafetyFilter interface {
	CheckInput(text string) safety.Verdict
	CheckOutput(text string, context []passage.Passage) safety.Output
}

// ResultCache stores completed results by fingerprint.
type ResultCache interface {
	Get(fingerprint string) (answer.Result, bool)
	Generation() uint64
	PutIf(fingerprint string, result answer.Result, gen uint64) bool
	Clear() int
	Stats() resultcache.Stats
}

// Retriever returns ranked passages. An empty index yields an empty slice, not an error.
type Retriever interface {
	Search(ctx context.Context, text string, n int) ([]passage.Passage, error)
}

// LookupRunner executes the auxiliary lookups. It never fails.
type LookupRunner interface {
	Run(ctx context.Context, q query.Query, cat category.Category) finding.Set
}

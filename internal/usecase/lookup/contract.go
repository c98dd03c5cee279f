// Package lookup implements the best-effort enrichments that run beside retrieval.
package lookup

import (
	"context"

	"github.com/kailas-cloud/docnav/internal/domain/category"
	"github.com/kailas-cloud/docnav/internal/domain/finding"
	"github.com/kailas-cloud/docnav/internal/domain/query"
)

// Lookup maps a query to an optional finding.
// A nil finding with a nil error means nothing applies.
// Errors never leave Runner.Run.
type Lookup interface {
	Name() string
	Find(ctx context.Context, q query.Query, cat category.Category) (finding.Finding, error)
}

// CodeSearch describes a scoped code search.
type CodeSearch struct {
	Terms      string
	Repos      []string
	Language   string
	MaxResults int
}

// CodeSearcher finds source files in public repositories.
type CodeSearcher interface {
	SearchCode(ctx context.Context, s CodeSearch) ([]finding.CodeExample, error)
}

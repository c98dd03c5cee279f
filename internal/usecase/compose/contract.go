// Package compose turns retrieved passages and findings into answer text.
package compose

import (
	"context"

	"github.com/kailas-cloud/docnav/internal/domain/category"
	"github.com/kailas-cloud/docnav/internal/domain/finding"
	"github.com/kailas-cloud/docnav/internal/domain/passage"
)

// Input is everything a composer may use.
type Input struct {
	Question string
	Routing  category.Routing
	Passages []passage.Passage
	Findings finding.Set
}

// Composer produces the answer text for one request.
type Composer interface {
	Compose(ctx context.Context, in Input) (string, error)
}

package query

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/docnav/internal/domain"
)

// Query parameter limits.
const (
	// MaxTextLength is the maximum allowed query length in bytes.
	MaxTextLength      = 4096
	DefaultResultCount = 5
	MinResultCount     = 1
	MaxResultCount     = 20
)

// Query is a validated, immutable question.
type Query struct {
	text                string
	resultCount         int
	includeCodeExamples bool
}

// New validates query parameters. Violations wrap domain.ErrInvalidQuery and
// name the violated constraint.
func New(text string, resultCount int, includeCodeExamples bool) (Query, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Query{}, fmt.Errorf("%w: query text is required", domain.ErrInvalidQuery)
	}
	if len(trimmed) > MaxTextLength {
		return Query{}, fmt.Errorf("%w: query text too long (max %d chars)", domain.ErrInvalidQuery, MaxTextLength)
	}
	if resultCount < MinResultCount || resultCount > MaxResultCount {
		return Query{}, fmt.Errorf("%w: n_results must be between %d and %d, got %d",
			domain.ErrInvalidQuery, MinResultCount, MaxResultCount, resultCount)
	}
	return Query{
		text:                trimmed,
		resultCount:         resultCount,
		includeCodeExamples: includeCodeExamples,
	}, nil
}

// Text returns the trimmed query text.
func (q Query) Text() string { return q.text }

// ResultCount returns the requested number of passages.
func (q Query) ResultCount() int { return q.resultCount }

// IncludeCodeExamples reports whether the code example lookup is wanted.
func (q Query) IncludeCodeExamples() bool { return q.includeCodeExamples }

// Lower returns the lower-cased text used by keyword matchers.
func (q Query) Lower() string { return strings.ToLower(q.text) }

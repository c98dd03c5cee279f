// Package classify routes free-text queries to a technical category.
package classify

import (
	"strings"

	"github.com/kailas-cloud/docnav/internal/domain/category"
)

// Service is a deterministic keyword classifier. Safe for concurrent use.
type Service struct {
	table []Table
}

// New creates a classifier over the built-in trigger table.
func New() *Service {
	return &Service{table: DefaultTable()}
}

// NewWithTable creates a classifier over a custom table. Table order is the tie-break priority.
func NewWithTable(table []Table) *Service {
	return &Service{table: table}
}

// Classify assigns exactly one category to text.
//
// Score is the number of distinct trigger phrases found. The highest score
// wins; ties go to the category listed first. Confidence is score divided by
// the category's phrase count.
func (s *Service) Classify(text string) category.Routing {
	lower := strings.ToLower(text)

	var (
		best       category.Category
		bestScore  int
		bestTotal  int
		bestPhrase []string
	)
	for _, t := range s.table {
		matched := matchPhrases(lower, t.Phrases)
		// strict > keeps the earlier category on ties
		if len(matched) > bestScore {
			best = t.Category
			bestScore = len(matched)
			bestTotal = len(t.Phrases)
			bestPhrase = matched
		}
	}

	if bestScore == 0 {
		return category.Routing{
			Category:   category.Unclassified,
			Confidence: 0,
			Matched:    []string{},
			Tags:       category.Unclassified.Tags(),
		}
	}

	return category.Routing{
		Category:   best,
		Confidence: confidence(bestScore, bestTotal),
		Matched:    bestPhrase,
		Tags:       best.Tags(),
	}
}

func matchPhrases(lower string, phrases []string) []string {
	var matched []string
	seen := make(map[string]struct{}, len(phrases))
	for _, p := range phrases {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		if strings.Contains(lower, strings.ToLower(p)) {
			matched = append(matched, p)
		}
	}
	return matched
}

func confidence(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	c := float64(score) / float64(total)
	if c > 1 {
		return 1
	}
	return c
}

// Package answer holds the final structured result of the query pipeline.
package answer

import (
	"github.com/kailas-cloud/docnav/internal/domain/category"
	"github.com/kailas-cloud/docnav/internal/domain/finding"
	"github.com/kailas-cloud/docnav/internal/domain/passage"
)

// MaxSources caps the sources attached to a result.
const MaxSources = 3

// Source is a cited document.
type Source struct {
	Title     string
	URL       string
	Relevance float64
}

// Result is the immutable pipeline output. It is also the unit stored in the result cache.
type Result struct {
	Query           string
	Answer          string
	Category        category.Category
	Confidence      float64
	Sources         []Source
	CodeExamples    []finding.CodeExample
	MatchedKeywords []string
	SuggestedTags   []string
	SafetyTriggered bool
	Compatibility   *finding.Compatibility
	Troubleshooting *finding.TroubleshootFlow
}

// Blocked builds the terminal result for a query rejected by the input safety check.
func Blocked(queryText, message string) Result {
	return Result{
		Query:           queryText,
		Answer:          message,
		Category:        category.Blocked,
		Confidence:      1.0,
		Sources:         []Source{},
		CodeExamples:    []finding.CodeExample{},
		MatchedKeywords: []string{},
		SuggestedTags:   []string{},
		SafetyTriggered: true,
	}
}

// SourcesFrom converts the top passages into citations, preserving order.
func SourcesFrom(ps []passage.Passage) []Source {
	top := passage.Top(ps, MaxSources)
	out := make([]Source, 0, len(top))
	for _, p := range top {
		out = append(out, Source{Title: p.Title, URL: p.URL, Relevance: p.Relevance()})
	}
	return out
}

// Clone returns a deep copy so cached results cannot be mutated by callers.
func (r Result) Clone() Result {
	out := r
	out.Sources = append([]Source(nil), r.Sources...)
	out.CodeExamples = append([]finding.CodeExample(nil), r.CodeExamples...)
	out.MatchedKeywords = append([]string(nil), r.MatchedKeywords...)
	out.SuggestedTags = append([]string(nil), r.SuggestedTags...)
	if r.Compatibility != nil {
		c := *r.Compatibility
		c.Notes = append([]finding.Note(nil), r.Compatibility.Notes...)
		c.Versions = make(map[string]string, len(r.Compatibility.Versions))
		for k, v := range r.Compatibility.Versions {
			c.Versions[k] = v
		}
		out.Compatibility = &c
	}
	if r.Troubleshooting != nil {
		t := *r.Troubleshooting
		t.Steps = append([]finding.Step(nil), r.Troubleshooting.Steps...)
		out.Troubleshooting = &t
	}
	return out
}

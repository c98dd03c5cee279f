// Package safety applies textual input and output policies around the query pipeline.
//
// Both checks are substring heuristics. False positives and false negatives
// are expected; the input check saves work on abusive or unrelated queries
// and the output check only ever appends text.
package safety

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/docnav/internal/domain/passage"
)

// Verdict is the outcome of an input check.
type Verdict struct {
	Allowed bool
	Reason  Reason
	// Message is the fixed rejection text when Allowed is false.
	Message string
	// Matched is the phrase that triggered a jailbreak rejection.
	Matched string
}

// Output is the result of an output check.
type Output struct {
	Answer         string
	Speculative    bool
	ReferenceAdded bool
}

// Status describes the active policy.
type Status struct {
	Enabled            bool
	AllowedTopics      int
	BlockedPhrases     int
	SpeculativePhrases int
	ApprovedDomains    []string
}

// Service evaluates queries and answers against fixed policy tables.
type Service struct {
	enabled bool
}

// New creates a safety filter. A disabled filter allows everything and never edits answers.
func New(enabled bool) *Service {
	return &Service{enabled: enabled}
}

// CheckInput decides whether a query may enter the pipeline.
// Manipulation phrases take precedence over topic checks.
func (s *Service) CheckInput(text string) Verdict {
	if !s.enabled {
		return Verdict{Allowed: true}
	}
	lower := strings.ToLower(text)

	if p, ok := firstMatch(lower, blockedPhrases); ok {
		return Verdict{Reason: ReasonJailbreak, Message: jailbreakMessage, Matched: p}
	}

	if _, onTopic := firstMatch(lower, allowedTopics); onTopic {
		return Verdict{Allowed: true}
	}
	if _, generic := firstMatch(lower, genericWords); generic {
		return Verdict{Allowed: true}
	}
	return Verdict{Reason: ReasonOffTopic, Message: offTopicMessage}
}

// CheckOutput appends an uncertainty disclaimer to speculative answers and a
// documentation pointer to answers that cite no approved domain. It never blocks.
func (s *Service) CheckOutput(text string, context []passage.Passage) Output {
	out := Output{Answer: text}
	if !s.enabled {
		return out
	}

	if _, ok := firstMatch(strings.ToLower(out.Answer), speculativePhrases); ok {
		out.Answer += uncertaintyDisclaimer
		out.Speculative = true
	}

	if !citesApprovedDomain(out.Answer) {
		ref := referenceURL(context)
		out.Answer += fmt.Sprintf(referenceTemplate, ref, ref)
		out.ReferenceAdded = true
	}
	return out
}

// Status reports the active policy.
func (s *Service) Status() Status {
	return Status{
		Enabled:            s.enabled,
		AllowedTopics:      len(allowedTopics),
		BlockedPhrases:     len(blockedPhrases),
		SpeculativePhrases: len(speculativePhrases),
		ApprovedDomains:    append([]string(nil), approvedDomains...),
	}
}

func citesApprovedDomain(text string) bool {
	_, ok := firstMatch(strings.ToLower(text), approvedDomains)
	return ok
}

// referenceURL prefers the first context passage hosted on an approved domain.
func referenceURL(context []passage.Passage) string {
	for _, p := range context {
		if p.URL != "" && citesApprovedDomain(p.URL) {
			return p.URL
		}
	}
	return defaultReferenceURL
}

func firstMatch(lower string, phrases []string) (string, bool) {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return p, true
		}
	}
	return "", false
}

package compose

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/docnav/internal/domain/answer"
	"github.com/kailas-cloud/docnav/internal/domain/category"
	"github.com/kailas-cloud/docnav/internal/domain/finding"
	"github.com/kailas-cloud/docnav/internal/domain/passage"
)

// NoDocumentsMessage is the answer when retrieval returned nothing.
const NoDocumentsMessage = "I couldn't find relevant information in the NVIDIA documentation. " +
	"Try rephrasing the question or check the official NVIDIA documentation directly."

const (
	excerptCount  = 2
	excerptLength = 300
)

var intros = map[category.Category]string{
	category.DevicePartitioning:    "Based on NVIDIA's MIG documentation:",
	category.InferenceOptimization: "According to the TensorRT documentation:",
	category.GeneralCompute:        "From the CUDA programming guide:",
}

const defaultIntro = "Based on NVIDIA documentation:"

// Template composes answers from fixed sections. It never fails.
type Template struct{}

// NewTemplate creates the deterministic composer.
func NewTemplate() *Template { return &Template{} }

// Compose implements Composer.
func (*Template) Compose(_ context.Context, in Input) (string, error) {
	if len(in.Passages) == 0 {
		return NoDocumentsMessage, nil
	}

	var b strings.Builder
	b.WriteString(introFor(in.Routing.Category))

	b.WriteString("\n\n**Key Information:**\n")
	for i, p := range passage.Top(in.Passages, excerptCount) {
		fmt.Fprintf(&b, "%d. %s\n", i+1, truncate(p.Content, excerptLength))
	}

	writeFindings(&b, in.Findings)

	b.WriteString("\n**Sources:**\n")
	for i, p := range passage.Top(in.Passages, answer.MaxSources) {
		fmt.Fprintf(&b, "%d. [%s](%s)\n", i+1, orDefault(p.Title, "NVIDIA Documentation"), orDefault(p.URL, "#"))
	}
	return b.String(), nil
}

// writeFindings renders the optional compatibility, troubleshooting and code sections.
func writeFindings(b *strings.Builder, f finding.Set) {
	if c := f.Compatibility; c != nil && len(c.Notes) > 0 {
		b.WriteString("\n**Version Compatibility:**\n")
		for _, n := range c.Notes {
			marker := "-"
			if n.Severity == finding.SeverityWarning {
				marker = "- Warning:"
			}
			fmt.Fprintf(b, "%s %s\n", marker, n.Message)
		}
	}

	if t := f.Troubleshooting; t != nil && len(t.Steps) > 0 {
		fmt.Fprintf(b, "\n**Troubleshooting (%s):**\n", t.Issue)
		for i, s := range t.Steps {
			fmt.Fprintf(b, "%d. %s", i+1, s.Title)
			if s.Command != "" {
				fmt.Fprintf(b, ": `%s`", s.Command)
			}
			b.WriteString("\n")
			if s.Description != "" {
				fmt.Fprintf(b, "   %s\n", s.Description)
			}
		}
	}

	if len(f.CodeExamples) > 0 {
		b.WriteString("\n**Code Examples:**\n")
		for i, e := range f.CodeExamples {
			fmt.Fprintf(b, "%d. [%s](%s) - %s\n", i+1, e.Name, e.URL, e.Repository)
		}
	}
}

func introFor(c category.Category) string {
	if s, ok := intros[c]; ok {
		return s
	}
	return defaultIntro
}

// truncate cuts s to n runes and marks the cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

package compose

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docnav/internal/domain"
	"github.com/kailas-cloud/docnav/internal/domain/passage"
	"github.com/kailas-cloud/docnav/internal/logger"
	"github.com/kailas-cloud/docnav/internal/metrics"
)

// SystemPrompt constrains generative backends to public documentation.
const SystemPrompt = `You are the NVIDIA Doc Navigator.
Answer ONLY from public NVIDIA information and the provided context.
When unsure, say "I cannot verify this from public data."
Always cite the specific docs or GitHub repository URLs.
Give step-by-step guidance, code examples and version requirements where relevant.
Never describe unreleased hardware, internal systems or private APIs.`

const (
	contextPassages = 5
	contextLength   = 500
)

// Generative composes answers with a model and falls back to another composer
// when the model fails or there is nothing to ground the answer on.
type Generative struct {
	gen      domain.Generator
	fallback Composer
}

// NewGenerative wraps gen with fallback.
func NewGenerative(gen domain.Generator, fallback Composer) *Generative {
	return &Generative{gen: gen, fallback: fallback}
}

// Compose implements Composer.
func (g *Generative) Compose(ctx context.Context, in Input) (string, error) {
	if len(in.Passages) == 0 {
		return g.fallback.Compose(ctx, in)
	}

	text, err := g.gen.Generate(ctx, BuildPrompt(in))
	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("%w: empty completion", domain.ErrGenerationFailed)
	}
	if err != nil {
		logger.FromContext(ctx).Warn("generation failed, using template", zap.Error(err))
		metrics.GenerationFallbacksTotal.Inc()
		return g.fallback.Compose(ctx, in)
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(text))
	b.WriteString("\n")
	writeFindings(&b, in.Findings)
	return b.String(), nil
}

// BuildPrompt renders the top passages and category hints into a prompt.
func BuildPrompt(in Input) domain.Prompt {
	var ctxb strings.Builder
	for i, p := range passage.Top(in.Passages, contextPassages) {
		if i > 0 {
			ctxb.WriteString("\n\n")
		}
		fmt.Fprintf(&ctxb, "Document %d (%s, %s):\n%s", i+1, orDefault(p.Title, "N/A"), orDefault(p.URL, "N/A"), truncate(p.Content, contextLength))
	}

	system := SystemPrompt
	if len(in.Routing.Tags) > 0 {
		system += "\nTopic hints: " + strings.Join(in.Routing.Tags, ", ") + "."
	}

	return domain.Prompt{
		System: system,
		User:   fmt.Sprintf("Context:\n%s\n\nQuestion: %s", ctxb.String(), in.Question),
	}
}

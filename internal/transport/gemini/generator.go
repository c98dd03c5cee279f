package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/kailas-cloud/docnav/internal/domain"
	"github.com/kailas-cloud/docnav/internal/metrics"
)

const provider = "gemini"

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// models is the slice of the genai client the generator needs.
type models interface {
	GenerateContent(
		ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Config holds Gemini generation settings.
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int32
	Timeout     time.Duration // per call; 0 relies on the caller's context
}

// Generator answers prompts with Google Gemini.
type Generator struct {
	models      models
	model       string
	temperature float32
	maxTokens   int32
	timeout     time.Duration
}

// NewGenerator connects to the Gemini API.
func NewGenerator(ctx context.Context, cfg Config) (*Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newGenerator(client.Models, cfg), nil
}

func newGenerator(m models, cfg Config) *Generator {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Generator{
		models:      m,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
	}
}

// Generate implements domain.Generator.
func (g *Generator) Generate(ctx context.Context, p domain.Prompt) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: p.User}}}},
		g.config(p.System),
	)
	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(provider, g.model, "error").Inc()
		return "", fmt.Errorf("gemini generate: %w: %w", domain.ErrGenerationFailed, err)
	}
	metrics.GenerationRequestDuration.WithLabelValues(provider, g.model).Observe(time.Since(start).Seconds())

	if resp == nil || strings.TrimSpace(resp.Text()) == "" {
		metrics.GenerationRequestsTotal.WithLabelValues(provider, g.model, "empty").Inc()
		return "", fmt.Errorf("gemini returned no text: %w", domain.ErrGenerationFailed)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(provider, g.model, "success").Inc()
	return resp.Text(), nil
}

func (g *Generator) config(system string) *genai.GenerateContentConfig {
	temp := g.temperature
	cfg := &genai.GenerateContentConfig{Temperature: &temp}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	if g.maxTokens > 0 {
		cfg.MaxOutputTokens = g.maxTokens
	}
	return cfg
}

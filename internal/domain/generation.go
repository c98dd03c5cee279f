package domain

import "context"

// Prompt is a rendered request for a generative answer backend.
type Prompt struct {
	System string
	User   string
}

// Generator produces answer text from a prompt. Implementations may fail;
// callers fall back to deterministic composition.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

package gemini

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"

	"github.com/kailas-cloud/docnav/internal/domain"
)

type fakeModels struct {
	resp *genai.GenerateContentResponse
	err  error

	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(
	_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	f.model, f.contents, f.config = model, contents, config
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestGenerate(t *testing.T) {
	fm := &fakeModels{resp: textResponse("Enable MIG with nvidia-smi -mig 1.")}
	g := newGenerator(fm, Config{Temperature: 0.3, MaxTokens: 512})

	text, err := g.Generate(context.Background(), domain.Prompt{System: "rules", User: "how to enable mig"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Enable MIG with nvidia-smi -mig 1." {
		t.Errorf("unexpected text %q", text)
	}
	if fm.model != DefaultModel {
		t.Errorf("expected default model, got %q", fm.model)
	}
	if len(fm.contents) != 1 || fm.contents[0].Parts[0].Text != "how to enable mig" {
		t.Errorf("unexpected contents %+v", fm.contents)
	}
	if fm.config.SystemInstruction == nil || fm.config.SystemInstruction.Parts[0].Text != "rules" {
		t.Errorf("system instruction not set: %+v", fm.config.SystemInstruction)
	}
	if *fm.config.Temperature != 0.3 || fm.config.MaxOutputTokens != 512 {
		t.Errorf("unexpected config %+v", fm.config)
	}
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name string
		fm   *fakeModels
	}{
		{name: "api error", fm: &fakeModels{err: errors.New("quota exceeded")}},
		{name: "nil response", fm: &fakeModels{}},
		{name: "blank text", fm: &fakeModels{resp: textResponse("  \n")}},
		{name: "no candidates", fm: &fakeModels{resp: &genai.GenerateContentResponse{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGenerator(tt.fm, Config{Model: "gemini-test"})
			_, err := g.Generate(context.Background(), domain.Prompt{User: "q"})
			if !errors.Is(err, domain.ErrGenerationFailed) {
				t.Fatalf("expected ErrGenerationFailed, got %v", err)
			}
		})
	}
}

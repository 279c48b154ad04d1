// internal/oracle/gemini.go
//
// Gemini-backed oracle client. Game model ids are OpenRouter-style slugs,
// so anything that is not already a Gemini model maps to a default.

package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

// Gemini calls the Google generative AI API.
type Gemini struct {
	client *genai.Client
}

// NewGemini constructs a client from an API key.
func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return &Gemini{client: client}, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error { return g.client.Close() }

// SuggestWord requests the opponent's next word.
func (g *Gemini) SuggestWord(ctx context.Context, prompt, model, systemPrompt string) (string, error) {
	return g.generate(ctx, prompt, model, systemPrompt)
}

// EvaluatePrompt requests a score/feedback verdict.
func (g *Gemini) EvaluatePrompt(ctx context.Context, prompt, model, systemPrompt string) (string, error) {
	return g.generate(ctx, prompt, model, systemPrompt)
}

func (g *Gemini) generate(ctx context.Context, prompt, model, systemPrompt string) (string, error) {
	m := g.client.GenerativeModel(geminiModel(model))
	if systemPrompt != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	}
	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	return responseText(resp), nil
}

// geminiModel passes gemini ids through and maps everything else to the
// default model.
func geminiModel(model string) string {
	if strings.HasPrefix(model, "gemini") {
		return model
	}
	return defaultGeminiModel
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	var text string
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				text += string(txt)
			}
		}
	}
	return text
}

// internal/oracle/oracle.go
//
// Oracle client abstraction: the external language-model capability consumed
// by the opponent and evaluation engines. Replies are free-form text,
// possibly containing a JSON object; parsing is the caller's concern.

package oracle

import "context"

// Client is the full oracle surface. Implementations: OpenRouter (hosted),
// Gemini (hosted), Offline (deterministic, no network).
type Client interface {
	// SuggestWord asks for the opponent's next word.
	SuggestWord(ctx context.Context, prompt, model, systemPrompt string) (string, error)

	// EvaluatePrompt asks for a {score, feedback} verdict on a finished prompt.
	EvaluatePrompt(ctx context.Context, prompt, model, systemPrompt string) (string, error)
}

// Model ids selectable in the game.
const (
	ModelGPT35Turbo = "openai/gpt-3.5-turbo"
	ModelLlama3     = "meta-llama/llama-3-8b-instruct"
	ModelMixtral    = "mistralai/mixtral-8x7b-instruct"
	ModelNeuralChat = "intel/neural-chat-7b"
)

// AvailableModels lists the selectable model ids, default first.
var AvailableModels = []string{
	ModelGPT35Turbo,
	ModelLlama3,
	ModelMixtral,
	ModelNeuralChat,
}

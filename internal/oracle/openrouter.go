// internal/oracle/openrouter.go
//
// OpenRouter-backed oracle client (chat completions API).
//
// Notes:
//   - Word suggestions use a short, warm sampling profile (temp 0.7, few
//     tokens); evaluations use a colder, longer one (temp 0.3, 300 tokens).
//   - An empty choices array is an error; callers decide how to recover.

package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const openRouterURL = "https://openrouter.ai/api/v1/chat/completions"

// OpenRouter calls the OpenRouter chat-completions endpoint.
type OpenRouter struct {
	apiKey  string
	referer string
	httpc   *http.Client
	baseURL string
}

// NewOpenRouter constructs a client. referer identifies the app to the API
// (HTTP-Referer header); pass "" to omit it.
func NewOpenRouter(apiKey, referer string) *OpenRouter {
	return &OpenRouter{
		apiKey:  apiKey,
		referer: referer,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		baseURL: openRouterURL,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Role    string `json:"role"`
		} `json:"message"`
		Index int `json:"index"`
	} `json:"choices"`
	Model string `json:"model"`
}

// SuggestWord requests the opponent's next word.
func (c *OpenRouter) SuggestWord(ctx context.Context, prompt, model, systemPrompt string) (string, error) {
	return c.call(ctx, prompt, model, systemPrompt, 0.7, 100)
}

// EvaluatePrompt requests a score/feedback verdict.
func (c *OpenRouter) EvaluatePrompt(ctx context.Context, prompt, model, systemPrompt string) (string, error) {
	return c.call(ctx, prompt, model, systemPrompt, 0.3, 300)
}

// call performs one chat-completions round trip and returns the first
// choice's content.
func (c *OpenRouter) call(ctx context.Context, prompt, model, systemPrompt string, temperature float64, maxTokens int) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("openrouter: API key is missing")
	}
	if model == "" {
		model = ModelGPT35Turbo
	}

	msgs := make([]chatMessage, 0, 2)
	if systemPrompt != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: systemPrompt})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: prompt})

	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.referer != "" {
		req.Header.Set("HTTP-Referer", c.referer)
	}
	req.Header.Set("X-Title", "Prompt Duel")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("openrouter: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("openrouter: status %d: %s", resp.StatusCode, string(msg))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("openrouter: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("openrouter: empty response")
	}
	return out.Choices[0].Message.Content, nil
}

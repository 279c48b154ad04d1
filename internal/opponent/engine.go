// internal/opponent/engine.go
//
// Opponent word-selection engine.
// Responsibilities:
//   - Skip the turn without an oracle call when the opponent is at its cap.
//   - Fail fast (ErrNoWords) when the bank is exhausted.
//   - Build the word-selection instruction for the oracle.
//   - Pace the call with a configurable "thinking" delay (2–5s by default,
//     zero in non-interactive contexts).
//   - Parse the oracle reply defensively and repair hallucinated words by
//     substituting a random available one; a bad reply never fails the turn.
//   - Attach a difficulty-tiered rationale to the chosen word.

package opponent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/promptduel/go-server/internal/game"
)

// Oracle is the external "suggest next word" capability.
// The reply is free-form text, possibly containing a JSON object.
type Oracle interface {
	SuggestWord(ctx context.Context, prompt, model, systemPrompt string) (string, error)
}

const (
	defaultDelayMin = 2 * time.Second
	defaultDelayMax = 5 * time.Second
)

// Engine selects the opponent's words.
type Engine struct {
	oracle   Oracle
	rng      *rand.Rand
	delayMin time.Duration
	delayMax time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithDelay overrides the thinking-delay range. Zero max disables the delay.
func WithDelay(min, max time.Duration) Option {
	return func(e *Engine) { e.delayMin, e.delayMax = min, max }
}

// WithRand injects a seedable random source for deterministic tests.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// New constructs an Engine with the default 2–5s thinking delay.
func New(oracle Oracle, opts ...Option) *Engine {
	e := &Engine{
		oracle:   oracle,
		delayMin: defaultDelayMin,
		delayMax: defaultDelayMax,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return e
}

// SelectWord chooses the opponent's next word for the given state snapshot.
// Returns game.ErrSkipTurn when the opponent is at its cap and game.ErrNoWords
// when the bank is exhausted; any other error is an oracle failure.
func (e *Engine) SelectWord(ctx context.Context, st game.State) (game.Selection, error) {
	if len(st.AIWords) >= st.MaxWordsPerSide {
		return game.Selection{}, game.ErrSkipTurn
	}

	available := st.AvailableWords()
	if len(available) == 0 {
		return game.Selection{}, game.ErrNoWords
	}

	instruction := buildInstruction(st, available)

	if err := e.think(ctx); err != nil {
		return game.Selection{}, err
	}

	reply, err := e.oracle.SuggestWord(ctx, instruction, st.Model, st.SystemPrompt)
	if err != nil {
		return game.Selection{}, fmt.Errorf("suggest word: %w", err)
	}
	if strings.TrimSpace(reply) == "" {
		return game.Selection{}, errors.New("empty reply from oracle")
	}

	word := parseReply(reply)
	if !contains(available, word) {
		word = available[e.rng.Intn(len(available))]
	}

	return game.Selection{
		Word:    word,
		Thought: e.rationale(word, st),
	}, nil
}

// think sleeps for a random duration in [delayMin, delayMax], honoring ctx.
func (e *Engine) think(ctx context.Context) error {
	if e.delayMax <= 0 {
		return nil
	}
	d := e.delayMin
	if spread := e.delayMax - e.delayMin; spread > 0 {
		d += time.Duration(e.rng.Int63n(int64(spread)))
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// buildInstruction embeds the topic, the opponent's prompt so far, and the
// available words into a request for exactly one word plus a short rationale
// in a structured reply.
func buildInstruction(st game.State, available []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n\n", st.Topic)
	fmt.Fprintf(&b, "You are building a prompt about %q.\n", st.Topic)
	fmt.Fprintf(&b, "Your current prompt so far: %q\n\n", st.AIPrompt)
	fmt.Fprintf(&b, "Available words to choose from: %s\n\n", strings.Join(available, ", "))
	b.WriteString("Select ONE word from the available words that would best extend your prompt.\n")
	b.WriteString("Also provide a brief explanation (1-2 sentences) of why you chose this word.\n\n")
	b.WriteString("Respond in JSON format:\n")
	b.WriteString("{\n  \"selectedWord\": \"word\",\n  \"explanation\": \"Your explanation here\"\n}\n")
	return b.String()
}

// suggestion is the shape of a well-formed oracle reply.
type suggestion struct {
	SelectedWord string `json:"selectedWord"`
	Explanation  string `json:"explanation"`
}

// parseReply extracts the selected word from the oracle reply: first by
// decoding the outermost JSON object, then by falling back to the first
// whitespace-delimited token of the raw text.
func parseReply(reply string) string {
	if raw, ok := extractJSON(reply); ok {
		var s suggestion
		if err := json.Unmarshal([]byte(raw), &s); err == nil && s.SelectedWord != "" {
			return s.SelectedWord
		}
	}
	return strings.Fields(reply)[0]
}

// extractJSON returns the substring from the first '{' to the last '}'.
func extractJSON(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func contains(list []string, w string) bool {
	for _, x := range list {
		if x == w {
			return true
		}
	}
	return false
}

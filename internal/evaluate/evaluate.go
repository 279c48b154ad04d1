// internal/evaluate/evaluate.go
//
// Prompt evaluation engine.
// Primary path: ask the oracle for a {score, feedback} JSON verdict and
// parse it defensively; a malformed reply degrades to a neutral result
// rather than an error. Transport failures propagate to the caller.
//
// Fallback path: a pure, fully deterministic scorer usable standalone
// (offline/test mode). No randomness anywhere in the numeric computation.

package evaluate

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/promptduel/go-server/internal/game"
	"github.com/promptduel/go-server/internal/wordbank"
)

// Oracle is the external "evaluate prompt" capability.
type Oracle interface {
	EvaluatePrompt(ctx context.Context, prompt, model, systemPrompt string) (string, error)
}

// neutral is returned when the oracle reply cannot be parsed.
var neutral = game.Evaluation{
	Score:    50,
	Feedback: "Could not parse evaluation. The prompt appears to be of average quality.",
}

// Engine scores finished prompts through an oracle.
type Engine struct {
	oracle Oracle
}

// New constructs an evaluation Engine.
func New(oracle Oracle) *Engine {
	return &Engine{oracle: oracle}
}

// Evaluate asks the oracle to score the prompt. A reply that cannot be
// parsed yields the neutral result; a transport error is returned as-is.
func (e *Engine) Evaluate(ctx context.Context, prompt, model, systemPrompt string) (game.Evaluation, error) {
	reply, err := e.oracle.EvaluatePrompt(ctx, buildInstruction(prompt, systemPrompt), model, systemPrompt)
	if err != nil {
		return game.Evaluation{}, fmt.Errorf("evaluate prompt: %w", err)
	}

	raw, ok := extractJSON(reply)
	if !ok {
		return neutral, nil
	}
	var ev game.Evaluation
	if err := json.Unmarshal([]byte(raw), &ev); err != nil || ev.Score == 0 {
		return neutral, nil
	}
	return ev, nil
}

// buildInstruction frames the grading request around the prompt under test.
func buildInstruction(prompt, systemPrompt string) string {
	cat := wordbank.CategoryFromSystemPrompt(systemPrompt)
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n\n", cat.Label())
	b.WriteString("You are an expert prompt engineer evaluating the quality of a collaboratively built prompt.\n")
	b.WriteString("The prompt was built word-by-word, with players taking turns to add one word at a time.\n\n")
	b.WriteString("Evaluate the following prompt on a scale of 1-100 based on these criteria:\n")
	b.WriteString("1. Relevance to the topic (0-25 points)\n")
	b.WriteString("2. Coherence and grammatical correctness (0-25 points)\n")
	b.WriteString("3. Clarity and specificity (0-25 points)\n")
	b.WriteString("4. Effectiveness for the intended purpose (0-25 points)\n\n")
	fmt.Fprintf(&b, "Prompt to evaluate: %q\n\n", prompt)
	b.WriteString("Provide your evaluation in JSON format:\n")
	b.WriteString("{\n  \"score\": [1-100],\n  \"feedback\": \"Your specific, constructive feedback here explaining the strengths and weaknesses\"\n}\n")
	return b.String()
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

// Fallback deterministically scores a prompt without any oracle.
//
// Scoring policy:
//   - base 70, adjusted by word count (<5: −20, <8: −10, >20: −15, >15: −5,
//     else +10)
//   - coherence = round(20 · uniqueWords/totalWords)
//   - relevance = round(20 · relevantWords/totalWords), where a word is
//     relevant if it contains (case-insensitive substring) any keyword of
//     the topic category
//   - final = clamp(base + coherence + relevance, 50, 98)
func Fallback(prompt, systemPrompt string) game.Evaluation {
	cat := wordbank.CategoryFromSystemPrompt(systemPrompt)

	words := strings.Fields(prompt)
	wordCount := len(words)
	if wordCount == 0 {
		return game.Evaluation{
			Score:    50,
			Feedback: fmt.Sprintf("Your prompt is empty. Add words from the bank to build a %s.", cat.Label()),
		}
	}

	base := 70
	switch {
	case wordCount < 5:
		base -= 20
	case wordCount < 8:
		base -= 10
	case wordCount > 20:
		base -= 15
	case wordCount > 15:
		base -= 5
	default:
		base += 10
	}

	unique := make(map[string]struct{}, wordCount)
	for _, w := range words {
		unique[w] = struct{}{}
	}
	coherence := int(math.Round(20 * float64(len(unique)) / float64(wordCount)))

	topicWords := cat.ContentWords()
	relevant := 0
	for _, w := range words {
		lw := strings.ToLower(w)
		for _, tw := range topicWords {
			if strings.Contains(lw, strings.ToLower(tw)) {
				relevant++
				break
			}
		}
	}
	relevance := int(math.Round(20 * float64(relevant) / float64(wordCount)))

	score := base + coherence + relevance
	if score < 50 {
		score = 50
	}
	if score > 98 {
		score = 98
	}

	return game.Evaluation{
		Score:    score,
		Feedback: fallbackFeedback(score, wordCount, coherence, relevance, cat),
	}
}

// fallbackFeedback picks the score-band template referencing word count and
// topic category.
func fallbackFeedback(score, wordCount, coherence, relevance int, cat wordbank.Category) string {
	label := cat.Label()
	prefix := fmt.Sprintf("Your prompt contains %d words and has ", wordCount)
	switch {
	case score >= 90:
		return prefix + fmt.Sprintf("excellent coherence and relevance to the topic. It's concise, clear, and effectively addresses the %s.", label)
	case score >= 80:
		focus := "topic focus"
		if coherence < 15 {
			focus = "word variety"
		}
		return prefix + fmt.Sprintf("good coherence and relevance. It addresses the %s well, with room for minor improvements in %s.", label, focus)
	case score >= 70:
		advice := "better word choice"
		if wordCount < 8 {
			advice = "more detail"
		} else if wordCount > 15 {
			advice = "more conciseness"
		}
		return prefix + fmt.Sprintf("decent coherence and relevance. It's a satisfactory %s, but could be improved with %s.", label, advice)
	default:
		hint := "better structure"
		if relevance < 10 {
			hint = "more topic-specific language"
		}
		return prefix + fmt.Sprintf("room for improvement in both coherence and topic relevance. Consider revising to better address the %s with %s.", label, hint)
	}
}

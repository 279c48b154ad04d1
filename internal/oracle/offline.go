// internal/oracle/offline.go
//
// Offline oracle: no network, answers from the topic category word sets.
// Word suggestions follow a light part-of-speech heuristic over the last
// word of the current prompt; evaluations marshal the deterministic
// fallback scorer's verdict. Used in dev/test mode and as the backend of
// last resort when no API key is configured.

package oracle

import (
	"context"
	"encoding/json"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/promptduel/go-server/internal/evaluate"
	"github.com/promptduel/go-server/internal/wordbank"
)

// Offline is a deterministic-ish oracle for running without any provider.
type Offline struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewOffline constructs an offline oracle. Pass a seeded rng for
// reproducible suggestions; nil uses a time-seeded source.
func NewOffline(rng *rand.Rand) *Offline {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Offline{rng: rng}
}

// SuggestWord returns a contextually plausible next word for the prompt
// embedded in the instruction. The reply is a bare word; callers fall back
// to first-token parsing.
func (o *Offline) SuggestWord(_ context.Context, prompt, _, systemPrompt string) (string, error) {
	cat := wordbank.CategoryFromSystemPrompt(systemPrompt)
	current := currentPromptFrom(prompt)

	o.mu.Lock()
	defer o.mu.Unlock()
	list := o.wordList(current, cat)
	return list[o.rng.Intn(len(list))], nil
}

// EvaluatePrompt scores the prompt deterministically and returns the verdict
// as the JSON object a well-behaved provider would produce.
func (o *Offline) EvaluatePrompt(_ context.Context, prompt, _, systemPrompt string) (string, error) {
	ev := evaluate.Fallback(promptUnderTest(prompt), systemPrompt)
	out, err := json.Marshal(ev)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

var (
	currentPromptRe = regexp.MustCompile(`Your current prompt so far: "([^"]*)"`)
	underTestRe     = regexp.MustCompile(`Prompt to evaluate: "([^"]*)"`)
)

// currentPromptFrom digs the partial prompt out of the instruction text.
func currentPromptFrom(instruction string) string {
	if m := currentPromptRe.FindStringSubmatch(instruction); m != nil {
		return m[1]
	}
	return ""
}

// promptUnderTest digs the finished prompt out of the grading instruction.
func promptUnderTest(instruction string) string {
	if m := underTestRe.FindStringSubmatch(instruction); m != nil {
		return m[1]
	}
	return instruction
}

// wordList picks the category word list whose part of speech plausibly
// follows the last word of the current prompt.
func (o *Offline) wordList(current string, cat wordbank.Category) []string {
	words := strings.Fields(current)
	last := ""
	if len(words) > 0 {
		last = strings.ToLower(words[len(words)-1])
	}

	switch {
	case matchAny(last, "a", "an", "the", "this", "that", "these", "those", "my", "your", "our", "their"):
		return cat.Adjectives
	case matchAny(last, "is", "are", "was", "were", "be", "been", "being", "seem", "appear", "become", "feels"):
		return cat.Adjectives
	case matchAny(last, "very", "quite", "extremely", "somewhat", "rather", "fairly", "too", "so", "really"):
		return cat.Adjectives
	case matchAny(last, "and", "or", "but", "yet", "so", "for", "nor"):
		if o.rng.Float64() > 0.5 {
			return cat.Nouns
		}
		return cat.Adjectives
	case matchAny(last, "in", "on", "at", "by", "with", "from", "to", "for", "about", "through", "over", "under", "between"):
		return cat.Nouns
	case matchAny(last, "can", "could", "will", "would", "shall", "should", "may", "might", "must"):
		return cat.Verbs
	case len(words) > 3 && len(words)%3 == 0:
		return cat.Connectors
	case strings.HasSuffix(last, "ly"):
		return cat.Verbs
	case matchAny(last, "he", "she", "it", "they", "we", "you", "i"):
		return cat.Verbs
	default:
		r := o.rng.Float64()
		switch {
		case r < 0.3:
			return cat.Nouns
		case r < 0.6:
			return cat.Adjectives
		case r < 0.8:
			return cat.Verbs
		default:
			return cat.Connectors
		}
	}
}

func matchAny(s string, opts ...string) bool {
	for _, o := range opts {
		if s == o {
			return true
		}
	}
	return false
}

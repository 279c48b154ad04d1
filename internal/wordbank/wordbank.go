// internal/wordbank/wordbank.go
//
// Word bank generation for the Prompt Duel game.
//
// Responsibilities:
//   - Build the shared pool of candidate words for a topic: fixed function
//     words, adjectives, nouns, and verbs, plus a small topic-keyword set
//     chosen by substring match on the topic label.
//   - Shuffle and truncate to a fixed bank size (30).
//
// Constraints:
//   • Generation always succeeds; an empty topic falls back to the generic
//     default label.
//   • Each call yields a fresh shuffle; entries start unused.

package wordbank

import (
	"math/rand"
	"strings"
	"time"

	"github.com/promptduel/go-server/internal/game"
)

// Size is the fixed number of entries in a generated bank.
const Size = 30

// DefaultTopic is used when no topic label is supplied.
const DefaultTopic = "Product Description"

var functionWords = []string{
	"the", "a", "an", "and", "or", "but", "with", "for", "in", "on",
	"to", "from", "by", "at", "of", "about", "that", "which", "who", "when",
}

var adjectiveWords = []string{
	"innovative", "powerful", "efficient", "intuitive", "seamless", "advanced",
	"user-friendly", "reliable", "modern", "smart", "effective", "premium",
	"affordable", "sustainable", "cutting-edge", "revolutionary", "elegant", "robust",
}

var nounWords = []string{
	"product", "solution", "tool", "device", "application", "software", "system",
	"platform", "service", "technology", "experience", "design", "feature", "benefit",
	"quality", "performance", "value", "innovation", "customer", "user",
}

var verbWords = []string{
	"transforms", "enhances", "streamlines", "simplifies", "accelerates", "optimizes",
	"revolutionizes", "improves", "delivers", "provides", "offers", "enables",
	"empowers", "helps", "supports", "creates", "builds", "develops",
}

// topicKeywords returns extra bank words for recognized topic labels.
func topicKeywords(topic string) []string {
	t := strings.ToLower(topic)
	switch {
	case strings.Contains(t, "product"):
		return []string{"features", "benefits", "design", "usability", "functionality", "interface"}
	case strings.Contains(t, "marketing"):
		return []string{"campaign", "audience", "strategy", "engagement", "conversion", "brand"}
	case strings.Contains(t, "content"), strings.Contains(t, "story"):
		return []string{"article", "blog", "story", "narrative", "message", "information"}
	default:
		return nil
	}
}

// Generate builds a fresh, shuffled bank of Size entries for the topic.
// Pass a seeded rng for deterministic tests; nil uses a time-seeded source.
func Generate(topic string, rng *rand.Rand) []game.BankEntry {
	if topic == "" {
		topic = DefaultTopic
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	all := make([]string, 0, len(functionWords)+len(adjectiveWords)+len(nounWords)+len(verbWords)+6)
	all = append(all, functionWords...)
	all = append(all, adjectiveWords...)
	all = append(all, nounWords...)
	all = append(all, verbWords...)
	all = append(all, topicKeywords(topic)...)

	rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })

	n := Size
	if len(all) < n {
		n = len(all)
	}
	bank := make([]game.BankEntry, n)
	for i := 0; i < n; i++ {
		bank[i] = game.BankEntry{Text: all[i]}
	}
	return bank
}

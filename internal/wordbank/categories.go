// internal/wordbank/categories.go
//
// Topic category word sets shared by the deterministic evaluation fallback
// and the offline oracle. A category is resolved from the system prompt text
// by substring match, never from user input directly.

package wordbank

import "strings"

// Category groups topic-relevant words by part of speech.
type Category struct {
	Key        string
	Nouns      []string
	Adjectives []string
	Verbs      []string
	Connectors []string
}

// Label renders the category key as a human-readable phrase.
func (c Category) Label() string {
	return strings.ReplaceAll(c.Key, "-", " ")
}

// ContentWords returns the nouns, adjectives, and verbs of the category,
// i.e. the words that count toward topic relevance.
func (c Category) ContentWords() []string {
	out := make([]string, 0, len(c.Nouns)+len(c.Adjectives)+len(c.Verbs))
	out = append(out, c.Nouns...)
	out = append(out, c.Adjectives...)
	out = append(out, c.Verbs...)
	return out
}

var productDescription = Category{
	Key:        "product-description",
	Nouns:      []string{"product", "solution", "tool", "device", "application", "software", "system", "platform", "service"},
	Adjectives: []string{"innovative", "powerful", "efficient", "intuitive", "seamless", "advanced", "user-friendly", "reliable"},
	Verbs:      []string{"transforms", "enhances", "streamlines", "simplifies", "accelerates", "optimizes", "revolutionizes"},
	Connectors: []string{"that", "which", "and", "while", "by", "through", "using", "with", "for"},
}

var storyPrompt = Category{
	Key:        "story-prompt",
	Nouns:      []string{"adventure", "journey", "character", "world", "mystery", "conflict", "hero", "villain", "setting"},
	Adjectives: []string{"mysterious", "ancient", "magical", "futuristic", "dystopian", "enchanted", "forgotten", "hidden"},
	Verbs:      []string{"discovers", "encounters", "reveals", "transforms", "battles", "navigates", "explores", "overcomes"},
	Connectors: []string{"who", "where", "when", "while", "despite", "through", "beyond", "within", "against"},
}

var question = Category{
	Key:        "question",
	Nouns:      []string{"concept", "theory", "event", "phenomenon", "relationship", "factor", "principle", "mechanism"},
	Adjectives: []string{"significant", "historical", "scientific", "philosophical", "cultural", "ethical", "political"},
	Verbs:      []string{"influenced", "affected", "changed", "developed", "evolved", "contributed", "impacted"},
	Connectors: []string{"how", "why", "what", "when", "where", "which", "whose", "whom", "that"},
}

// Categories lists every known topic category.
var Categories = []Category{productDescription, storyPrompt, question}

// CategoryFromSystemPrompt resolves the category that a system prompt is
// about. Unknown prompts default to product-description.
func CategoryFromSystemPrompt(systemPrompt string) Category {
	sp := strings.ToLower(systemPrompt)
	switch {
	case strings.Contains(sp, "product description"):
		return productDescription
	case strings.Contains(sp, "story"), strings.Contains(sp, "narrative"):
		return storyPrompt
	case strings.Contains(sp, "question"):
		return question
	default:
		return productDescription
	}
}

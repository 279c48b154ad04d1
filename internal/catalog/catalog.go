// internal/catalog/catalog.go
//
// Static prompt catalog: topic/difficulty → system instructions.
// Twelve entries across four topics (product description, short story,
// code generation, marketing copy) and three tiers.

package catalog

import (
	"strings"

	"github.com/promptduel/go-server/internal/game"
)

const (
	easySystem     = "You are playing a game to build an optimal prompt for %s. On your turn, choose one word that you think will help create a clear and relevant prompt. Please send only one word along with a brief explanation (one sentence) of why it fits."
	standardSystem = "You are participating in a game where you and your opponent take turns building a prompt for %s. Now, analyze the current state of the prompt (all the words chosen so far) and select the next word that logically complements it and brings it closer to the goal. Please provide your word along with an explanation (1-2 sentences) of how it improves the prompt."
	expertSystem   = "You are an expert AI playing a game to create highly optimized prompts for %s. Analyze the entire context: consider all previously chosen words, potential moves from your opponent, and the final objective of the prompt. Choose the next word that strategically influences the future development of the prompt and helps form the most relevant final prompt. Please send your word along with a detailed explanation (2-3 sentences) of why it is the optimal choice, including its potential benefits and any risks."
)

func sys(template, goal string) string {
	return strings.Replace(template, "%s", goal, 1)
}

// Prompts is the full catalog, in display order.
var Prompts = []game.Prompt{
	{
		ID:           "product-description-easy",
		Difficulty:   game.TierEasy,
		Title:        "Product Description (Easy)",
		Description:  "Build a prompt to generate a compelling product description",
		SystemPrompt: sys(easySystem, "generating a product description"),
	},
	{
		ID:           "product-description-standard",
		Difficulty:   game.TierStandard,
		Title:        "Product Description (Standard)",
		Description:  "Create a strategic prompt for an effective product description",
		SystemPrompt: sys(standardSystem, "generating a product description"),
	},
	{
		ID:           "product-description-expert",
		Difficulty:   game.TierExpert,
		Title:        "Product Description (Expert)",
		Description:  "Craft an advanced prompt for a sophisticated product description",
		SystemPrompt: sys(expertSystem, "generating a product description"),
	},
	{
		ID:           "story-easy",
		Difficulty:   game.TierEasy,
		Title:        "Short Story (Easy)",
		Description:  "Build a prompt to generate an engaging short story",
		SystemPrompt: sys(easySystem, "creating a short story"),
	},
	{
		ID:           "story-standard",
		Difficulty:   game.TierStandard,
		Title:        "Short Story (Standard)",
		Description:  "Create a strategic prompt for an effective short story",
		SystemPrompt: sys(standardSystem, "creating a short story"),
	},
	{
		ID:           "story-expert",
		Difficulty:   game.TierExpert,
		Title:        "Short Story (Expert)",
		Description:  "Craft an advanced prompt for a sophisticated short story",
		SystemPrompt: sys(expertSystem, "creating a short story"),
	},
	{
		ID:           "code-easy",
		Difficulty:   game.TierEasy,
		Title:        "Code Generation (Easy)",
		Description:  "Build a prompt to generate useful code",
		SystemPrompt: sys(easySystem, "generating code"),
	},
	{
		ID:           "code-standard",
		Difficulty:   game.TierStandard,
		Title:        "Code Generation (Standard)",
		Description:  "Create a strategic prompt for effective code generation",
		SystemPrompt: sys(standardSystem, "generating code"),
	},
	{
		ID:           "code-expert",
		Difficulty:   game.TierExpert,
		Title:        "Code Generation (Expert)",
		Description:  "Craft an advanced prompt for sophisticated code generation",
		SystemPrompt: sys(expertSystem, "generating code"),
	},
	{
		ID:           "marketing-easy",
		Difficulty:   game.TierEasy,
		Title:        "Marketing Copy (Easy)",
		Description:  "Build a prompt to generate effective marketing copy",
		SystemPrompt: sys(easySystem, "creating marketing copy"),
	},
	{
		ID:           "marketing-standard",
		Difficulty:   game.TierStandard,
		Title:        "Marketing Copy (Standard)",
		Description:  "Create a strategic prompt for compelling marketing copy",
		SystemPrompt: sys(standardSystem, "creating marketing copy"),
	},
	{
		ID:           "marketing-expert",
		Difficulty:   game.TierExpert,
		Title:        "Marketing Copy (Expert)",
		Description:  "Craft an advanced prompt for sophisticated marketing copy",
		SystemPrompt: sys(expertSystem, "creating marketing copy"),
	},
}

// Table is the catalog lookup used by the Orchestrator.
type Table struct{}

// Find returns the catalog entry with the given id.
func (Table) Find(id string) (game.Prompt, bool) {
	for _, p := range Prompts {
		if p.ID == id {
			return p, true
		}
	}
	return game.Prompt{}, false
}

// Default returns the tier's default entry: the product-description prompt
// for that difficulty, or the first catalog entry as a last resort.
func (Table) Default(tier game.Tier) game.Prompt {
	for _, p := range Prompts {
		if p.Difficulty == tier && strings.Contains(p.ID, "product-description") {
			return p
		}
	}
	return Prompts[0]
}

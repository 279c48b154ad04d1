package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptduel/go-server/internal/game"
)

func TestCatalogCoversAllTiers(t *testing.T) {
	require.Len(t, Prompts, 12)

	seen := make(map[string]bool, len(Prompts))
	perTier := make(map[game.Tier]int)
	for _, p := range Prompts {
		assert.False(t, seen[p.ID], "duplicate id %q", p.ID)
		seen[p.ID] = true
		perTier[p.Difficulty]++
		assert.NotEmpty(t, p.Title)
		assert.NotEmpty(t, p.Description)
		assert.NotEmpty(t, p.SystemPrompt)
	}
	assert.Equal(t, 4, perTier[game.TierEasy])
	assert.Equal(t, 4, perTier[game.TierStandard])
	assert.Equal(t, 4, perTier[game.TierExpert])
}

func TestFind(t *testing.T) {
	p, ok := Table{}.Find("story-expert")
	require.True(t, ok)
	assert.Equal(t, game.TierExpert, p.Difficulty)
	assert.Equal(t, "Short Story (Expert)", p.Title)

	_, ok = Table{}.Find("nonexistent")
	assert.False(t, ok)
}

func TestDefaultPrefersProductDescription(t *testing.T) {
	for _, tier := range []game.Tier{game.TierEasy, game.TierStandard, game.TierExpert} {
		p := Table{}.Default(tier)
		assert.Equal(t, tier, p.Difficulty)
		assert.Equal(t, "product-description-"+string(tier), p.ID)
	}
}

func TestSystemPromptsMentionTheGoal(t *testing.T) {
	p, ok := Table{}.Find("marketing-standard")
	require.True(t, ok)
	assert.Contains(t, p.SystemPrompt, "marketing")

	p, ok = Table{}.Find("code-easy")
	require.True(t, ok)
	assert.Contains(t, p.SystemPrompt, "code")
}

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptduel/go-server/internal/game"
)

func seedResults(t *testing.T, s Store) {
	t.Helper()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := []game.Result{
		{UserID: "alice", Prompt: "innovative product", Score: 91, Difficulty: game.TierStandard, Model: "openai/gpt-3.5-turbo", WordCount: 2, CreatedAt: base},
		{UserID: "bob", Prompt: "powerful tool", Score: 78, Difficulty: game.TierEasy, Model: "meta-llama/llama-3-8b-instruct", WordCount: 2, CreatedAt: base.Add(time.Minute)},
		{UserID: "alice", Prompt: "seamless platform", Score: 84, Difficulty: game.TierStandard, Model: "openai/gpt-3.5-turbo", WordCount: 2, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, r := range rows {
		require.NoError(t, s.SaveResult(context.Background(), r))
	}
}

func TestMemoryLeaderboardOrdering(t *testing.T) {
	s := NewMemoryStore()
	seedResults(t, s)

	rows, err := s.Leaderboard(context.Background(), LeaderboardQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 91, rows[0].Score)
	assert.Equal(t, 84, rows[1].Score)
	assert.Equal(t, 78, rows[2].Score)
}

func TestMemoryLeaderboardFilters(t *testing.T) {
	s := NewMemoryStore()
	seedResults(t, s)

	rows, err := s.Leaderboard(context.Background(), LeaderboardQuery{Difficulty: "easy"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "bob", rows[0].UserID)

	rows, err = s.Leaderboard(context.Background(), LeaderboardQuery{Model: "openai/gpt-3.5-turbo"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = s.Leaderboard(context.Background(), LeaderboardQuery{Limit: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 91, rows[0].Score)
}

func TestMemoryRecentGames(t *testing.T) {
	s := NewMemoryStore()
	seedResults(t, s)

	rows, err := s.RecentGames(context.Background(), "alice", 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "seamless platform", rows[0].Prompt, "newest first")
	assert.Equal(t, "innovative product", rows[1].Prompt)

	rows, err = s.RecentGames(context.Background(), "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

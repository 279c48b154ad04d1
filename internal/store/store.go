// internal/store/store.go
//
// Persistence interface for completed-game records.
// Implementations may be backed by memory (dev/tests), SQLite (default),
// or Supabase (hosted).

package store

import (
	"context"

	"github.com/promptduel/go-server/internal/game"
)

// LeaderboardQuery filters and bounds a leaderboard lookup.
type LeaderboardQuery struct {
	Limit      int    // default 10
	Difficulty string // optional tier filter
	Model      string // optional model filter
}

// LeaderboardEntry is one row of the score leaderboard.
type LeaderboardEntry struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	Username   string `json:"username,omitempty"`
	Score      int    `json:"score"`
	Difficulty string `json:"gameMode"`
	Model      string `json:"model"`
	CreatedAt  string `json:"createdAt"`
}

// Store persists completed games and answers score queries.
type Store interface {
	// SaveResult records a finished game.
	SaveResult(ctx context.Context, r game.Result) error

	// Leaderboard returns the top results by score descending.
	Leaderboard(ctx context.Context, q LeaderboardQuery) ([]LeaderboardEntry, error)

	// RecentGames returns a user's games, newest first.
	RecentGames(ctx context.Context, userID string, limit int) ([]game.Result, error)
}

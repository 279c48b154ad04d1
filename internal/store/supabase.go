// internal/store/supabase.go
//
// Supabase implementation of the Store interface over a hosted "games"
// table. Filtering happens server-side via PostgREST; ordering for the
// leaderboard is applied client-side to keep the query surface small.

package store

import (
	"context"
	"sort"
	"time"

	supa "github.com/supabase-community/supabase-go"

	"github.com/promptduel/go-server/internal/game"
)

const gamesTable = "games"

// supabaseRow matches the hosted games table shape.
type supabaseRow struct {
	ID        string `json:"id,omitempty"`
	UserID    string `json:"user_id"`
	Prompt    string `json:"prompt"`
	Score     int    `json:"score"`
	GameMode  string `json:"game_mode"`
	Model     string `json:"model"`
	WordCount int    `json:"word_count"`
	CreatedAt string `json:"created_at"`
}

// Supabase persists results in a hosted Supabase project.
type Supabase struct {
	client *supa.Client
}

// NewSupabase connects to the project at url with the given service key.
func NewSupabase(url, key string) (*Supabase, error) {
	client, err := supa.NewClient(url, key, nil)
	if err != nil {
		return nil, err
	}
	return &Supabase{client: client}, nil
}

// SaveResult inserts a finished game row.
func (s *Supabase) SaveResult(_ context.Context, r game.Result) error {
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	row := supabaseRow{
		UserID:    r.UserID,
		Prompt:    r.Prompt,
		Score:     r.Score,
		GameMode:  string(r.Difficulty),
		Model:     r.Model,
		WordCount: r.WordCount,
		CreatedAt: created.UTC().Format(time.RFC3339),
	}
	var inserted []supabaseRow
	_, err := s.client.From(gamesTable).Insert(row, false, "", "", "").ExecuteTo(&inserted)
	return err
}

// Leaderboard fetches matching rows and ranks them by score descending.
func (s *Supabase) Leaderboard(_ context.Context, q LeaderboardQuery) ([]LeaderboardEntry, error) {
	if q.Limit <= 0 {
		q.Limit = 10
	}
	builder := s.client.From(gamesTable).Select("*", "exact", false)
	if q.Difficulty != "" {
		builder = builder.Eq("game_mode", q.Difficulty)
	}
	if q.Model != "" {
		builder = builder.Eq("model", q.Model)
	}
	var rows []supabaseRow
	if _, err := builder.ExecuteTo(&rows); err != nil {
		return nil, err
	}

	out := make([]LeaderboardEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, LeaderboardEntry{
			ID:         r.ID,
			UserID:     r.UserID,
			Score:      r.Score,
			Difficulty: r.GameMode,
			Model:      r.Model,
			CreatedAt:  r.CreatedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// RecentGames fetches a user's rows and sorts them newest first.
func (s *Supabase) RecentGames(_ context.Context, userID string, limit int) ([]game.Result, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []supabaseRow
	_, err := s.client.From(gamesTable).
		Select("*", "exact", false).
		Eq("user_id", userID).
		ExecuteTo(&rows)
	if err != nil {
		return nil, err
	}

	out := make([]game.Result, 0, len(rows))
	for _, r := range rows {
		created, _ := time.Parse(time.RFC3339, r.CreatedAt)
		out = append(out, game.Result{
			ID:         r.ID,
			UserID:     r.UserID,
			Prompt:     r.Prompt,
			Score:      r.Score,
			Difficulty: game.Tier(r.GameMode),
			Model:      r.Model,
			WordCount:  r.WordCount,
			CreatedAt:  created,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

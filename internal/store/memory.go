// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Used for ephemeral sessions, primarily in development/testing, or when
// durability is not required.
//
// Characteristics:
//   - Appends game.Result values to a slice; ids are assigned sequentially.
//   - Concurrency-safe via RWMutex.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/promptduel/go-server/internal/game"
)

// memory is a slice-backed Store implementation.
type memory struct {
	mu      sync.RWMutex
	results []game.Result
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{}
}

// SaveResult appends the record, assigning a sequential id.
func (m *memory) SaveResult(_ context.Context, r game.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = "game-" + strconv.Itoa(len(m.results)+1)
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	m.results = append(m.results, r)
	return nil
}

// Leaderboard filters, sorts by score descending, and truncates.
func (m *memory) Leaderboard(_ context.Context, q LeaderboardQuery) ([]LeaderboardEntry, error) {
	if q.Limit <= 0 {
		q.Limit = 10
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := make([]LeaderboardEntry, 0, len(m.results))
	for _, r := range m.results {
		if q.Difficulty != "" && string(r.Difficulty) != q.Difficulty {
			continue
		}
		if q.Model != "" && r.Model != q.Model {
			continue
		}
		rows = append(rows, LeaderboardEntry{
			ID:         r.ID,
			UserID:     r.UserID,
			Score:      r.Score,
			Difficulty: string(r.Difficulty),
			Model:      r.Model,
			CreatedAt:  r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Score > rows[j].Score })
	if len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows, nil
}

// RecentGames returns the user's results, newest first.
func (m *memory) RecentGames(_ context.Context, userID string, limit int) ([]game.Result, error) {
	if limit <= 0 {
		limit = 10
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]game.Result, 0, limit)
	for _, r := range m.results {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

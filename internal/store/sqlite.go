// internal/store/sqlite.go
//
// SQLite implementation of the Store interface over the game_results table.
// The leaderboard query joins users for display names; guests have none.

package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/promptduel/go-server/internal/game"
)

// SQLite persists results in the server database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite constructs a SQLite-backed Store.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

// SaveResult inserts a finished game row.
func (s *SQLite) SaveResult(ctx context.Context, r game.Result) error {
	id := r.ID
	if id == "" {
		id = randomID()
	}
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO game_results (id, user_id, prompt, score, game_mode, model, word_count, created_at)
        VALUES (?,?,?,?,?,?,?,?)`,
		id, r.UserID, r.Prompt, r.Score, string(r.Difficulty), r.Model, r.WordCount,
		created.UTC().Format(time.RFC3339),
	)
	return err
}

// Leaderboard returns the top rows by score descending, then recency.
func (s *SQLite) Leaderboard(ctx context.Context, q LeaderboardQuery) ([]LeaderboardEntry, error) {
	if q.Limit <= 0 {
		q.Limit = 10
	}
	query := `
        SELECT r.id, r.user_id, COALESCE(u.username, ''), r.score, r.game_mode, r.model, r.created_at
        FROM game_results r
        LEFT JOIN users u ON u.id = r.user_id
        WHERE (?='' OR r.game_mode=?) AND (?='' OR r.model=?)
        ORDER BY r.score DESC, r.created_at DESC
        LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, q.Difficulty, q.Difficulty, q.Model, q.Model, q.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LeaderboardEntry, 0, q.Limit)
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Username, &e.Score, &e.Difficulty, &e.Model, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// RecentGames returns a user's results, newest first.
func (s *SQLite) RecentGames(ctx context.Context, userID string, limit int) ([]game.Result, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, user_id, prompt, score, game_mode, model, word_count, created_at
        FROM game_results
        WHERE user_id=?
        ORDER BY created_at DESC
        LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]game.Result, 0, limit)
	for rows.Next() {
		var r game.Result
		var mode, created string
		if err := rows.Scan(&r.ID, &r.UserID, &r.Prompt, &r.Score, &mode, &r.Model, &r.WordCount, &created); err != nil {
			return nil, err
		}
		r.Difficulty = game.Tier(mode)
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// randomID returns a compact 16-hex-char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

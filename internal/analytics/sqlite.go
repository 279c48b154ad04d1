// internal/analytics/sqlite.go
//
// SQLite sink writing one row per gameplay event into analytics_events.
// Insert failures are logged and dropped; analytics must not disturb play.

package analytics

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/promptduel/go-server/internal/game"
)

// SQLite records gameplay events in the server database.
type SQLite struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSQLite constructs a database-backed tracker.
func NewSQLite(db *sql.DB, log zerolog.Logger) *SQLite {
	return &SQLite{db: db, log: log.With().Str("component", "analytics").Logger()}
}

func (s *SQLite) GameStart(tier game.Tier, model string) {
	s.insert("game_started", map[string]any{
		"difficulty": string(tier),
		"model":      model,
	})
}

func (s *SQLite) GameEnd(tier game.Tier, model string, score, wordCount, durationSec int) {
	s.insert("game_ended", map[string]any{
		"difficulty":   string(tier),
		"model":        model,
		"score":        score,
		"word_count":   wordCount,
		"duration_sec": durationSec,
	})
}

func (s *SQLite) WordAdded(word string, isPlayer bool, promptLength int) {
	s.insert("word_added", map[string]any{
		"word":          word,
		"is_player":     isPlayer,
		"prompt_length": promptLength,
	})
}

func (s *SQLite) Error(err error, context string) {
	s.insert("error", map[string]any{
		"context": context,
		"message": err.Error(),
	})
}

// insert writes one event row. Payload marshalling and the write itself are
// both best-effort.
func (s *SQLite) insert(event string, payload map[string]any) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn().Err(err).Str("event", event).Msg("drop analytics event")
		return
	}
	_, err = s.db.Exec(`
        INSERT INTO analytics_events (event, payload, created_at)
        VALUES (?,?,?)`,
		event, string(body), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		s.log.Warn().Err(err).Str("event", event).Msg("drop analytics event")
	}
}

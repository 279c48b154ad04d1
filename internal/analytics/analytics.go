// internal/analytics/analytics.go
//
// Gameplay analytics sinks. Implementations satisfy game.Tracker and are
// strictly fire-and-forget: a sink must never propagate a failure back into
// the game loop, so every error here is swallowed or logged locally.

package analytics

import (
	"github.com/rs/zerolog"

	"github.com/promptduel/go-server/internal/game"
)

// Log emits gameplay events as structured log lines.
type Log struct {
	log zerolog.Logger
}

// NewLog constructs a log-backed tracker.
func NewLog(log zerolog.Logger) *Log {
	return &Log{log: log.With().Str("component", "analytics").Logger()}
}

func (l *Log) GameStart(tier game.Tier, model string) {
	l.log.Info().
		Str("event", "game_started").
		Str("difficulty", string(tier)).
		Str("model", model).
		Msg("game started")
}

func (l *Log) GameEnd(tier game.Tier, model string, score, wordCount, durationSec int) {
	l.log.Info().
		Str("event", "game_ended").
		Str("difficulty", string(tier)).
		Str("model", model).
		Int("score", score).
		Int("word_count", wordCount).
		Int("duration_sec", durationSec).
		Msg("game ended")
}

func (l *Log) WordAdded(word string, isPlayer bool, promptLength int) {
	l.log.Debug().
		Str("event", "word_added").
		Str("word", word).
		Bool("is_player", isPlayer).
		Int("prompt_length", promptLength).
		Msg("word added")
}

func (l *Log) Error(err error, context string) {
	l.log.Error().
		Str("event", "error").
		Str("context", context).
		Err(err).
		Msg("game error")
}

// Multi fans events out to several trackers in order.
type Multi []game.Tracker

func (m Multi) GameStart(tier game.Tier, model string) {
	for _, t := range m {
		t.GameStart(tier, model)
	}
}

func (m Multi) GameEnd(tier game.Tier, model string, score, wordCount, durationSec int) {
	for _, t := range m {
		t.GameEnd(tier, model, score, wordCount, durationSec)
	}
}

func (m Multi) WordAdded(word string, isPlayer bool, promptLength int) {
	for _, t := range m {
		t.WordAdded(word, isPlayer, promptLength)
	}
}

func (m Multi) Error(err error, context string) {
	for _, t := range m {
		t.Error(err, context)
	}
}

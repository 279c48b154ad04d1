// internal/game/types.go
//
// Core type definitions for the Prompt Duel game engine.
// Defines:
//   - Side: which participant claimed a word (player/ai).
//   - Tier: difficulty level controlling word cap and rationale style.
//   - BankEntry: a candidate word claimable exactly once by either side.
//   - Word: a committed move, with correctness filled in after evaluation.
//   - Thought: the opponent's rationale for its most recent move.
//   - Evaluation: final score + feedback for one side's prompt.
//   - State: the aggregate game state owned by the Orchestrator.

package game

import "time"

// Side identifies which participant claimed a bank entry.
type Side string

const (
	SidePlayer Side = "player"
	SideAI     Side = "ai"
)

// Tier is the difficulty level of a game.
// It controls the per-side word cap and the opponent's rationale style.
type Tier string

const (
	TierEasy     Tier = "easy"
	TierStandard Tier = "standard"
	TierExpert   Tier = "expert"
)

// MaxWords returns the per-side word cap for the tier.
func (t Tier) MaxWords() int {
	switch t {
	case TierEasy:
		return 7
	case TierExpert:
		return 15
	default:
		return 10
	}
}

// ParseTier maps a string to a Tier, defaulting to standard.
func ParseTier(s string) Tier {
	switch Tier(s) {
	case TierEasy, TierStandard, TierExpert:
		return Tier(s)
	default:
		return TierStandard
	}
}

// BankEntry is a candidate word in the shared pool.
// An entry transitions unused → used exactly once; never reused or reverted.
type BankEntry struct {
	Text   string `json:"text"`
	IsUsed bool   `json:"isUsed"`
	UsedBy Side   `json:"usedBy,omitempty"`
}

// Word is a committed move. Correct is nil until the game is evaluated.
type Word struct {
	Text    string `json:"text"`
	Side    Side   `json:"side"`
	Correct *bool  `json:"isCorrect,omitempty"`
}

// Thought is the opponent's rationale for its most recent move.
// Transient: overwritten each opponent turn, cleared on reset.
type Thought struct {
	Word        string `json:"word"`
	Explanation string `json:"explanation"`
}

// Evaluation is the final verdict on one side's prompt.
type Evaluation struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// Prompt is a catalog entry: a topic plus the system instructions that
// frame the duel for a given difficulty.
type Prompt struct {
	ID           string `json:"id"`
	Difficulty   Tier   `json:"difficulty"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	SystemPrompt string `json:"systemPrompt"`
}

// State is the aggregate root for a single game session.
// It is mutated only by the Orchestrator; callers receive copies.
type State struct {
	PlayerWords      []Word      `json:"playerWords"`
	AIWords          []Word      `json:"aiWords"`
	PlayerPrompt     string      `json:"playerPrompt"`
	AIPrompt         string      `json:"aiPrompt"`
	WordBank         []BankEntry `json:"wordBank"`
	IsPlayerTurn     bool        `json:"isPlayerTurn"`
	Difficulty       Tier        `json:"difficulty"`
	Model            string      `json:"selectedModel"`
	IsGameOver       bool        `json:"isGameOver"`
	IsLoading        bool        `json:"isLoading"`
	PlayerEvaluation *Evaluation `json:"playerEvaluation,omitempty"`
	AIEvaluation     *Evaluation `json:"aiEvaluation,omitempty"`
	Err              string      `json:"error,omitempty"`
	StartTime        time.Time   `json:"startTime"`
	PromptID         string      `json:"selectedPromptId"`
	SystemPrompt     string      `json:"systemPrompt"`
	Topic            string      `json:"currentTopic"`
	Thought          *Thought    `json:"aiThought,omitempty"`
	MaxWordsPerSide  int         `json:"maxWordsPerSide"`
}

// AvailableWords lists the texts of all unused bank entries, in bank order.
func (s *State) AvailableWords() []string {
	out := make([]string, 0, len(s.WordBank))
	for _, e := range s.WordBank {
		if !e.IsUsed {
			out = append(out, e.Text)
		}
	}
	return out
}

// clone returns a deep copy suitable for handing to listeners and callers.
func (s *State) clone() State {
	c := *s
	c.PlayerWords = append([]Word(nil), s.PlayerWords...)
	c.AIWords = append([]Word(nil), s.AIWords...)
	c.WordBank = append([]BankEntry(nil), s.WordBank...)
	if s.PlayerEvaluation != nil {
		e := *s.PlayerEvaluation
		c.PlayerEvaluation = &e
	}
	if s.AIEvaluation != nil {
		e := *s.AIEvaluation
		c.AIEvaluation = &e
	}
	if s.Thought != nil {
		t := *s.Thought
		c.Thought = &t
	}
	return c
}

// internal/game/orchestrator.go
//
// Turn state machine for a single Prompt Duel session.
// Responsibilities:
//   - Own the authoritative State and guard it with a mutex.
//   - Apply player moves (claim a bank word) and enforce the bank/cap invariants.
//   - Drive the opponent engine after every committed player move.
//   - Detect the auto-end condition (both sides at cap) and end exactly once.
//   - Evaluate both prompts at game end and persist the outcome when a user
//     identity is present.
//   - Publish state snapshots to subscribed listeners after every transition.
//
// Notes:
//   - Player-rule violations (used word, over-cap claim) only set the error
//     field; the rest of the state is untouched and the player may retry.
//   - Opponent/oracle failures are recovered here: the turn reverts to the
//     player and the loading flag is always cleared.
//   - Game end is fail-open: evaluation failure leaves the game over.

package game

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Sentinel results from collaborators and operations.
var (
	// ErrSkipTurn is returned by a WordSelector when the opponent is already
	// at its word cap; the turn flips back to the player without an oracle call.
	ErrSkipTurn = errors.New("opponent at word cap")

	// ErrNoWords is returned by a WordSelector when the bank is exhausted.
	ErrNoWords = errors.New("no words available in the word bank")

	// ErrWordUsed rejects a claim on an already-used bank entry.
	ErrWordUsed = errors.New("word already used")

	// ErrWordCap rejects a claim when the player is at the word cap.
	ErrWordCap = errors.New("player word cap reached")

	// ErrGameOver rejects moves on a finished game.
	ErrGameOver = errors.New("game is over")

	// ErrBadIndex rejects a claim with an out-of-range bank index.
	ErrBadIndex = errors.New("word index out of range")
)

// Selection is a completed opponent choice: the word plus its rationale.
type Selection struct {
	Word    string
	Thought Thought
}

// WordSelector chooses the opponent's next word for the given state.
// It may return ErrSkipTurn or ErrNoWords as non-fatal signals.
type WordSelector interface {
	SelectWord(ctx context.Context, st State) (Selection, error)
}

// Evaluator scores a finished prompt.
type Evaluator interface {
	Evaluate(ctx context.Context, prompt, model, systemPrompt string) (Evaluation, error)
}

// Result is the completed-game record handed to the persistence collaborator.
type Result struct {
	ID         string    `json:"id,omitempty"`
	UserID     string    `json:"user_id"`
	Prompt     string    `json:"prompt"`
	Score      int       `json:"score"`
	Difficulty Tier      `json:"game_mode"`
	Model      string    `json:"model"`
	WordCount  int       `json:"word_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// ResultWriter persists a completed-game record. Failures are logged by the
// Orchestrator via the Tracker and never affect game-over status.
type ResultWriter interface {
	SaveResult(ctx context.Context, r Result) error
}

// Tracker receives observability events. Implementations must never panic
// back into the Orchestrator; errors are swallowed on their side.
type Tracker interface {
	GameStart(tier Tier, model string)
	GameEnd(tier Tier, model string, score, wordCount, durationSec int)
	WordAdded(word string, isPlayer bool, promptLength int)
	Error(err error, context string)
}

// Catalog resolves prompt ids and per-tier defaults.
type Catalog interface {
	Find(id string) (Prompt, bool)
	Default(tier Tier) Prompt
}

// nopTracker is the default Tracker.
type nopTracker struct{}

func (nopTracker) GameStart(Tier, string)              {}
func (nopTracker) GameEnd(Tier, string, int, int, int) {}
func (nopTracker) WordAdded(string, bool, int)         {}
func (nopTracker) Error(error, string)                 {}

// Config wires an Orchestrator's collaborators.
type Config struct {
	Selector  WordSelector
	Evaluator Evaluator
	Catalog   Catalog
	Bank      func(topic string) []BankEntry // word bank generator
	Results   ResultWriter                   // optional
	Tracker   Tracker                        // optional
	UserID    func() string                  // optional identity lookup; "" = guest
	Rand      *rand.Rand                     // optional; seedable for tests
	Now       func() time.Time               // optional clock override
	Model     string                         // initial model id
}

// Orchestrator owns one game session. Safe for concurrent use; every
// operation locks the whole transition so the bank/cap invariants hold at
// every observable step.
type Orchestrator struct {
	mu        sync.Mutex
	st        State
	cfg       Config
	listeners map[int]func(State)
	nextSub   int
}

// New constructs an Orchestrator with a fresh standard-tier game.
func New(cfg Config) *Orchestrator {
	if cfg.Tracker == nil {
		cfg.Tracker = nopTracker{}
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.UserID == nil {
		cfg.UserID = func() string { return "" }
	}
	o := &Orchestrator{cfg: cfg, listeners: make(map[int]func(State))}
	o.st = o.freshState(TierStandard, cfg.Model)
	return o
}

// freshState builds a brand-new State for the tier with a regenerated bank.
func (o *Orchestrator) freshState(tier Tier, model string) State {
	p := o.cfg.Catalog.Default(tier)
	return State{
		PlayerWords:     []Word{},
		AIWords:         []Word{},
		WordBank:        o.cfg.Bank(p.Title),
		IsPlayerTurn:    true,
		Difficulty:      tier,
		Model:           model,
		PromptID:        p.ID,
		SystemPrompt:    p.SystemPrompt,
		Topic:           p.Title,
		MaxWordsPerSide: tier.MaxWords(),
	}
}

// State returns a snapshot copy of the current game state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.st.clone()
}

// Subscribe registers a listener invoked with a snapshot after every
// transition. Listeners must not call back into the Orchestrator and must
// not block. The returned func cancels the subscription.
func (o *Orchestrator) Subscribe(fn func(State)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.nextSub
	o.nextSub++
	o.listeners[id] = fn
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.listeners, id)
	}
}

// notify fans a snapshot out to listeners. Callers hold the mutex.
func (o *Orchestrator) notify() {
	if len(o.listeners) == 0 {
		return
	}
	snap := o.st.clone()
	for _, fn := range o.listeners {
		fn(snap)
	}
}

// Reset replaces the state wholesale with a fresh game at the current tier.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	st := o.freshState(o.st.Difficulty, o.st.Model)
	st.StartTime = o.cfg.Now()
	o.st = st
	o.cfg.Tracker.GameStart(st.Difficulty, st.Model)
	o.notify()
}

// SetModel selects the oracle model used for suggestions and evaluation.
func (o *Orchestrator) SetModel(model string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.st.Model = model
	o.notify()
}

// SetDifficulty re-derives topic, system prompt, bank, and cap for the tier
// and empties both word lists. It does not clear a finished game's flag;
// callers wanting a clean slate use Reset. Mid-game protection, if desired,
// is the caller's responsibility.
func (o *Orchestrator) SetDifficulty(tier Tier) {
	o.mu.Lock()
	defer o.mu.Unlock()
	p := o.cfg.Catalog.Default(tier)
	o.applyPrompt(p)
	o.st.MaxWordsPerSide = tier.MaxWords()
	o.notify()
}

// SelectPrompt switches to a catalog entry by id. An unknown id is a no-op,
// not an error.
func (o *Orchestrator) SelectPrompt(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	p, ok := o.cfg.Catalog.Find(id)
	if !ok {
		return
	}
	o.applyPrompt(p)
	o.st.MaxWordsPerSide = p.Difficulty.MaxWords()
	o.notify()
}

// applyPrompt installs a catalog entry: new topic, system prompt, tier, and
// a regenerated bank. Word lists are emptied so every committed Word keeps
// a matching bank entry. Callers hold the mutex.
func (o *Orchestrator) applyPrompt(p Prompt) {
	o.st.Difficulty = p.Difficulty
	o.st.PromptID = p.ID
	o.st.SystemPrompt = p.SystemPrompt
	o.st.Topic = p.Title
	o.st.WordBank = o.cfg.Bank(p.Title)
	o.st.PlayerWords = []Word{}
	o.st.AIWords = []Word{}
	o.st.PlayerPrompt = ""
	o.st.AIPrompt = ""
	o.st.Thought = nil
	o.st.Err = ""
}

// ClaimWord commits the player's move at the given bank index and then runs
// the opponent's turn before returning. Rule violations set only the error
// field and return a sentinel; the rest of the state is byte-for-byte
// unchanged. Opponent failures are recovered: the turn reverts to the player.
func (o *Orchestrator) ClaimWord(ctx context.Context, index int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.st.IsGameOver {
		o.st.Err = "The game is over. Start a new game to keep playing."
		o.notify()
		return ErrGameOver
	}
	if index < 0 || index >= len(o.st.WordBank) {
		o.st.Err = "That word is not in the bank."
		o.notify()
		return ErrBadIndex
	}
	if o.st.WordBank[index].IsUsed {
		o.st.Err = "This word has already been used."
		o.notify()
		return ErrWordUsed
	}
	if len(o.st.PlayerWords) >= o.st.MaxWordsPerSide {
		o.st.Err = "You can only use " + strconv.Itoa(o.st.MaxWordsPerSide) + " words."
		o.notify()
		return ErrWordCap
	}

	text := o.st.WordBank[index].Text
	o.st.WordBank[index].IsUsed = true
	o.st.WordBank[index].UsedBy = SidePlayer
	o.st.PlayerWords = append(o.st.PlayerWords, Word{Text: text, Side: SidePlayer})
	o.st.PlayerPrompt = joinWords(o.st.PlayerWords)
	o.st.IsPlayerTurn = false
	o.st.IsLoading = true
	o.st.Err = ""
	o.cfg.Tracker.WordAdded(text, true, len(o.st.PlayerWords))
	o.notify()

	if err := o.opponentTurn(ctx); err != nil {
		o.cfg.Tracker.Error(err, "opponentTurn")
		o.st.IsLoading = false
		o.st.IsPlayerTurn = true
		o.st.Err = "Failed to process AI turn. Please try again."
		o.notify()
	}
	return nil
}

// OpponentTurn runs the opponent's move outside a player claim (e.g. to
// recover after a failed turn). Recovery semantics match ClaimWord.
func (o *Orchestrator) OpponentTurn(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.opponentTurn(ctx); err != nil {
		o.cfg.Tracker.Error(err, "opponentTurn")
		o.st.IsLoading = false
		o.st.IsPlayerTurn = true
		o.st.Err = "Failed to process AI turn. Please try again."
		o.notify()
		return err
	}
	return nil
}

// opponentTurn asks the selector for a word and commits it. Skip and
// exhaustion signals flip the turn back to the player without failing the
// session; any other error is the caller's to convert. Callers hold the mutex.
func (o *Orchestrator) opponentTurn(ctx context.Context) error {
	sel, err := o.cfg.Selector.SelectWord(ctx, o.st.clone())
	switch {
	case errors.Is(err, ErrSkipTurn):
		o.st.IsLoading = false
		o.st.IsPlayerTurn = true
		o.notify()
		return nil
	case errors.Is(err, ErrNoWords):
		o.st.IsLoading = false
		o.st.IsPlayerTurn = true
		o.st.Err = "No more words available in the word bank."
		o.notify()
		return nil
	case err != nil:
		return err
	}

	idx := -1
	for i, e := range o.st.WordBank {
		if e.Text == sel.Word && !e.IsUsed {
			idx = i
			break
		}
	}
	if idx == -1 {
		return errors.New("selected word not found in word bank")
	}

	o.st.WordBank[idx].IsUsed = true
	o.st.WordBank[idx].UsedBy = SideAI
	o.st.AIWords = append(o.st.AIWords, Word{Text: sel.Word, Side: SideAI})
	o.st.AIPrompt = joinWords(o.st.AIWords)
	thought := sel.Thought
	o.st.Thought = &thought
	o.st.IsPlayerTurn = true
	o.st.IsLoading = false
	o.cfg.Tracker.WordAdded(sel.Word, false, len(o.st.AIWords))
	o.notify()

	// Auto-end when both sides reach the cap. The game-over guard ensures a
	// single evaluation pass even if a manual end races the auto trigger.
	if len(o.st.PlayerWords) >= o.st.MaxWordsPerSide &&
		len(o.st.AIWords) >= o.st.MaxWordsPerSide &&
		!o.st.IsGameOver {
		return o.endGame(ctx)
	}
	return nil
}

// EndGame finishes the game and evaluates both prompts. The game-over flag
// is set optimistically before evaluation and survives evaluation failure.
func (o *Orchestrator) EndGame(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.endGame(ctx)
}

// endGame is the locked implementation of EndGame.
func (o *Orchestrator) endGame(ctx context.Context) error {
	o.st.IsLoading = true
	o.st.IsGameOver = true
	o.st.Err = ""
	o.notify()

	playerEval, err := o.cfg.Evaluator.Evaluate(ctx, o.st.PlayerPrompt, o.st.Model, o.st.SystemPrompt)
	if err != nil {
		return o.failEvaluation(err)
	}
	aiEval, err := o.cfg.Evaluator.Evaluate(ctx, o.st.AIPrompt, o.st.Model, o.st.SystemPrompt)
	if err != nil {
		return o.failEvaluation(err)
	}

	markCorrectness(o.st.PlayerWords, playerEval.Score, o.cfg.Rand)
	markCorrectness(o.st.AIWords, aiEval.Score, o.cfg.Rand)

	duration := 0
	if !o.st.StartTime.IsZero() {
		duration = int(o.cfg.Now().Sub(o.st.StartTime).Seconds())
	}

	pe, ae := playerEval, aiEval
	o.st.PlayerEvaluation = &pe
	o.st.AIEvaluation = &ae
	o.st.IsLoading = false
	o.notify()

	o.cfg.Tracker.GameEnd(o.st.Difficulty, o.st.Model, playerEval.Score, len(o.st.PlayerWords), duration)

	if uid := o.cfg.UserID(); uid != "" && o.cfg.Results != nil {
		rec := Result{
			UserID:     uid,
			Prompt:     o.st.PlayerPrompt,
			Score:      playerEval.Score,
			Difficulty: o.st.Difficulty,
			Model:      o.st.Model,
			WordCount:  len(o.st.PlayerWords),
			CreatedAt:  o.cfg.Now(),
		}
		if err := o.cfg.Results.SaveResult(ctx, rec); err != nil {
			// Persistence is fire-and-forget: log, never surface.
			o.cfg.Tracker.Error(err, "saveResult")
		}
	}
	return nil
}

// failEvaluation converts an evaluation error into the fail-open terminal
// state: loading cleared, error surfaced, game still over.
func (o *Orchestrator) failEvaluation(err error) error {
	o.cfg.Tracker.Error(err, "endGame")
	o.st.IsLoading = false
	o.st.Err = "Failed to evaluate prompts. Please try again."
	o.notify()
	return err
}

// markCorrectness samples per-word correctness from the side's score:
// above 70 every word is correct, otherwise each word is correct with
// probability score/100, sampled independently.
func markCorrectness(words []Word, score int, rng *rand.Rand) {
	for i := range words {
		v := score > 70 || rng.Float64() < float64(score)/100
		words[i].Correct = &v
	}
}

// joinWords renders a side's committed words as a space-joined prompt.
func joinWords(words []Word) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

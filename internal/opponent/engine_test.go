package opponent

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptduel/go-server/internal/game"
)

type fakeOracle struct {
	reply string
	err   error
	got   string
	calls int
}

func (f *fakeOracle) SuggestWord(_ context.Context, prompt, _, _ string) (string, error) {
	f.calls++
	f.got = prompt
	return f.reply, f.err
}

func testState() game.State {
	return game.State{
		WordBank: []game.BankEntry{
			{Text: "innovative"},
			{Text: "powerful"},
			{Text: "product", IsUsed: true, UsedBy: game.SidePlayer},
			{Text: "seamless"},
		},
		Difficulty:      game.TierStandard,
		Topic:           "Product Description (Standard)",
		SystemPrompt:    "build an optimal prompt for generating a product description",
		MaxWordsPerSide: 10,
		IsPlayerTurn:    false,
	}
}

func newTestEngine(o Oracle) *Engine {
	return New(o, WithDelay(0, 0), WithRand(rand.New(rand.NewSource(1))))
}

func TestSelectWordParsesJSONReply(t *testing.T) {
	o := &fakeOracle{reply: `I'll go with this one: {"selectedWord": "seamless", "explanation": "flows well"}`}
	sel, err := newTestEngine(o).SelectWord(context.Background(), testState())

	require.NoError(t, err)
	assert.Equal(t, "seamless", sel.Word)
	assert.Equal(t, "seamless", sel.Thought.Word)
	assert.NotEmpty(t, sel.Thought.Explanation)
}

func TestSelectWordFirstTokenFallback(t *testing.T) {
	o := &fakeOracle{reply: "powerful is definitely my choice here"}
	sel, err := newTestEngine(o).SelectWord(context.Background(), testState())

	require.NoError(t, err)
	assert.Equal(t, "powerful", sel.Word)
}

func TestSelectWordRepairsHallucination(t *testing.T) {
	// "blockchain" is not in the bank; "product" is but already used.
	for _, reply := range []string{
		`{"selectedWord": "blockchain", "explanation": "trendy"}`,
		`{"selectedWord": "product", "explanation": "taken"}`,
		"blockchain",
	} {
		o := &fakeOracle{reply: reply}
		sel, err := newTestEngine(o).SelectWord(context.Background(), testState())

		require.NoError(t, err, "reply %q", reply)
		assert.Contains(t, []string{"innovative", "powerful", "seamless"}, sel.Word, "reply %q", reply)
	}
}

func TestSelectWordSkipsAtCap(t *testing.T) {
	st := testState()
	st.MaxWordsPerSide = 2
	st.AIWords = []game.Word{{Text: "innovative"}, {Text: "powerful"}}

	o := &fakeOracle{reply: "unused"}
	_, err := newTestEngine(o).SelectWord(context.Background(), st)

	assert.ErrorIs(t, err, game.ErrSkipTurn)
	assert.Zero(t, o.calls, "no oracle call on a skipped turn")
}

func TestSelectWordExhaustedBank(t *testing.T) {
	st := testState()
	for i := range st.WordBank {
		st.WordBank[i].IsUsed = true
	}

	o := &fakeOracle{reply: "unused"}
	_, err := newTestEngine(o).SelectWord(context.Background(), st)

	assert.ErrorIs(t, err, game.ErrNoWords)
	assert.Zero(t, o.calls)
}

func TestSelectWordEmptyReplyIsError(t *testing.T) {
	o := &fakeOracle{reply: "   "}
	_, err := newTestEngine(o).SelectWord(context.Background(), testState())
	require.Error(t, err)
}

func TestSelectWordOracleErrorPropagates(t *testing.T) {
	o := &fakeOracle{err: errors.New("rate limited")}
	_, err := newTestEngine(o).SelectWord(context.Background(), testState())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestSelectWordInstructionListsAvailableWords(t *testing.T) {
	o := &fakeOracle{reply: `{"selectedWord": "innovative", "explanation": "x"}`}
	_, err := newTestEngine(o).SelectWord(context.Background(), testState())

	require.NoError(t, err)
	assert.Contains(t, o.got, "innovative, powerful, seamless")
	assert.NotContains(t, o.got, "product,", "used words stay out of the instruction")
	assert.Contains(t, o.got, "Respond in JSON format")
}

func TestThinkHonorsContext(t *testing.T) {
	o := &fakeOracle{reply: "unused"}
	e := New(o, WithDelay(time.Hour, time.Hour), WithRand(rand.New(rand.NewSource(1))))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := e.SelectWord(ctx, testState())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, o.calls)
}

func TestRationaleByTier(t *testing.T) {
	e := newTestEngine(&fakeOracle{})

	// First word: foundation framing per tier.
	st := testState()

	st.Difficulty = game.TierStandard
	th := e.rationale("innovative", st)
	assert.Contains(t, th.Explanation, "foundation")

	st.Difficulty = game.TierExpert
	th = e.rationale("innovative", st)
	assert.Contains(t, th.Explanation, "semantic foundation")

	st.Difficulty = game.TierEasy
	th = e.rationale("innovative", st)
	assert.Contains(t, th.Explanation, "super fun word")
}

func TestRationalePositionBranches(t *testing.T) {
	e := newTestEngine(&fakeOracle{})
	st := testState()
	st.AIWords = []game.Word{{Text: "innovative"}}
	st.AIPrompt = "innovative"

	th := e.rationale("powerful", st)
	assert.Contains(t, th.Explanation, `build upon "innovative"`)

	st.AIWords = make([]game.Word, 9)
	th = e.rationale("seamless", st)
	assert.Contains(t, th.Explanation, "concluding my prompt")
}

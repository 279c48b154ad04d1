package evaluate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOracle struct {
	reply string
	err   error
	got   string
}

func (f *fakeOracle) EvaluatePrompt(_ context.Context, prompt, _, _ string) (string, error) {
	f.got = prompt
	return f.reply, f.err
}

const productSystem = "You are playing a game to build an optimal prompt for generating a product description."

func TestEvaluateParsesReply(t *testing.T) {
	o := &fakeOracle{reply: `Here is my verdict: {"score": 85, "feedback": "Strong and specific."} Thanks!`}
	ev, err := New(o).Evaluate(context.Background(), "innovative product", "m", productSystem)

	require.NoError(t, err)
	assert.Equal(t, 85, ev.Score)
	assert.Equal(t, "Strong and specific.", ev.Feedback)
	assert.Contains(t, o.got, `Prompt to evaluate: "innovative product"`)
}

func TestEvaluateMalformedReplyIsNeutral(t *testing.T) {
	for _, reply := range []string{
		"no json at all",
		`{"score": "not a number"}`,
		`{"score": 0, "feedback": "zero means unparsed"}`,
	} {
		ev, err := New(&fakeOracle{reply: reply}).Evaluate(context.Background(), "p", "m", productSystem)
		require.NoError(t, err)
		assert.Equal(t, 50, ev.Score, "reply %q", reply)
		assert.Contains(t, ev.Feedback, "Could not parse evaluation")
	}
}

func TestEvaluateTransportErrorPropagates(t *testing.T) {
	o := &fakeOracle{err: errors.New("connection refused")}
	_, err := New(o).Evaluate(context.Background(), "p", "m", productSystem)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestFallbackRewardsCoherentRelevantPrompt(t *testing.T) {
	// 10 words, 8 unique, 3 topical: 80 base + 16 coherence + 6 relevance,
	// clamped to the 98 ceiling.
	prompt := "the product is innovative and powerful the and works nicely"
	ev := Fallback(prompt, productSystem)

	assert.Equal(t, 98, ev.Score)
	assert.True(t, strings.HasPrefix(ev.Feedback, "Your prompt contains 10 words"))
	assert.Contains(t, ev.Feedback, "excellent coherence")
}

func TestFallbackShortPrompt(t *testing.T) {
	// 3 unique words, none topical: 50 base + 20 coherence = 70.
	ev := Fallback("the quick fox", productSystem)
	assert.Equal(t, 70, ev.Score)
	assert.Contains(t, ev.Feedback, "decent coherence")
	assert.Contains(t, ev.Feedback, "more detail")
}

func TestFallbackRepetitivePrompt(t *testing.T) {
	// 4 repeats of one non-topical word: 50 base + 5 coherence = 55.
	ev := Fallback("the the the the", productSystem)
	assert.Equal(t, 55, ev.Score)
	assert.Contains(t, ev.Feedback, "room for improvement")
	assert.Contains(t, ev.Feedback, "more topic-specific language")
}

func TestFallbackEmptyPrompt(t *testing.T) {
	ev := Fallback("", productSystem)
	assert.Equal(t, 50, ev.Score)
	assert.Contains(t, ev.Feedback, "Your prompt is empty")
	assert.Contains(t, ev.Feedback, "product description")
}

func TestFallbackIsDeterministic(t *testing.T) {
	prompt := "innovative software that transforms the user experience"
	first := Fallback(prompt, productSystem)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Fallback(prompt, productSystem))
	}
}

func TestFallbackScoreBounds(t *testing.T) {
	prompts := []string{
		"a",
		"innovative powerful efficient product solution platform service system software device",
		strings.Repeat("word ", 25),
	}
	for _, p := range prompts {
		ev := Fallback(p, productSystem)
		assert.GreaterOrEqual(t, ev.Score, 50, "prompt %q", p)
		assert.LessOrEqual(t, ev.Score, 98, "prompt %q", p)
	}
}

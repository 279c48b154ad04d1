package httpserver

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptduel/go-server/internal/catalog"
	"github.com/promptduel/go-server/internal/game"
	"github.com/promptduel/go-server/internal/oracle"
	"github.com/promptduel/go-server/internal/store"
)

const testSchema = `
CREATE TABLE users (
    id            TEXT PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TEXT NOT NULL,
    games_played  INTEGER NOT NULL DEFAULT 0,
    best_score    INTEGER NOT NULL DEFAULT 0
);`

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	return db
}

// newTestServer spins up the full router with the offline oracle, an
// in-memory store, and a throwaway database. Each returned client has its
// own cookie jar, i.e. its own identity.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	t.Setenv("AI_DELAY", "off")
	srv := New(Config{
		DB:      openTestDB(t),
		Store:   store.NewMemoryStore(),
		Oracle:  oracle.NewOffline(nil),
		Catalog: catalog.Table{},
	})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

// doJSON issues a request with a JSON body and decodes the JSON response
// into out (skipped when out is nil). Returns the status code.
func doJSON(t *testing.T, c *http.Client, method, url string, body, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	res, err := c.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

// stateEnvelope matches newGameRes/stateRes.
type stateEnvelope struct {
	GameID string     `json:"gameId"`
	State  game.State `json:"state"`
}

func startGame(t *testing.T, c *http.Client, base string, body any) stateEnvelope {
	t.Helper()
	var env stateEnvelope
	code := doJSON(t, c, http.MethodPost, base+"/game/new", body, &env)
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, env.GameID)
	return env
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	var out map[string]bool
	code := doJSON(t, newClient(t), http.MethodGet, ts.URL+"/health", nil, &out)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, out["ok"])
}

func TestNewGameDefaults(t *testing.T) {
	ts := newTestServer(t)
	env := startGame(t, newClient(t), ts.URL, nil)

	st := env.State
	assert.Equal(t, game.TierStandard, st.Difficulty)
	assert.Equal(t, 10, st.MaxWordsPerSide)
	assert.Len(t, st.WordBank, 30)
	assert.True(t, st.IsPlayerTurn)
	assert.False(t, st.IsGameOver)
	assert.False(t, st.StartTime.IsZero())
	assert.Equal(t, "product-description-standard", st.PromptID)
}

func TestNewGameWithOptions(t *testing.T) {
	ts := newTestServer(t)
	env := startGame(t, newClient(t), ts.URL, map[string]string{
		"difficulty": "easy",
		"promptId":   "story-easy",
		"model":      "meta-llama/llama-3-8b-instruct",
	})

	st := env.State
	assert.Equal(t, game.TierEasy, st.Difficulty)
	assert.Equal(t, 7, st.MaxWordsPerSide)
	assert.Equal(t, "story-easy", st.PromptID)
	assert.Equal(t, "meta-llama/llama-3-8b-instruct", st.Model)
}

func TestClaimWordFlow(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	env := startGame(t, c, ts.URL, nil)

	var out stateEnvelope
	code := doJSON(t, c, http.MethodPost, ts.URL+"/game/"+env.GameID+"/word", map[string]int{"index": 0}, &out)
	require.Equal(t, http.StatusOK, code)

	st := out.State
	require.Len(t, st.PlayerWords, 1)
	assert.Equal(t, env.State.WordBank[0].Text, st.PlayerWords[0].Text)
	require.Len(t, st.AIWords, 1)
	assert.True(t, st.IsPlayerTurn)
	assert.False(t, st.IsLoading)
	require.NotNil(t, st.Thought)
	assert.NotEmpty(t, st.Thought.Explanation)
}

func TestClaimUsedWordConflicts(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	env := startGame(t, c, ts.URL, nil)

	code := doJSON(t, c, http.MethodPost, ts.URL+"/game/"+env.GameID+"/word", map[string]int{"index": 0}, nil)
	require.Equal(t, http.StatusOK, code)

	var out stateEnvelope
	code = doJSON(t, c, http.MethodPost, ts.URL+"/game/"+env.GameID+"/word", map[string]int{"index": 0}, &out)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "This word has already been used.", out.State.Err)
	assert.Len(t, out.State.PlayerWords, 1)
}

func TestEndGameEvaluates(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	env := startGame(t, c, ts.URL, nil)

	// Claim the first unused entry each turn; the opponent claims its own
	// words in between, so the index is re-derived from the latest state.
	st := env.State
	for i := 0; i < 3; i++ {
		idx := -1
		for j, e := range st.WordBank {
			if !e.IsUsed {
				idx = j
				break
			}
		}
		require.NotEqual(t, -1, idx)

		var out stateEnvelope
		code := doJSON(t, c, http.MethodPost, ts.URL+"/game/"+env.GameID+"/word", map[string]int{"index": idx}, &out)
		require.Equal(t, http.StatusOK, code)
		require.Empty(t, out.State.Err)
		st = out.State
	}

	var out stateEnvelope
	code := doJSON(t, c, http.MethodPost, ts.URL+"/game/"+env.GameID+"/end", nil, &out)
	require.Equal(t, http.StatusOK, code)

	st = out.State
	assert.True(t, st.IsGameOver)
	require.NotNil(t, st.PlayerEvaluation)
	require.NotNil(t, st.AIEvaluation)
	assert.GreaterOrEqual(t, st.PlayerEvaluation.Score, 50)
	assert.NotEmpty(t, st.PlayerEvaluation.Feedback)
}

func TestSettingsRoutes(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	env := startGame(t, c, ts.URL, nil)
	base := ts.URL + "/game/" + env.GameID

	var out stateEnvelope
	code := doJSON(t, c, http.MethodPost, base+"/difficulty", map[string]string{"difficulty": "expert"}, &out)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 15, out.State.MaxWordsPerSide)

	code = doJSON(t, c, http.MethodPost, base+"/prompt", map[string]string{"promptId": "marketing-easy"}, &out)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "marketing-easy", out.State.PromptID)

	code = doJSON(t, c, http.MethodPost, base+"/model", map[string]string{"model": "mistralai/mixtral-8x7b-instruct"}, &out)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "mistralai/mixtral-8x7b-instruct", out.State.Model)

	code = doJSON(t, c, http.MethodPost, base+"/reset", nil, &out)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, out.State.PlayerWords)
	assert.False(t, out.State.IsGameOver)
}

func TestSessionOwnership(t *testing.T) {
	ts := newTestServer(t)
	owner := newClient(t)
	env := startGame(t, owner, ts.URL, nil)

	stranger := newClient(t)
	code := doJSON(t, stranger, http.MethodGet, ts.URL+"/game/"+env.GameID, nil, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code = doJSON(t, owner, http.MethodGet, ts.URL+"/game/"+env.GameID, nil, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestUnknownGame(t *testing.T) {
	ts := newTestServer(t)
	code := doJSON(t, newClient(t), http.MethodGet, ts.URL+"/game/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCatalogEndpoint(t *testing.T) {
	ts := newTestServer(t)
	var out []map[string]string
	code := doJSON(t, newClient(t), http.MethodGet, ts.URL+"/catalog", nil, &out)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, out, 12)
}

func TestModelsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	var out struct {
		Models  []string `json:"models"`
		Default string   `json:"default"`
	}
	code := doJSON(t, newClient(t), http.MethodGet, ts.URL+"/models", nil, &out)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, oracle.AvailableModels[0], out.Default)
	assert.Len(t, out.Models, len(oracle.AvailableModels))
}

func TestLeaderboardEmpty(t *testing.T) {
	ts := newTestServer(t)
	var out struct {
		Top []store.LeaderboardEntry `json:"top"`
	}
	code := doJSON(t, newClient(t), http.MethodGet, ts.URL+"/leaderboard", nil, &out)
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, out.Top)
}

func TestWatchStreamsTransitions(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	env := startGame(t, c, ts.URL, nil)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/game/" + env.GameID + "/watch"
	dialer := websocket.Dialer{Jar: c.Jar}
	conn, _, err := dialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// The current state arrives first.
	var first game.State
	require.NoError(t, conn.ReadJSON(&first))
	assert.Empty(t, first.PlayerWords)

	code := doJSON(t, c, http.MethodPost, ts.URL+"/game/"+env.GameID+"/word", map[string]int{"index": 0}, nil)
	require.Equal(t, http.StatusOK, code)

	// Snapshots stream until the opponent's commit shows up.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var st game.State
	for len(st.AIWords) == 0 {
		require.NoError(t, conn.ReadJSON(&st))
	}
	assert.Len(t, st.PlayerWords, 1)
	assert.True(t, st.IsPlayerTurn)
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	creds := map[string]string{"Username": "player_one", "Password": "supersecret"}

	code := doJSON(t, c, http.MethodPost, ts.URL+"/auth/signup", creds, nil)
	require.Equal(t, http.StatusOK, code)

	var me map[string]string
	code = doJSON(t, c, http.MethodGet, ts.URL+"/auth/me", nil, &me)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "player_one", me["username"])

	code = doJSON(t, c, http.MethodPost, ts.URL+"/auth/logout", nil, nil)
	require.Equal(t, http.StatusOK, code)
	code = doJSON(t, c, http.MethodGet, ts.URL+"/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code = doJSON(t, c, http.MethodPost, ts.URL+"/auth/login", creds, nil)
	require.Equal(t, http.StatusOK, code)
	code = doJSON(t, c, http.MethodGet, ts.URL+"/auth/me", nil, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestSignupValidation(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)

	code := doJSON(t, c, http.MethodPost, ts.URL+"/auth/signup", map[string]string{"Username": "ok_name", "Password": "short"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code = doJSON(t, c, http.MethodPost, ts.URL+"/auth/signup", map[string]string{"Username": "x", "Password": "longenough"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code = doJSON(t, c, http.MethodPost, ts.URL+"/auth/signup", map[string]string{"Username": "taken_name", "Password": "longenough"}, nil)
	require.Equal(t, http.StatusOK, code)
	code = doJSON(t, newClient(t), http.MethodPost, ts.URL+"/auth/signup", map[string]string{"Username": "taken_name", "Password": "longenough"}, nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestStatsAfterFinishedGame(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)

	code := doJSON(t, c, http.MethodPost, ts.URL+"/auth/signup", map[string]string{"Username": "dueler", "Password": "supersecret"}, nil)
	require.Equal(t, http.StatusOK, code)

	env := startGame(t, c, ts.URL, nil)
	code = doJSON(t, c, http.MethodPost, ts.URL+"/game/"+env.GameID+"/word", map[string]int{"index": 0}, nil)
	require.Equal(t, http.StatusOK, code)

	var out stateEnvelope
	code = doJSON(t, c, http.MethodPost, ts.URL+"/game/"+env.GameID+"/end", nil, &out)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, out.State.PlayerEvaluation)

	var stats struct {
		GamesPlayed int `json:"gamesPlayed"`
		BestScore   int `json:"bestScore"`
	}
	code = doJSON(t, c, http.MethodGet, ts.URL+"/stats/me", nil, &stats)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, stats.GamesPlayed)
	assert.Equal(t, out.State.PlayerEvaluation.Score, stats.BestScore)

	var mine []game.Result
	code = doJSON(t, c, http.MethodGet, ts.URL+"/games/mine", nil, &mine)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, mine, 1)
	assert.Equal(t, out.State.PlayerEvaluation.Score, mine[0].Score)
}

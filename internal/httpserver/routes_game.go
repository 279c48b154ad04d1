// internal/httpserver/routes_game.go
//
// HTTP routes for duel sessions.
// Exposes the session lifecycle under /game:
//   - POST /game/new             → create a session (difficulty/prompt/model)
//   - GET  /game/{id}            → fetch current state
//   - POST /game/{id}/word       → claim a bank word; runs the opponent turn
//   - POST /game/{id}/ai-turn    → re-run a failed opponent turn
//   - POST /game/{id}/end        → finish and evaluate both prompts
//   - POST /game/{id}/reset      → fresh game at the current tier
//   - POST /game/{id}/difficulty → switch tier (new bank, words cleared)
//   - POST /game/{id}/prompt     → switch catalog challenge
//   - POST /game/{id}/model      → switch opponent model
//   - GET  /game/{id}/watch      → websocket stream of state snapshots
//
// Sessions are held in memory for active play; each is bound to its creator
// (user id or anonymous cookie) and only the owner may act on it. Completed
// games are persisted by the session itself when the owner is logged in.

package httpserver

import (
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/promptduel/go-server/internal/evaluate"
	"github.com/promptduel/go-server/internal/game"
	"github.com/promptduel/go-server/internal/opponent"
	"github.com/promptduel/go-server/internal/oracle"
	"github.com/promptduel/go-server/internal/wordbank"
)

// session is one live duel bound to its creator.
type session struct {
	ID    string
	orch  *game.Orchestrator
	Start time.Time

	mu     sync.Mutex
	anonID string // guest cookie id; "" once claimed
	userID string // "" for guests
}

// owner returns the logged-in owner's user id, or "" for guests.
func (s *session) owner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// accessibleBy reports whether the request identity may act on the session.
func (s *session) accessibleBy(userID, anonID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID != "" && s.userID == userID {
		return true
	}
	return s.anonID != "" && s.anonID == anonID
}

// sessionRegistry holds live sessions keyed by game id.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*session)}
}

func (r *sessionRegistry) add(s *session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

func (r *sessionRegistry) get(id string) (*session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// claimOwner transfers every session created under the anon cookie to the
// user account, so a guest's in-progress duel survives logging in.
func (r *sessionRegistry) claimOwner(anonID, userID string) {
	if anonID == "" || userID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		s.mu.Lock()
		if s.anonID == anonID && s.userID == "" {
			s.userID = userID
		}
		s.mu.Unlock()
	}
}

// mountGame registers all /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetGame)
			r.Post("/word", s.handleClaimWord)
			r.Post("/ai-turn", s.handleAITurn)
			r.Post("/end", s.handleEndGame)
			r.Post("/reset", s.handleReset)
			r.Post("/difficulty", s.handleSetDifficulty)
			r.Post("/prompt", s.handleSelectPrompt)
			r.Post("/model", s.handleSetModel)
			r.Get("/watch", s.handleWatch)
		})
	})
}

// -----------------------------------------------------------------------------
// /game/new

// newGameReq is the request payload for POST /game/new. All fields optional.
type newGameReq struct {
	Difficulty string `json:"difficulty"`
	PromptID   string `json:"promptId"`
	Model      string `json:"model"`
}

// newGameRes wraps the session id and the opening state.
type newGameRes struct {
	GameID string     `json:"gameId"`
	State  game.State `json:"state"`
}

// handleNewGame creates a session with its own orchestrator and binds it to
// the request identity.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	model := req.Model
	if model == "" {
		model = getEnv("DEFAULT_MODEL", oracle.AvailableModels[0])
	}

	sess := &session{
		ID:     genID(),
		Start:  time.Now(),
		anonID: s.ensureAnonID(w, r),
	}
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		sess.userID = me.ID
	}

	sess.orch = game.New(game.Config{
		Selector:  s.newSelector(),
		Evaluator: evaluate.New(s.oracle),
		Catalog:   s.catalog,
		Bank:      func(topic string) []game.BankEntry { return wordbank.Generate(topic, nil) },
		Results:   s.store,
		Tracker:   s.tracker,
		UserID:    sess.owner,
		Model:     model,
	})
	// Reset first so the start time is stamped; prompt selection afterwards
	// so an explicit promptId survives the tier-default rebuild.
	sess.orch.Reset()
	if req.Difficulty != "" {
		sess.orch.SetDifficulty(game.ParseTier(req.Difficulty))
	}
	if req.PromptID != "" {
		sess.orch.SelectPrompt(req.PromptID)
	}
	s.sessions.add(sess)

	_ = json.NewEncoder(w).Encode(newGameRes{GameID: sess.ID, State: sess.orch.State()})
}

// newSelector builds the opponent engine; AI_DELAY=off disables the thinking
// delay (tests, CI).
func (s *Server) newSelector() game.WordSelector {
	if os.Getenv("AI_DELAY") == "off" {
		return opponent.New(s.oracle, opponent.WithDelay(0, 0))
	}
	return opponent.New(s.oracle)
}

// -----------------------------------------------------------------------------
// session plumbing

// findSession resolves {id} and checks ownership. Writes the error response
// itself; callers bail on nil.
func (s *Server) findSession(w http.ResponseWriter, r *http.Request) *session {
	id := chi.URLParam(r, "id")
	sess, ok := s.sessions.get(id)
	if !ok {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return nil
	}
	userID := ""
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		userID = me.ID
	}
	if !sess.accessibleBy(userID, s.ensureAnonID(w, r)) {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return nil
	}
	return sess
}

// stateRes wraps a state snapshot for the common response shape.
type stateRes struct {
	State game.State `json:"state"`
}

func writeState(w http.ResponseWriter, st game.State) {
	_ = json.NewEncoder(w).Encode(stateRes{State: st})
}

// handleGetGame returns the current snapshot.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess := s.findSession(w, r)
	if sess == nil {
		return
	}
	writeState(w, sess.orch.State())
}

// -----------------------------------------------------------------------------
// /game/{id}/word

// claimReq is the request payload for POST /game/{id}/word.
type claimReq struct {
	Index int `json:"index"`
}

// handleClaimWord applies the player's move and the opponent's reply.
// Rule violations return 409 with the updated state so clients can show the
// error without a second fetch.
func (s *Server) handleClaimWord(w http.ResponseWriter, r *http.Request) {
	sess := s.findSession(w, r)
	if sess == nil {
		return
	}
	var req claimReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if err := sess.orch.ClaimWord(r.Context(), req.Index); err != nil {
		w.WriteHeader(http.StatusConflict)
	}
	writeState(w, sess.orch.State())
}

// handleAITurn re-runs the opponent's move after a failed turn.
func (s *Server) handleAITurn(w http.ResponseWriter, r *http.Request) {
	sess := s.findSession(w, r)
	if sess == nil {
		return
	}
	if err := sess.orch.OpponentTurn(r.Context()); err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID).Msg("ai turn retry failed")
	}
	writeState(w, sess.orch.State())
}

// -----------------------------------------------------------------------------
// /game/{id}/end

// handleEndGame finishes the duel, evaluates both prompts, and bumps the
// owner's profile stats on success.
func (s *Server) handleEndGame(w http.ResponseWriter, r *http.Request) {
	sess := s.findSession(w, r)
	if sess == nil {
		return
	}
	err := sess.orch.EndGame(r.Context())
	st := sess.orch.State()
	if err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID).Msg("evaluation failed")
		w.WriteHeader(http.StatusBadGateway)
		writeState(w, st)
		return
	}
	if uid := sess.owner(); uid != "" && st.PlayerEvaluation != nil {
		s.bumpStats(uid, st.PlayerEvaluation.Score)
	}
	writeState(w, st)
}

// -----------------------------------------------------------------------------
// settings

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := s.findSession(w, r)
	if sess == nil {
		return
	}
	sess.orch.Reset()
	writeState(w, sess.orch.State())
}

type difficultyReq struct {
	Difficulty string `json:"difficulty"`
}

func (s *Server) handleSetDifficulty(w http.ResponseWriter, r *http.Request) {
	sess := s.findSession(w, r)
	if sess == nil {
		return
	}
	var req difficultyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sess.orch.SetDifficulty(game.ParseTier(req.Difficulty))
	writeState(w, sess.orch.State())
}

type promptReq struct {
	PromptID string `json:"promptId"`
}

func (s *Server) handleSelectPrompt(w http.ResponseWriter, r *http.Request) {
	sess := s.findSession(w, r)
	if sess == nil {
		return
	}
	var req promptReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sess.orch.SelectPrompt(req.PromptID)
	writeState(w, sess.orch.State())
}

type modelReq struct {
	Model string `json:"model"`
}

func (s *Server) handleSetModel(w http.ResponseWriter, r *http.Request) {
	sess := s.findSession(w, r)
	if sess == nil {
		return
	}
	var req modelReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sess.orch.SetModel(req.Model)
	writeState(w, sess.orch.State())
}

// -----------------------------------------------------------------------------
// /game/{id}/watch

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		allowed := getEnv("CLIENT_ORIGIN", "http://localhost:5173")
		return origin == "" || origin == allowed
	},
}

// handleWatch streams state snapshots over a websocket. The client receives
// the current state immediately, then one message per transition. Snapshots
// are dropped, not queued, when the client falls behind; the latest state
// always arrives eventually because every transition publishes.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	sess := s.findSession(w, r)
	if sess == nil {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade")
		return
	}

	updates := make(chan game.State, 16)
	cancel := sess.orch.Subscribe(func(st game.State) {
		select {
		case updates <- st:
		default:
		}
	})
	defer cancel()
	defer conn.Close()

	// Drain client frames so pings/close are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(sess.orch.State()); err != nil {
		return
	}
	for {
		select {
		case st := <-updates:
			if err := conn.WriteJSON(st); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

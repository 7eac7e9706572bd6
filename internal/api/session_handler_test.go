package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/crossplay/internal/api"
	"github.com/phrazzld/crossplay/internal/api/shared"
	"github.com/phrazzld/crossplay/internal/domain/game"
	"github.com/phrazzld/crossplay/internal/mocks"
	"github.com/phrazzld/crossplay/internal/platform/logger"
	"github.com/phrazzld/crossplay/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionRouter(t *testing.T) (http.Handler, service.GameService) {
	t.Helper()

	log, _ := logger.GetTestLogger(t)
	svc, err := service.NewGameService(
		mocks.NewMockSessionStore(),
		mocks.NewStackDealer(mocks.LandmarkDeck()),
		nil,
		service.Config{Settings: game.Settings{MaxPlayers: 4, HandSize: 2}, SessionTTL: time.Hour},
		log,
	)
	require.NoError(t, err)

	h := api.NewSessionHandler(svc, log)
	r := chi.NewRouter()
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Get("/", h.ListSessions)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Post("/players", h.AddPlayer)
			r.Delete("/players/{playerID}", h.RemovePlayer)
			r.Post("/start", h.StartGame)
			r.Post("/moves", h.ExecuteMove)
			r.Get("/insertion-points", h.InsertionPoints)
			r.Get("/state", h.GameState)
			r.Post("/reveal", h.RevealCards)
			r.Post("/rounds", h.StartNewRound)
			r.Post("/rounds/end", h.EndRound)
		})
	})
	return r, svc
}

func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[shared.ErrorResponse](t, rr).Error
}

// startedSession creates s1 with alice and bob and starts it.
func startedSession(t *testing.T, h http.Handler) {
	t.Helper()

	rr := doRequest(t, h, http.MethodPost, "/sessions", map[string]string{"id": "s1", "name": "Friday game"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	for _, p := range []map[string]string{{"player_id": "alice", "name": "Alice"}, {"player_id": "bob", "name": "Bob"}} {
		rr = doRequest(t, h, http.MethodPost, "/sessions/s1/players", p)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}
	rr = doRequest(t, h, http.MethodPost, "/sessions/s1/start", map[string]string{"player_id": "alice"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestNewSessionHandler_Panics(t *testing.T) {
	log, _ := logger.GetTestLogger(t)
	assert.Panics(t, func() { api.NewSessionHandler(nil, log) })
}

func TestSessionHandler_CreateSession(t *testing.T) {
	h, _ := newSessionRouter(t)

	tests := []struct {
		name    string
		body    interface{}
		status  int
		wantMsg string
	}{
		{name: "with id", body: map[string]string{"id": "table-1", "name": "Friday"}, status: http.StatusCreated},
		{name: "empty body generates id", body: nil, status: http.StatusCreated},
		{name: "duplicate id", body: map[string]string{"id": "table-1"}, status: http.StatusConflict, wantMsg: "Session already exists"},
		{name: "id with slash", body: map[string]string{"id": "a/b"}, status: http.StatusBadRequest, wantMsg: "Invalid id: validation failed"},
		{name: "unknown field", body: `{"colour":"red"}`, status: http.StatusBadRequest},
		{name: "malformed json", body: `{"id":`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, h, http.MethodPost, "/sessions", tt.body)
			require.Equal(t, tt.status, rr.Code, rr.Body.String())

			if tt.status == http.StatusCreated {
				resp := decode[api.SessionResponse](t, rr)
				assert.NotEmpty(t, resp.Session.ID)
				assert.Equal(t, game.StatusWaiting, resp.Session.Status)
				assert.Equal(t, 4, resp.Session.MaxPlayers)
				return
			}
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, errorMessage(t, rr))
			}
		})
	}
}

func TestSessionHandler_GetListDelete(t *testing.T) {
	h, _ := newSessionRouter(t)

	rr := doRequest(t, h, http.MethodGet, "/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Session not found", errorMessage(t, rr))

	for _, id := range []string{"a", "b"} {
		rr = doRequest(t, h, http.MethodPost, "/sessions", map[string]string{"id": id})
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr = doRequest(t, h, http.MethodGet, "/sessions/a", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "a", decode[api.SessionResponse](t, rr).Session.ID)

	rr = doRequest(t, h, http.MethodGet, "/sessions", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[api.SessionListResponse](t, rr)
	assert.Equal(t, 2, list.Count)

	rr = doRequest(t, h, http.MethodDelete, "/sessions/a", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = doRequest(t, h, http.MethodDelete, "/sessions/a", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doRequest(t, h, http.MethodGet, "/sessions", nil)
	assert.Equal(t, 1, decode[api.SessionListResponse](t, rr).Count)
}

func TestSessionHandler_Players(t *testing.T) {
	h, _ := newSessionRouter(t)
	rr := doRequest(t, h, http.MethodPost, "/sessions", map[string]string{"id": "s1"})
	require.Equal(t, http.StatusCreated, rr.Code)

	tests := []struct {
		name    string
		body    interface{}
		status  int
		wantMsg string
	}{
		{name: "join", body: map[string]string{"player_id": "alice", "name": "Alice"}, status: http.StatusCreated},
		{name: "duplicate", body: map[string]string{"player_id": "alice", "name": "Alice"}, status: http.StatusConflict, wantMsg: "Player already in session"},
		{name: "missing name", body: map[string]string{"player_id": "bob"}, status: http.StatusBadRequest, wantMsg: "Invalid name: required field"},
		{name: "empty body", body: nil, status: http.StatusBadRequest, wantMsg: "Request body is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, h, http.MethodPost, "/sessions/s1/players", tt.body)
			require.Equal(t, tt.status, rr.Code, rr.Body.String())
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, errorMessage(t, rr))
			}
		})
	}

	rr = doRequest(t, h, http.MethodPost, "/sessions/s1/start", map[string]string{"player_id": "alice"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "Not enough players", errorMessage(t, rr))

	rr = doRequest(t, h, http.MethodDelete, "/sessions/s1/players/alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, decode[api.SessionResponse](t, rr).Session.PlayerCount)

	rr = doRequest(t, h, http.MethodDelete, "/sessions/s1/players/alice", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSessionHandler_StartGame(t *testing.T) {
	h, _ := newSessionRouter(t)
	rr := doRequest(t, h, http.MethodPost, "/sessions", map[string]string{"id": "s1"})
	require.Equal(t, http.StatusCreated, rr.Code)
	for _, id := range []string{"alice", "bob"} {
		rr = doRequest(t, h, http.MethodPost, "/sessions/s1/players", map[string]string{"player_id": id, "name": id})
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr = doRequest(t, h, http.MethodPost, "/sessions/s1/start", map[string]string{"player_id": "mallory"})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "Only players can start the game", errorMessage(t, rr))

	rr = doRequest(t, h, http.MethodPost, "/sessions/s1/start", map[string]string{"player_id": "alice"})
	require.Equal(t, http.StatusOK, rr.Code)
	summary := decode[api.SessionResponse](t, rr).Session
	assert.Equal(t, game.StatusPlaying, summary.Status)
	assert.Equal(t, "alice", summary.CurrentPlayer)
	assert.Equal(t, 1, summary.Round)

	rr = doRequest(t, h, http.MethodPost, "/sessions/s1/players", map[string]string{"player_id": "carol", "name": "Carol"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "Game already in progress", errorMessage(t, rr))
}

func TestSessionHandler_MovesAndState(t *testing.T) {
	h, _ := newSessionRouter(t)
	startedSession(t, h)

	rr := doRequest(t, h, http.MethodGet, "/sessions/s1/insertion-points", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	points := decode[map[string][]map[string]interface{}](t, rr)
	require.Len(t, points["origin"], 1)

	origin := map[string]interface{}{"x": 0, "y": 0, "kind": "origin"}

	tests := []struct {
		name    string
		body    interface{}
		status  int
		wantMsg string
	}{
		{
			name:    "not your turn",
			body:    map[string]interface{}{"player_id": "bob", "card_id": "colosseum", "point": origin},
			status:  http.StatusConflict,
			wantMsg: "Not your turn",
		},
		{
			name:    "card not in hand",
			body:    map[string]interface{}{"player_id": "alice", "card_id": "burj", "point": origin},
			status:  http.StatusBadRequest,
			wantMsg: "Card not in hand",
		},
		{
			name:    "bad kind",
			body:    map[string]interface{}{"player_id": "alice", "card_id": "eiffel", "point": map[string]interface{}{"x": 0, "y": 0, "kind": "teleport"}},
			status:  http.StatusBadRequest,
			wantMsg: "Invalid kind: invalid value",
		},
		{
			name:   "origin",
			body:   map[string]interface{}{"player_id": "alice", "card_id": "eiffel", "point": origin},
			status: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, h, http.MethodPost, "/sessions/s1/moves", tt.body)
			require.Equal(t, tt.status, rr.Code, rr.Body.String())
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, errorMessage(t, rr))
			}
		})
	}

	rr = doRequest(t, h, http.MethodGet, "/sessions/s1/state?player_id=bob", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	view := decode[game.PlayerView](t, rr)
	assert.True(t, view.MyTurn)
	assert.Len(t, view.Hand, 2)
	require.Len(t, view.Board, 1)
	assert.Nil(t, view.Board[0].Width, "metrics stay hidden until reveal")

	rr = doRequest(t, h, http.MethodGet, "/sessions/s1/state", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[game.PlayerView](t, rr).Hand)

	// burj has no width, so it cannot extend the horizontal arm.
	rr = doRequest(t, h, http.MethodPost, "/sessions/s1/moves", map[string]interface{}{
		"player_id": "bob",
		"card_id":   "burj",
		"point":     map[string]interface{}{"x": 1, "y": 0, "kind": "extend"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	result := decode[game.MoveResult](t, rr)
	assert.False(t, result.Success)
	assert.True(t, result.GameEnded)
	assert.Equal(t, "bob", result.Loser)
	assert.NotEmpty(t, result.Reason)

	rr = doRequest(t, h, http.MethodPost, "/sessions/s1/reveal", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	revealed := decode[api.RevealResponse](t, rr)
	require.Len(t, revealed.Cards, 1)
	require.NotNil(t, revealed.Cards[0].Width)
	assert.Equal(t, 125.0, *revealed.Cards[0].Width)

	// A lost game is terminal.
	rr = doRequest(t, h, http.MethodPost, "/sessions/s1/rounds", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "Operation not allowed in current state", errorMessage(t, rr))
}

func TestSessionHandler_EndRound(t *testing.T) {
	h, svc := newSessionRouter(t)

	rr := doRequest(t, h, http.MethodPost, "/sessions", map[string]string{"id": "s1"})
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = doRequest(t, h, http.MethodPost, "/sessions/s1/rounds/end", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "Game not in progress", errorMessage(t, rr))

	rr = doRequest(t, h, http.MethodPost, "/sessions/s1/rounds", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "Operation not allowed in current state", errorMessage(t, rr))

	require.NoError(t, svc.DeleteSession(context.Background(), "s1"))
	startedSession(t, h)

	rr = doRequest(t, h, http.MethodPost, "/sessions/s1/rounds/end", map[string]string{"loser": "bob", "reason": "gave up"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	outcome := decode[game.RoundOutcome](t, rr)
	assert.Equal(t, "bob", outcome.Loser)
	assert.Equal(t, "gave up", outcome.Reason)
	assert.Empty(t, outcome.Revealed)

	rr = doRequest(t, h, http.MethodGet, "/sessions/s1", nil)
	summary := decode[api.SessionResponse](t, rr).Session
	assert.Equal(t, game.StatusRoundEnded, summary.Status)
	assert.Equal(t, "bob", summary.LastLoser)

	rr = doRequest(t, h, http.MethodPost, "/sessions/s1/rounds/end", map[string]string{"loser": "mallory"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = doRequest(t, h, http.MethodPost, "/sessions/s1/rounds", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	summary = decode[api.SessionResponse](t, rr).Session
	assert.Equal(t, game.StatusPlaying, summary.Status)
	assert.Equal(t, 2, summary.Round)
	assert.Equal(t, 0, summary.BoardCards)
	assert.Empty(t, summary.LastLoser)
}

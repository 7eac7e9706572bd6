package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/crossplay/internal/api/shared"
	"github.com/phrazzld/crossplay/internal/domain/game"
	"github.com/phrazzld/crossplay/internal/platform/logger"
	"github.com/phrazzld/crossplay/internal/service"
)

// SessionHandler handles session-related HTTP requests
type SessionHandler struct {
	gameService service.GameService
	logger      *slog.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(gameService service.GameService, logger *slog.Logger) *SessionHandler {
	if gameService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("gameService cannot be nil for SessionHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SessionHandler")
	}

	return &SessionHandler{
		gameService: gameService,
		logger:      logger.With(slog.String("component", "session_handler")),
	}
}

// CreateSession handles POST /sessions. The body is optional.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
		HandleValidationError(w, r, err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	summary, err := h.gameService.CreateSession(r.Context(), req.ID, game.Metadata{
		Name:      req.Name,
		CreatedBy: req.CreatedBy,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create session")
		return
	}

	log.Debug("session created", slog.String("session_id", summary.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, SessionResponse{Session: summary})
}

// ListSessions handles GET /sessions
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.gameService.ListSessions(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list sessions")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SessionListResponse{
		Sessions: summaries,
		Count:    len(summaries),
	})
}

// GetSession handles GET /sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := handlePathParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	summary, err := h.gameService.GetSession(r.Context(), sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get session")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SessionResponse{Session: summary})
}

// DeleteSession handles DELETE /sessions/{id}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := handlePathParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.gameService.DeleteSession(r.Context(), sessionID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddPlayer handles POST /sessions/{id}/players
func (h *SessionHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	sessionID, ok := handlePathParam(w, r, "id", log)
	if !ok {
		return
	}

	var req AddPlayerRequest
	if !parseAndValidateRequest(w, r, &req, log) {
		return
	}

	summary, err := h.gameService.AddPlayer(r.Context(), sessionID, req.PlayerID, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add player")
		return
	}

	log.Debug("player joined",
		slog.String("session_id", sessionID),
		slog.String("player_id", req.PlayerID))
	shared.RespondWithJSON(w, r, http.StatusCreated, SessionResponse{Session: summary})
}

// RemovePlayer handles DELETE /sessions/{id}/players/{playerID}
func (h *SessionHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := handlePathParam(w, r, "id", h.logger)
	if !ok {
		return
	}
	playerID, ok := handlePathParam(w, r, "playerID", h.logger)
	if !ok {
		return
	}

	summary, err := h.gameService.RemovePlayer(r.Context(), sessionID, playerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to remove player")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SessionResponse{Session: summary})
}

// StartGame handles POST /sessions/{id}/start
func (h *SessionHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	sessionID, ok := handlePathParam(w, r, "id", log)
	if !ok {
		return
	}

	var req StartGameRequest
	if !parseAndValidateRequest(w, r, &req, log) {
		return
	}

	summary, err := h.gameService.StartGame(r.Context(), sessionID, req.PlayerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start game")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SessionResponse{Session: summary})
}

// ExecuteMove handles POST /sessions/{id}/moves
// A rejected move is still a 200: the result reports the loser and reason.
func (h *SessionHandler) ExecuteMove(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	sessionID, ok := handlePathParam(w, r, "id", log)
	if !ok {
		return
	}

	var req MoveRequest
	if !parseAndValidateRequest(w, r, &req, log) {
		return
	}

	result, err := h.gameService.ExecuteMove(r.Context(), sessionID, req.PlayerID, req.CardID, req.Point.ToPoint())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to execute move")
		return
	}

	log.Debug("move executed",
		slog.String("session_id", sessionID),
		slog.String("player_id", req.PlayerID),
		slog.String("card_id", req.CardID),
		slog.Bool("success", result.Success))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// InsertionPoints handles GET /sessions/{id}/insertion-points
func (h *SessionHandler) InsertionPoints(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := handlePathParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	points, err := h.gameService.InsertionPoints(r.Context(), sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list insertion points")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, points)
}

// GameState handles GET /sessions/{id}/state?player_id=
// Without a player_id the public view is returned.
func (h *SessionHandler) GameState(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := handlePathParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	view, err := h.gameService.GameState(r.Context(), sessionID, r.URL.Query().Get("player_id"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get game state")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// RevealCards handles POST /sessions/{id}/reveal
func (h *SessionHandler) RevealCards(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := handlePathParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	cards, err := h.gameService.RevealCards(r.Context(), sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to reveal cards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RevealResponse{Cards: cards})
}

// StartNewRound handles POST /sessions/{id}/rounds
func (h *SessionHandler) StartNewRound(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := handlePathParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	summary, err := h.gameService.StartNewRound(r.Context(), sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start a new round")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SessionResponse{Session: summary})
}

// EndRound handles POST /sessions/{id}/rounds/end. The body is optional.
func (h *SessionHandler) EndRound(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := handlePathParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req EndRoundRequest
	if err := shared.DecodeJSON(r, &req); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
		HandleValidationError(w, r, err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	outcome, err := h.gameService.EndRound(r.Context(), sessionID, req.Loser, req.Reason)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to end round")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, outcome)
}

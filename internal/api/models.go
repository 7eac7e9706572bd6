package api

import (
	"time"

	"github.com/phrazzld/crossplay/internal/domain"
	"github.com/phrazzld/crossplay/internal/domain/board"
	"github.com/phrazzld/crossplay/internal/domain/game"
	"github.com/phrazzld/crossplay/internal/service"
)

// CreateSessionRequest defines the payload for creating a session.
// An empty ID lets the server generate one.
type CreateSessionRequest struct {
	ID        string `json:"id,omitempty"         validate:"omitempty,max=64,excludesall=/?#"`
	Name      string `json:"name,omitempty"       validate:"omitempty,max=80"`
	CreatedBy string `json:"created_by,omitempty" validate:"omitempty,max=64"`
}

// AddPlayerRequest defines the payload for joining a session.
type AddPlayerRequest struct {
	PlayerID string `json:"player_id" validate:"required,max=64"`
	Name     string `json:"name"      validate:"required,max=40"`
}

// StartGameRequest defines the payload for starting a session.
type StartGameRequest struct {
	PlayerID string `json:"player_id" validate:"required"`
}

// InsertionPointRequest identifies the cell a card is played into. The
// fields mirror board.InsertionPoint so a listed point can be sent back as is.
type InsertionPointRequest struct {
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Axis        string `json:"axis,omitempty"        validate:"omitempty,oneof=origin horizontal vertical"`
	Kind        string `json:"kind"                  validate:"required,oneof=origin extend gap shift"`
	ShiftsCards bool   `json:"shifts_cards,omitempty"`
	Description string `json:"description,omitempty"`
}

// ToPoint converts the request into a board insertion point. A missing axis
// is derived from the coordinates.
func (p InsertionPointRequest) ToPoint() board.InsertionPoint {
	axis := domain.Axis(p.Axis)
	if axis == "" {
		axis, _ = board.DetermineAxis(p.X, p.Y)
	}
	return board.InsertionPoint{
		X:           p.X,
		Y:           p.Y,
		Axis:        axis,
		Kind:        board.Kind(p.Kind),
		ShiftsCards: p.ShiftsCards,
		Description: p.Description,
	}
}

// MoveRequest defines the payload for playing a card.
type MoveRequest struct {
	PlayerID string                `json:"player_id" validate:"required"`
	CardID   string                `json:"card_id"   validate:"required"`
	Point    InsertionPointRequest `json:"point"`
}

// EndRoundRequest defines the payload for ending a round. An empty loser
// ends the round without a losing move.
type EndRoundRequest struct {
	Loser  string `json:"loser,omitempty"`
	Reason string `json:"reason,omitempty" validate:"omitempty,max=200"`
}

// SessionResponse wraps a session summary.
type SessionResponse struct {
	Session service.SessionSummary `json:"session"`
}

// SessionListResponse lists session summaries.
type SessionListResponse struct {
	Sessions []service.SessionSummary `json:"sessions"`
	Count    int                      `json:"count"`
}

// RevealResponse lists every placed card with both metrics.
type RevealResponse struct {
	Cards []game.RevealedCard `json:"cards"`
}

// CardListResponse lists catalog cards.
type CardListResponse struct {
	Cards []domain.CardDefinition `json:"cards"`
	Count int                     `json:"count"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

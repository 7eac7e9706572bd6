package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Session lifecycle event types.
const (
	SessionCreated  = "sessionCreated"
	PlayerJoined    = "playerJoined"
	PlayerLeft      = "playerLeft"
	GameStarted     = "gameStarted"
	MoveExecuted    = "moveExecuted"
	MoveRejected    = "moveRejected"
	CardsRevealed   = "cardsRevealed"
	NewRoundStarted = "newRoundStarted"
	RoundEnded      = "roundEnded"
	SessionDeleted  = "sessionDeleted"
)

// GameEvent describes a change to one game session.
type GameEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the session lifecycle event types
	Type string `json:"type"`

	// SessionID identifies the session the event belongs to
	SessionID string `json:"session_id"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload,omitempty"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *GameEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewGameEvent creates a new GameEvent with the specified type, session and payload.
// A nil payload produces an event without one.
func NewGameEvent(eventType, sessionID string, payload interface{}) (*GameEvent, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = b
	}

	return &GameEvent{
		ID:        uuid.New(),
		Type:      eventType,
		SessionID: sessionID,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *GameEvent) error
}

// EventHandlerFunc adapts an ordinary function to the EventHandler interface.
type EventHandlerFunc func(ctx context.Context, event *GameEvent) error

// HandleEvent calls f(ctx, event).
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *GameEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *GameEvent) error
}

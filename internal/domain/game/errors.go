package game

import "errors"

// Session errors.
var (
	ErrPlayerExists      = errors.New("player already in session")
	ErrSessionFull       = errors.New("session is full")
	ErrGameInProgress    = errors.New("game already in progress")
	ErrPlayerNotFound    = errors.New("player not in session")
	ErrNotEnoughPlayers  = errors.New("not enough players")
	ErrNotAPlayer        = errors.New("only players can start the game")
	ErrGameNotInProgress = errors.New("game not in progress")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrHandNotFound      = errors.New("player hand not found")
	ErrCardNotInHand     = errors.New("card not in hand")

	// ErrInvalidState is returned when an operation is not allowed in the
	// current lifecycle status.
	ErrInvalidState = errors.New("operation not allowed in current state")

	// ErrInvalidSnapshot is returned when a snapshot cannot be restored.
	ErrInvalidSnapshot = errors.New("invalid session snapshot")
)

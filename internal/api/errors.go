package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/crossplay/internal/api/shared"
	"github.com/phrazzld/crossplay/internal/domain"
	"github.com/phrazzld/crossplay/internal/domain/game"
	"github.com/phrazzld/crossplay/internal/service"
	"github.com/phrazzld/crossplay/internal/store"
)

// ErrCardNotFound is returned when a catalog card does not exist.
var ErrCardNotFound = errors.New("card not found")

// playerFacing maps session errors to the messages players see.
var playerFacing = []struct {
	err     error
	message string
}{
	{game.ErrPlayerExists, "Player already in session"},
	{game.ErrSessionFull, "Session is full"},
	{game.ErrGameInProgress, "Game already in progress"},
	{game.ErrPlayerNotFound, "Player not in session"},
	{game.ErrNotEnoughPlayers, "Not enough players"},
	{game.ErrNotAPlayer, "Only players can start the game"},
	{game.ErrGameNotInProgress, "Game not in progress"},
	{game.ErrNotYourTurn, "Not your turn"},
	{game.ErrHandNotFound, "Player hand not found"},
	{game.ErrCardNotInHand, "Card not in hand"},
}

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var validationErr *domain.ValidationError
	var fieldErrs validator.ValidationErrors

	switch {
	// Not found errors
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, game.ErrPlayerNotFound),
		errors.Is(err, game.ErrHandNotFound),
		errors.Is(err, ErrCardNotFound):
		return http.StatusNotFound

	// Authorization errors
	case errors.Is(err, game.ErrNotAPlayer):
		return http.StatusForbidden

	// Conflict errors
	case errors.Is(err, service.ErrSessionExists),
		errors.Is(err, store.ErrDuplicate),
		errors.Is(err, game.ErrPlayerExists),
		errors.Is(err, game.ErrSessionFull),
		errors.Is(err, game.ErrGameInProgress),
		errors.Is(err, game.ErrNotEnoughPlayers),
		errors.Is(err, game.ErrGameNotInProgress),
		errors.Is(err, game.ErrNotYourTurn),
		errors.Is(err, game.ErrInvalidState):
		return http.StatusConflict

	// Bad request errors
	case errors.As(err, &validationErr),
		errors.As(err, &fieldErrs),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidFormat),
		errors.Is(err, domain.ErrInvalidAxis),
		errors.Is(err, game.ErrCardNotInHand),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) && validationErr.Field != "" {
		return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)
	}

	for _, pf := range playerFacing {
		if errors.Is(err, pf.err) {
			return pf.message
		}
	}

	var fieldErrs validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return "Session not found"
	case errors.Is(err, service.ErrSessionExists):
		return "Session already exists"
	case errors.Is(err, ErrCardNotFound):
		return "Card not found"
	case errors.Is(err, game.ErrInvalidState):
		return "Operation not allowed in current state"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.As(err, &fieldErrs):
		return SanitizeValidationError(err)
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, domain.ErrInvalidAxis):
		return "Invalid axis"
	case errors.Is(err, domain.ErrValidation):
		return "Validation failed"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}

	// Example: "Key: 'AddPlayerRequest.Name' Error:Field validation for 'Name' failed on the 'required' tag"
	errMsg := err.Error()
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				if len(fieldParts) >= 5 {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(fieldParts[3]))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "uuid", "uuid4":
		return "invalid ID format"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err. For internal
// errors defaultMsg replaces the generic message when set.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		message = defaultMsg
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// HandleValidationError writes a 400 response for a request that failed
// decoding or validation.
func HandleValidationError(w http.ResponseWriter, r *http.Request, err error) {
	var message string
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr) && validationErr.Field != "":
		message = fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)
	case errors.Is(err, shared.ErrEmptyBody):
		message = "Request body is required"
	default:
		message = SanitizeValidationError(err)
	}

	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, message, err)
}

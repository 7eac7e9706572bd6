package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/crossplay/internal/api/shared"
	"github.com/phrazzld/crossplay/internal/domain"
	"github.com/phrazzld/crossplay/internal/platform/logger"
)

// getPathParam extracts a required path parameter.
func getPathParam(r *http.Request, name string) (string, error) {
	value := strings.TrimSpace(chi.URLParam(r, name))
	if value == "" {
		return "", domain.NewValidationError(name, "is required", domain.ErrValidation)
	}
	return value, nil
}

// handlePathParam extracts a path parameter and writes a 400 response when it
// is missing.
func handlePathParam(w http.ResponseWriter, r *http.Request, name string, log *slog.Logger) (string, bool) {
	value, err := getPathParam(r, name)
	if err != nil {
		if log == nil {
			log = logger.FromContextOrDefault(r.Context(), slog.Default())
		}
		log.Debug("missing path parameter", slog.String("param_name", name))
		HandleValidationError(w, r, err)
		return "", false
	}
	return value, true
}

// parseAndValidateRequest decodes the JSON body into req and validates it.
// On failure it writes the error response and returns false.
func parseAndValidateRequest(w http.ResponseWriter, r *http.Request, req interface{}, log *slog.Logger) bool {
	if log == nil {
		log = logger.FromContextOrDefault(r.Context(), slog.Default())
	}

	if err := shared.DecodeJSON(r, req); err != nil {
		log.Debug("invalid request body", slog.String("error", err.Error()))
		HandleValidationError(w, r, err)
		return false
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Debug("request validation failed", slog.String("error", err.Error()))
		HandleValidationError(w, r, err)
		return false
	}

	return true
}

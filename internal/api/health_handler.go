package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/crossplay/internal/api/shared"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves GET /health.
type HealthHandler struct {
	db     Pinger
	logger *slog.Logger
	now    func() time.Time
}

// NewHealthHandler creates a HealthHandler. A nil db reports the database as
// not configured.
func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		db:     db,
		logger: logger.With(slog.String("component", "health_handler")),
		now:    time.Now,
	}
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Database: "not_configured", Timestamp: h.now().UTC()}
	status := http.StatusOK

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Warn("health check database ping failed", slog.String("error", err.Error()))
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}

	shared.RespondWithJSON(w, r, status, resp)
}

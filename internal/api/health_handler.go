package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/careplan-api/internal/api/shared"
	"github.com/phrazzld/careplan-api/internal/platform/logger"
	"github.com/phrazzld/careplan-api/internal/redact"
	"github.com/phrazzld/careplan-api/internal/store"
)

const healthPingTimeout = 2 * time.Second

// HealthHandler reports service liveness.
type HealthHandler struct {
	db     store.Pinger
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler that pings db.
func NewHealthHandler(db store.Pinger, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{db: db, logger: logger.With(slog.String("component", "health_handler"))}
}

// Health handles GET /health. It answers 503 when storage is unreachable.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).
			Error("storage ping failed", "error", redact.Error(err))
		shared.RespondWithJSON(w, r, http.StatusServiceUnavailable, HealthResponse{
			Status:   "unavailable",
			Database: "unreachable",
		})
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok", Database: "ok"})
}

package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/careplan-api/internal/apperr"
	"github.com/phrazzld/careplan-api/internal/platform/logger"
	"github.com/phrazzld/careplan-api/internal/redact"
)

// ErrorResponse defines the standard error response structure.
type ErrorResponse struct {
	Type         string         `json:"type"`
	Code         string         `json:"code"`
	Message      string         `json:"message"`
	Detail       map[string]any `json:"detail,omitempty"`
	NeedsConfirm bool           `json:"needs_confirm,omitempty"`
	TraceID      string         `json:"trace_id,omitempty"`
}

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContextOrDefault(r.Context(), slog.Default()).
			Error("failed to encode JSON response", "error", err)
	}
}

// RespondWithError writes the JSON body of an application error. The cause is
// logged redacted and never reaches the client.
//
// Log level strategy:
//   - 5xx errors: ERROR
//   - 401 and 409: WARN
//   - everything else: DEBUG
func RespondWithError(w http.ResponseWriter, r *http.Request, appErr *apperr.Error) {
	traceID := GetTraceID(r.Context())

	body := ErrorResponse{
		Type:         string(appErr.Kind),
		Code:         appErr.Code,
		Message:      appErr.Message,
		Detail:       appErr.Detail,
		NeedsConfirm: appErr.NeedsConfirmation(),
		TraceID:      traceID,
	}

	logAttrs := []slog.Attr{
		slog.String("trace_id", traceID),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", appErr.Status),
		slog.String("code", appErr.Code),
	}
	if appErr.Err != nil {
		logAttrs = append(logAttrs,
			slog.String("error", redact.Error(appErr.Err)),
			slog.String("error_type", fmt.Sprintf("%T", appErr.Err)))
	}

	level := slog.LevelDebug
	switch {
	case appErr.Status >= http.StatusInternalServerError:
		level = slog.LevelError
	case appErr.Status == http.StatusUnauthorized, appErr.Status == http.StatusConflict:
		level = slog.LevelWarn
	}

	log := logger.FromContextOrDefault(r.Context(), slog.Default())
	log.LogAttrs(r.Context(), level, "API error response", logAttrs...)

	RespondWithJSON(w, r, appErr.Status, body)
}

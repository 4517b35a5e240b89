package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/careplan-api/internal/api/shared"
	"github.com/phrazzld/careplan-api/internal/apperr"
	"github.com/phrazzld/careplan-api/internal/platform/logger"
	"github.com/phrazzld/careplan-api/internal/service/auth"
)

// ClientAuthenticator checks API client credentials.
type ClientAuthenticator interface {
	Authenticate(clientID, secret string) error
}

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	authenticator ClientAuthenticator
	jwtService    auth.JWTService
	logger        *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	authenticator ClientAuthenticator,
	jwtService auth.JWTService,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		authenticator: authenticator,
		jwtService:    jwtService,
		logger:        logger.With(slog.String("component", "auth_handler")),
	}
}

// Token handles POST /api/auth/token. It exchanges client credentials for a
// bearer token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if err := h.authenticator.Authenticate(req.ClientID, req.ClientSecret); err != nil {
		HandleAPIError(w, r, apperr.Unauthorized(apperr.CodeInvalidCredentials,
			"Invalid client credentials", err))
		return
	}

	token, expiresAt, err := h.jwtService.GenerateToken(r.Context(), req.ClientID)
	if err != nil {
		log.Error("failed to generate token", "error", err)
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
	})
}

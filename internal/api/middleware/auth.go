package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/phrazzld/careplan-api/internal/api/shared"
	"github.com/phrazzld/careplan-api/internal/apperr"
	"github.com/phrazzld/careplan-api/internal/service/auth"
)

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	jwtService auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

// Authenticate validates bearer tokens and adds the client id to the request
// context of authorized requests.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, apperr.Unauthorized(apperr.CodeUnauthorized,
				"Authorization header required", nil))
			return
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			shared.RespondWithError(w, r, apperr.Unauthorized(apperr.CodeUnauthorized,
				"Invalid authorization format", nil))
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				shared.RespondWithError(w, r, apperr.Unauthorized(apperr.CodeTokenExpired,
					"Token expired", err))
				return
			}
			shared.RespondWithError(w, r, apperr.Unauthorized(apperr.CodeUnauthorized,
				"Invalid token", err))
			return
		}

		ctx := shared.WithClientID(r.Context(), claims.ClientID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

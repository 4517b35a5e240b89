package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/careplan-api/internal/apperr"
	"github.com/phrazzld/careplan-api/internal/config"
	"github.com/phrazzld/careplan-api/internal/mocks"
	"github.com/phrazzld/careplan-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator struct {
	clientID string
	secret   string
}

func (s stubAuthenticator) Authenticate(clientID, secret string) error {
	if clientID != s.clientID || secret != s.secret {
		return auth.ErrInvalidCredentials
	}
	return nil
}

func tokenRouter(h *AuthHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/auth/token", h.Token)
	return r
}

func TestAuthHandler_Token(t *testing.T) {
	t.Parallel()

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "test-secret-that-is-at-least-32-characters",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)
	authenticator := stubAuthenticator{clientID: "intake-portal", secret: "s3cret-value"}
	router := tokenRouter(NewAuthHandler(authenticator, jwtService, discardLogger()))

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()
		rec := serve(t, router, http.MethodPost, "/api/auth/token", TokenRequest{
			ClientID: "intake-portal", ClientSecret: "s3cret-value",
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decodeBody[TokenResponse](t, rec)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.NotEmpty(t, resp.AccessToken)

		expiresAt, err := time.Parse(time.RFC3339, resp.ExpiresAt)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

		claims, err := jwtService.ValidateToken(context.Background(), resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "intake-portal", claims.ClientID)
	})

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()
		rec := serve(t, router, http.MethodPost, "/api/auth/token", TokenRequest{
			ClientID: "intake-portal", ClientSecret: "guess",
		})

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, "unauthorized", body.Type)
		assert.Equal(t, apperr.CodeInvalidCredentials, body.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()
		rec := serve(t, router, http.MethodPost, "/api/auth/token", map[string]string{"client_id": "x"})

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec).Message, "client_secret")
	})
}

func TestAuthHandler_TokenSigningFailure(t *testing.T) {
	t.Parallel()

	authenticator := stubAuthenticator{clientID: "intake-portal", secret: "s3cret-value"}
	jwtService := mocks.FailingJWTService(errors.New("signing key unavailable"))
	router := tokenRouter(NewAuthHandler(authenticator, jwtService, discardLogger()))

	rec := serve(t, router, http.MethodPost, "/api/auth/token", TokenRequest{
		ClientID: "intake-portal", ClientSecret: "s3cret-value",
	})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apperr.CodeInternal, decodeError(t, rec).Code)
	assert.NotContains(t, rec.Body.String(), "signing key")
}

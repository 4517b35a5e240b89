package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phrazzld/careplan-api/internal/api/shared"
	"github.com/phrazzld/careplan-api/internal/apperr"
	"github.com/phrazzld/careplan-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokenTable maps token strings to validation outcomes.
type tokenTable map[string]error

func (tokenTable) GenerateToken(context.Context, string) (string, time.Time, error) {
	return "", time.Time{}, nil
}

func (t tokenTable) ValidateToken(_ context.Context, token string) (*auth.Claims, error) {
	err, ok := t[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return &auth.Claims{ClientID: "intake-portal", TokenType: "access"}, nil
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	mw := NewAuthMiddleware(tokenTable{
		"good":    nil,
		"expired": auth.ErrExpiredToken,
		"wrong":   auth.ErrWrongTokenType,
	})

	var seenClient string
	protected := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenClient, _ = shared.GetClientID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantErr  string
	}{
		{"valid token", "Bearer good", http.StatusNoContent, ""},
		{"lowercase scheme", "bearer good", http.StatusNoContent, ""},
		{"missing header", "", http.StatusUnauthorized, apperr.CodeUnauthorized},
		{"wrong scheme", "Basic Zm9vOmJhcg==", http.StatusUnauthorized, apperr.CodeUnauthorized},
		{"no token", "Bearer ", http.StatusUnauthorized, apperr.CodeUnauthorized},
		{"expired token", "Bearer expired", http.StatusUnauthorized, apperr.CodeTokenExpired},
		{"wrong token type", "Bearer wrong", http.StatusUnauthorized, apperr.CodeUnauthorized},
		{"unknown token", "Bearer forged", http.StatusUnauthorized, apperr.CodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seenClient = ""
			req := httptest.NewRequest(http.MethodGet, "/api/careplans", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			protected.ServeHTTP(rec, req)

			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantErr == "" {
				assert.Equal(t, "intake-portal", seenClient)
				return
			}
			assert.Empty(t, seenClient)
			var body shared.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "unauthorized", body.Type)
			assert.Equal(t, tt.wantErr, body.Code)
		})
	}
}

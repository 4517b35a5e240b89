package auth

import (
	"context"
	"time"
)

// JWTService defines operations for managing API access tokens issued to
// clients.
type JWTService interface {
	// GenerateToken creates a signed JWT access token for the client.
	// Returns the token string and its expiry.
	GenerateToken(ctx context.Context, clientID string) (string, time.Time, error)

	// ValidateToken validates the provided access token string and extracts the claims.
	// Returns ErrExpiredToken, ErrInvalidToken or ErrWrongTokenType when
	// validation fails.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the validated content of an access token.
type Claims struct {
	// ClientID is the API client the token was issued to.
	ClientID string `json:"sub,omitempty"`

	// TokenType is always "access".
	TokenType string `json:"type,omitempty"`

	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}

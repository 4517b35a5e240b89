package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/phrazzld/careplan-api/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// SecretVerifier compares a stored secret hash with a presented secret.
type SecretVerifier interface {
	// Compare returns nil when secret matches hashedSecret.
	Compare(hashedSecret, secret string) error
}

// BcryptVerifier implements SecretVerifier using bcrypt.
type BcryptVerifier struct{}

// NewBcryptVerifier creates a new BcryptVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Compare implements the SecretVerifier interface using bcrypt.
func (v *BcryptVerifier) Compare(hashedSecret, secret string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedSecret), []byte(secret))
}

// HashSecret returns the bcrypt hash of secret, for client_secret_hash.
func HashSecret(secret string, cost int) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", fmt.Errorf("secret cannot be empty")
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hash), nil
}

// ClientAuthenticator checks client credentials against the single configured
// API client.
type ClientAuthenticator struct {
	clientID   string
	secretHash string
	verifier   SecretVerifier
}

// NewClientAuthenticator creates an authenticator from the auth settings.
func NewClientAuthenticator(cfg config.AuthConfig, verifier SecretVerifier) (*ClientAuthenticator, error) {
	if cfg.ClientID == "" || cfg.ClientSecretHash == "" {
		return nil, fmt.Errorf("%w: client_id and client_secret_hash are required", ErrAuthNotConfigured)
	}
	return &ClientAuthenticator{
		clientID:   cfg.ClientID,
		secretHash: cfg.ClientSecretHash,
		verifier:   verifier,
	}, nil
}

// Authenticate returns ErrInvalidCredentials unless clientID and secret match.
func (a *ClientAuthenticator) Authenticate(clientID, secret string) error {
	if subtle.ConstantTimeCompare([]byte(clientID), []byte(a.clientID)) != 1 {
		return ErrInvalidCredentials
	}
	if err := a.verifier.Compare(a.secretHash, secret); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

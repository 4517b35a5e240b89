package auth

import (
	"testing"

	"github.com/phrazzld/careplan-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashSecret(t *testing.T) {
	t.Parallel()

	hash, err := HashSecret("s3cret-value", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NoError(t, NewBcryptVerifier().Compare(hash, "s3cret-value"))
	assert.Error(t, NewBcryptVerifier().Compare(hash, "other"))

	_, err = HashSecret("  ", bcrypt.MinCost)
	assert.Error(t, err)
}

func TestClientAuthenticator(t *testing.T) {
	t.Parallel()

	hash, err := HashSecret("s3cret-value", bcrypt.MinCost)
	require.NoError(t, err)

	_, err = NewClientAuthenticator(config.AuthConfig{ClientID: "portal"}, NewBcryptVerifier())
	assert.ErrorIs(t, err, ErrAuthNotConfigured)

	a, err := NewClientAuthenticator(config.AuthConfig{
		ClientID:         "portal",
		ClientSecretHash: hash,
	}, NewBcryptVerifier())
	require.NoError(t, err)

	assert.NoError(t, a.Authenticate("portal", "s3cret-value"))
	assert.ErrorIs(t, a.Authenticate("portal", "wrong"), ErrInvalidCredentials)
	assert.ErrorIs(t, a.Authenticate("intruder", "s3cret-value"), ErrInvalidCredentials)
}

package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in the future)
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrWrongTokenType indicates a token issued for another purpose
	ErrWrongTokenType = errors.New("wrong authentication token type")

	// ErrInvalidCredentials indicates an unknown client or a wrong secret
	ErrInvalidCredentials = errors.New("invalid client credentials")

	// ErrAuthNotConfigured indicates authentication is enabled without the
	// settings it needs
	ErrAuthNotConfigured = errors.New("authentication is not configured")
)

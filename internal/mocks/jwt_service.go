package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/phrazzld/careplan-api/internal/service/auth"
)

// MockJWTService implements auth.JWTService for testing.
type MockJWTService struct {
	GenerateTokenFn func(ctx context.Context, clientID string) (string, time.Time, error)
	ValidateTokenFn func(ctx context.Context, token string) (*auth.Claims, error)
}

// GenerateToken implements auth.JWTService.
func (m *MockJWTService) GenerateToken(ctx context.Context, clientID string) (string, time.Time, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, clientID)
	}
	return "mock-token-" + clientID, time.Now().Add(time.Hour), nil
}

// ValidateToken implements auth.JWTService.
func (m *MockJWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, token)
	}
	return nil, auth.ErrInvalidToken
}

// FailingJWTService returns a MockJWTService whose token generation fails with err.
func FailingJWTService(err error) *MockJWTService {
	if err == nil {
		err = errors.New("token generation failed")
	}
	return &MockJWTService{
		GenerateTokenFn: func(context.Context, string) (string, time.Time, error) {
			return "", time.Time{}, err
		},
	}
}

package store

import (
	"context"

	"github.com/phrazzld/careplan-api/internal/domain"
)

// ProviderStore defines the interface for provider persistence.
type ProviderStore interface {
	// Create saves a new provider.
	// Returns ErrNPIExists if another provider already holds the NPI.
	Create(ctx context.Context, provider *domain.Provider) error

	// GetByNPI retrieves a provider by license number.
	// Returns ErrProviderNotFound if none exists.
	GetByNPI(ctx context.Context, npi string) (*domain.Provider, error)
}

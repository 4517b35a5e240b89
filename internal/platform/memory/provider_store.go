package memory

import (
	"context"
	"fmt"

	"github.com/phrazzld/careplan-api/internal/domain"
	"github.com/phrazzld/careplan-api/internal/store"
)

// ProviderStore implements store.ProviderStore in memory.
type ProviderStore struct {
	db *DB
}

var _ store.ProviderStore = (*ProviderStore)(nil)

// Create implements store.ProviderStore.Create.
func (s *ProviderStore) Create(_ context.Context, p *domain.Provider) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, existing := range s.db.state.providers {
		if existing.NPI == p.NPI {
			return store.ErrNPIExists
		}
	}
	s.db.state.providers[p.ID] = *p
	return nil
}

// GetByNPI implements store.ProviderStore.GetByNPI.
func (s *ProviderStore) GetByNPI(_ context.Context, npi string) (*domain.Provider, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, p := range s.db.state.providers {
		if p.NPI == npi {
			found := p
			return &found, nil
		}
	}
	return nil, store.ErrProviderNotFound
}

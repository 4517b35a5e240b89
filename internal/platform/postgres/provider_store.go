package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/careplan-api/internal/domain"
	"github.com/phrazzld/careplan-api/internal/platform/logger"
	"github.com/phrazzld/careplan-api/internal/store"
)

// PostgresProviderStore implements the store.ProviderStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProviderStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProviderStore creates a new PostgreSQL implementation of the ProviderStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresProviderStore(db store.DBTX, logger *slog.Logger) *PostgresProviderStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProviderStore{
		db:     db,
		logger: logger.With(slog.String("component", "provider_store")),
	}
}

// Ensure PostgresProviderStore implements store.ProviderStore interface
var _ store.ProviderStore = (*PostgresProviderStore)(nil)

// Create implements store.ProviderStore.Create
func (s *PostgresProviderStore) Create(ctx context.Context, provider *domain.Provider) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := provider.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO providers (id, name, npi, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query,
		provider.ID,
		provider.Name,
		provider.NPI,
		provider.CreatedAt,
	)
	if err != nil {
		log.Debug("failed to insert provider",
			slog.String("npi", provider.NPI),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Debug("provider created", slog.String("provider_id", provider.ID.String()))
	return nil
}

// GetByNPI implements store.ProviderStore.GetByNPI
func (s *PostgresProviderStore) GetByNPI(ctx context.Context, npi string) (*domain.Provider, error) {
	query := `
		SELECT id, name, npi, created_at
		FROM providers
		WHERE npi = $1
	`
	var p domain.Provider
	err := s.db.QueryRowContext(ctx, query, npi).Scan(&p.ID, &p.Name, &p.NPI, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProviderNotFound
		}
		return nil, MapError(err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

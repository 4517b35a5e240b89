package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/careplan-api/internal/domain"
	"github.com/phrazzld/careplan-api/internal/platform/logger"
	"github.com/phrazzld/careplan-api/internal/store"
)

// PostgresOrderStore implements the store.OrderStore interface
// using a PostgreSQL database as the storage backend.
//
// The normalized medication and the UTC order date are stored alongside the
// order so orders_same_day_key can reject same-day duplicates.
type PostgresOrderStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresOrderStore creates a new PostgreSQL implementation of the OrderStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresOrderStore(db store.DBTX, logger *slog.Logger) *PostgresOrderStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresOrderStore{
		db:     db,
		logger: logger.With(slog.String("component", "order_store")),
	}
}

// Ensure PostgresOrderStore implements store.OrderStore interface
var _ store.OrderStore = (*PostgresOrderStore)(nil)

// Create implements store.OrderStore.Create
func (s *PostgresOrderStore) Create(ctx context.Context, order *domain.Order) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := order.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO orders (id, patient_id, provider_id, medication_name, medication_key,
			icd10_code, order_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		order.ID,
		order.PatientID,
		order.ProviderID,
		order.MedicationName,
		domain.NormalizeMedication(order.MedicationName),
		order.ICD10Code,
		order.OrderDate(),
		order.CreatedAt,
	)
	if err != nil {
		log.Debug("failed to insert order",
			slog.String("patient_id", order.PatientID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Debug("order created", slog.String("order_id", order.ID.String()))
	return nil
}

// ListByPatientAndMedication implements store.OrderStore.ListByPatientAndMedication
func (s *PostgresOrderStore) ListByPatientAndMedication(
	ctx context.Context,
	patientID uuid.UUID,
	medication string,
) ([]*domain.Order, error) {
	query := `
		SELECT id, patient_id, provider_id, medication_name, icd10_code, created_at
		FROM orders
		WHERE patient_id = $1 AND medication_key = $2
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, patientID, domain.NormalizeMedication(medication))
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var orders []*domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID,
			&o.PatientID,
			&o.ProviderID,
			&o.MedicationName,
			&o.ICD10Code,
			&o.CreatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		o.CreatedAt = o.CreatedAt.UTC()
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return orders, nil
}

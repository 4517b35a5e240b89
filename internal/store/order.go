package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/careplan-api/internal/domain"
)

// OrderStore defines the interface for order persistence.
type OrderStore interface {
	// Create saves a new order.
	// Returns ErrSameDayOrderExists if the patient already has an order for the
	// same medication on the order's date.
	Create(ctx context.Context, order *domain.Order) error

	// ListByPatientAndMedication returns the patient's orders for a medication,
	// compared with domain.NormalizeMedication, newest first.
	ListByPatientAndMedication(ctx context.Context, patientID uuid.UUID, medication string) ([]*domain.Order, error)
}

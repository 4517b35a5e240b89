package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/careplan-api/internal/domain"
)

// CarePlanStore defines the interface for care plan persistence. Status
// changes are conditional single-row updates so concurrent workers never both
// act on one plan.
type CarePlanStore interface {
	// Create saves a new care plan.
	// Returns ErrActiveCarePlanExists if an order-less plan is already in
	// flight for the patient.
	Create(ctx context.Context, plan *domain.CarePlan) error

	// GetByID retrieves a care plan by ID.
	// Returns ErrCarePlanNotFound if none exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CarePlan, error)

	// GetDetail retrieves a care plan joined with its patient, order and provider.
	// Returns ErrCarePlanNotFound if none exists.
	GetDetail(ctx context.Context, id uuid.UUID) (*domain.CarePlanDetail, error)

	// List returns care plans newest first. A non-empty query keeps plans whose
	// patient first or last name, medication, ICD-10 code or provider name
	// contains it, case-insensitively.
	List(ctx context.Context, query string) ([]*domain.CarePlanDetail, error)

	// HasActiveForPatient reports whether the patient has a pending or
	// processing care plan.
	HasActiveForPatient(ctx context.Context, patientID uuid.UUID) (bool, error)

	// Claim atomically moves a pending plan to processing and returns it.
	// Returns ErrStateConflict if the plan is not pending, ErrCarePlanNotFound
	// if it does not exist.
	Claim(ctx context.Context, id uuid.UUID) (*domain.CarePlan, error)

	// RecordAttempt increments the attempt counter of a processing plan and
	// returns the new count.
	RecordAttempt(ctx context.Context, id uuid.UUID) (int, error)

	// Complete moves a processing plan to completed with the generated content.
	Complete(ctx context.Context, id uuid.UUID, content string) error

	// Fail moves a processing plan to failed with a failure reason.
	Fail(ctx context.Context, id uuid.UUID, reason string) error

	// ResetToPending moves a processing plan back to pending.
	ResetToPending(ctx context.Context, id uuid.UUID) error

	// ListByStatus returns plans in the given status whose last update is older
	// than olderThan. A zero olderThan returns all of them.
	ListByStatus(ctx context.Context, status domain.CarePlanStatus, olderThan time.Duration) ([]*domain.CarePlan, error)
}

package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CarePlanStatus represents the lifecycle state of a care plan.
type CarePlanStatus string

// Possible care plan status values
const (
	CarePlanStatusPending    CarePlanStatus = "pending"
	CarePlanStatusProcessing CarePlanStatus = "processing"
	CarePlanStatusCompleted  CarePlanStatus = "completed"
	CarePlanStatusFailed     CarePlanStatus = "failed"
)

// Care plan validation errors
var (
	ErrEmptyCarePlanID        = fmt.Errorf("%w: care plan ID cannot be empty", ErrValidation)
	ErrEmptyCarePlanPatientID = fmt.Errorf("%w: care plan patient ID cannot be empty", ErrValidation)
	ErrInvalidCarePlanStatus  = fmt.Errorf("%w: invalid care plan status", ErrValidation)
	ErrInvalidTransition      = fmt.Errorf("%w: invalid care plan status transition", ErrValidation)
)

// IsValid reports whether s is a known status.
func (s CarePlanStatus) IsValid() bool {
	switch s {
	case CarePlanStatusPending, CarePlanStatusProcessing,
		CarePlanStatusCompleted, CarePlanStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions can occur from s.
func (s CarePlanStatus) IsTerminal() bool {
	return s == CarePlanStatusCompleted || s == CarePlanStatusFailed
}

// IsActive reports whether a care plan in status s is still in flight.
func (s CarePlanStatus) IsActive() bool {
	return s == CarePlanStatusPending || s == CarePlanStatusProcessing
}

// CanTransition reports whether a care plan may move from one status to another.
// processing -> processing is a retry; processing -> pending is a recovery reset.
func CanTransition(from, to CarePlanStatus) bool {
	switch from {
	case CarePlanStatusPending:
		return to == CarePlanStatusProcessing
	case CarePlanStatusProcessing:
		return to == CarePlanStatusProcessing || to == CarePlanStatusPending ||
			to == CarePlanStatusCompleted || to == CarePlanStatusFailed
	default:
		return false
	}
}

// CarePlan is one asynchronous generation request. Content holds the generated
// document once completed, or the failure reason once failed.
type CarePlan struct {
	ID        uuid.UUID      `json:"id"`
	PatientID uuid.UUID      `json:"patient_id"`
	OrderID   *uuid.UUID     `json:"order_id,omitempty"`
	Status    CarePlanStatus `json:"status"`
	Content   string         `json:"content"`
	Attempts  int            `json:"attempts"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewCarePlan creates a pending care plan for a patient. orderID is nil for
// plans admitted without an order.
func NewCarePlan(patientID uuid.UUID, orderID *uuid.UUID, at time.Time) (*CarePlan, error) {
	cp := &CarePlan{
		ID:        uuid.New(),
		PatientID: patientID,
		OrderID:   orderID,
		Status:    CarePlanStatusPending,
		CreatedAt: at.UTC(),
		UpdatedAt: at.UTC(),
	}

	if err := cp.Validate(); err != nil {
		return nil, err
	}
	return cp, nil
}

// Validate checks if the CarePlan has valid data.
func (c *CarePlan) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCarePlanID
	}
	if c.PatientID == uuid.Nil {
		return ErrEmptyCarePlanPatientID
	}
	if !c.Status.IsValid() {
		return ErrInvalidCarePlanStatus
	}
	return nil
}

// TransitionTo moves the plan to status next, failing on an illegal move.
func (c *CarePlan) TransitionTo(next CarePlanStatus) error {
	if !CanTransition(c.Status, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, next)
	}
	c.Status = next
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// VisibleContent is the content exposed by listings: the generated document
// when completed, empty otherwise.
func (c *CarePlan) VisibleContent() string {
	if c.Status != CarePlanStatusCompleted {
		return ""
	}
	return c.Content
}

// FailureReason is the recorded reason of a failed plan, empty otherwise.
func (c *CarePlan) FailureReason() string {
	if c.Status != CarePlanStatusFailed {
		return ""
	}
	return c.Content
}

// CarePlanDetail is a care plan joined with the records it was generated for.
// Order and Provider are nil for plans admitted without an order.
type CarePlanDetail struct {
	CarePlan
	Patient  Patient   `json:"patient"`
	Order    *Order    `json:"order,omitempty"`
	Provider *Provider `json:"provider,omitempty"`
}

// MedicationLabel is the medication shown for the plan: the ordered medication,
// or the patient's medication list when there is no order.
func (d *CarePlanDetail) MedicationLabel() string {
	if d.Order != nil {
		return d.Order.MedicationName
	}
	return d.Patient.Medications
}

package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var icd10Pattern = regexp.MustCompile(`^[A-Z][0-9][0-9A-Z](\.[0-9A-Z]{1,4})?$`)

// Order validation errors
var (
	ErrEmptyOrderID        = fmt.Errorf("%w: order ID cannot be empty", ErrValidation)
	ErrEmptyOrderPatientID = fmt.Errorf("%w: order patient ID cannot be empty", ErrValidation)
	ErrEmptyOrderProvider  = fmt.Errorf("%w: order provider ID cannot be empty", ErrValidation)
	ErrEmptyMedicationName = fmt.Errorf("%w: medication name cannot be empty", ErrValidation)
	ErrInvalidICD10        = fmt.Errorf("%w: ICD-10 code is malformed", ErrValidation)
)

// Order is a single prescriber instruction: one medication and one diagnosis
// code for one patient from one provider. Orders are immutable.
type Order struct {
	ID             uuid.UUID `json:"id"`
	PatientID      uuid.UUID `json:"patient_id"`
	ProviderID     uuid.UUID `json:"provider_id"`
	MedicationName string    `json:"medication_name"`
	ICD10Code      string    `json:"icd10_code"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewOrder creates a validated order placed at the given instant.
func NewOrder(patientID, providerID uuid.UUID, medication, icd10 string, at time.Time) (*Order, error) {
	o := &Order{
		ID:             uuid.New(),
		PatientID:      patientID,
		ProviderID:     providerID,
		MedicationName: strings.TrimSpace(medication),
		ICD10Code:      strings.ToUpper(strings.TrimSpace(icd10)),
		CreatedAt:      at.UTC(),
	}

	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Validate checks if the Order has valid data.
func (o *Order) Validate() error {
	switch {
	case o.ID == uuid.Nil:
		return ErrEmptyOrderID
	case o.PatientID == uuid.Nil:
		return ErrEmptyOrderPatientID
	case o.ProviderID == uuid.Nil:
		return ErrEmptyOrderProvider
	case o.MedicationName == "":
		return ErrEmptyMedicationName
	}
	return ValidateICD10(o.ICD10Code)
}

// OrderDate is the UTC calendar date the order was placed on.
func (o *Order) OrderDate() time.Time {
	return DateOf(o.CreatedAt)
}

// ValidateICD10 reports whether code looks like an ICD-10 diagnosis code.
func ValidateICD10(code string) error {
	if !icd10Pattern.MatchString(strings.ToUpper(code)) {
		return ErrInvalidICD10
	}
	return nil
}

// NormalizeMedication is the key used to compare medication names:
// trimmed and lower-cased.
func NormalizeMedication(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

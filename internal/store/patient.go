package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/careplan-api/internal/domain"
)

// PatientStore defines the interface for patient persistence. Patients with an
// MRN and patients identified by name and date of birth share the store but not
// their identity keys.
type PatientStore interface {
	// Create saves a new patient.
	// Returns ErrMRNExists or ErrPatientIdentityExists on a unique key conflict.
	Create(ctx context.Context, patient *domain.Patient) error

	// GetByID retrieves a patient by ID.
	// Returns ErrPatientNotFound if none exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Patient, error)

	// GetByMRN retrieves a patient by medical record number.
	// Returns ErrPatientNotFound if none exists.
	GetByMRN(ctx context.Context, mrn string) (*domain.Patient, error)

	// FindMRNPatientByIdentity returns the oldest patient holding an MRN whose
	// name and date of birth match exactly.
	// Returns ErrPatientNotFound if none exists.
	FindMRNPatientByIdentity(ctx context.Context, firstName, lastName string, dob time.Time) (*domain.Patient, error)

	// GetByIdentity retrieves the patient without MRN for the given name and
	// date of birth.
	// Returns ErrPatientNotFound if none exists.
	GetByIdentity(ctx context.Context, firstName, lastName string, dob time.Time) (*domain.Patient, error)

	// UpdateClinicalFields overwrites the clinical fields of a patient.
	// Returns ErrPatientNotFound if the patient does not exist.
	UpdateClinicalFields(ctx context.Context, id uuid.UUID, fields domain.ClinicalFields) error
}

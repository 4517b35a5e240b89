package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var mrnPattern = regexp.MustCompile(`^\d{6}$`)

// Patient validation errors
var (
	ErrEmptyPatientID        = fmt.Errorf("%w: patient ID cannot be empty", ErrValidation)
	ErrEmptyPatientFirstName = fmt.Errorf("%w: patient first name cannot be empty", ErrValidation)
	ErrEmptyPatientLastName  = fmt.Errorf("%w: patient last name cannot be empty", ErrValidation)
	ErrInvalidMRN            = fmt.Errorf("%w: MRN must be exactly 6 digits", ErrValidation)
	ErrInvalidDateOfBirth    = fmt.Errorf("%w: date of birth is missing or in the future", ErrValidation)
	ErrEmptyMedications      = fmt.Errorf("%w: medications cannot be empty", ErrValidation)
)

// ClinicalFields are the free-text fields kept current for patients identified
// by name and date of birth. Each submission overwrites all three.
type ClinicalFields struct {
	Medications      string `json:"medications"`
	Allergies        string `json:"allergies"`
	HealthConditions string `json:"health_conditions"`
}

// Patient is the subject of a care plan. Patients admitted through orders carry
// a medical record number (MRN); patients admitted by name and date of birth
// have an empty MRN and carry ClinicalFields instead.
type Patient struct {
	ID          uuid.UUID `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	MRN         string    `json:"mrn,omitempty"`
	DateOfBirth time.Time `json:"date_of_birth"`
	ClinicalFields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPatient creates a validated patient identified by MRN.
func NewPatient(firstName, lastName, mrn string, dob time.Time) (*Patient, error) {
	p := newPatient(firstName, lastName, dob)
	p.MRN = strings.TrimSpace(mrn)

	if err := ValidateMRN(p.MRN); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewClinicalPatient creates a validated patient identified by name and date
// of birth, with the given clinical fields.
func NewClinicalPatient(firstName, lastName string, dob time.Time, fields ClinicalFields) (*Patient, error) {
	p := newPatient(firstName, lastName, dob)
	p.UpdateClinicalFields(fields)

	if p.Medications == "" {
		return nil, ErrEmptyMedications
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func newPatient(firstName, lastName string, dob time.Time) *Patient {
	now := time.Now().UTC()
	return &Patient{
		ID:          uuid.New(),
		FirstName:   strings.TrimSpace(firstName),
		LastName:    strings.TrimSpace(lastName),
		DateOfBirth: DateOf(dob),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate checks if the Patient has valid data.
func (p *Patient) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyPatientID
	}
	if p.FirstName == "" {
		return ErrEmptyPatientFirstName
	}
	if p.LastName == "" {
		return ErrEmptyPatientLastName
	}
	if p.DateOfBirth.IsZero() || p.DateOfBirth.After(time.Now().UTC()) {
		return ErrInvalidDateOfBirth
	}
	if p.MRN != "" {
		return ValidateMRN(p.MRN)
	}
	return nil
}

// FullName returns "First Last".
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// MatchesIdentity reports whether the patient's name and date of birth equal
// the given values exactly.
func (p *Patient) MatchesIdentity(firstName, lastName string, dob time.Time) bool {
	return p.FirstName == strings.TrimSpace(firstName) &&
		p.LastName == strings.TrimSpace(lastName) &&
		SameDate(p.DateOfBirth, dob)
}

// UpdateClinicalFields overwrites all clinical fields with f.
func (p *Patient) UpdateClinicalFields(f ClinicalFields) {
	p.Medications = strings.TrimSpace(f.Medications)
	p.Allergies = strings.TrimSpace(f.Allergies)
	p.HealthConditions = strings.TrimSpace(f.HealthConditions)
	p.UpdatedAt = time.Now().UTC()
}

// ValidateMRN reports whether mrn is a well-formed medical record number.
func ValidateMRN(mrn string) error {
	if !mrnPattern.MatchString(mrn) {
		return ErrInvalidMRN
	}
	return nil
}

package generation

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/careplan-api/internal/domain"
)

// Input is what a provider needs to write one care plan. ICD10Code and
// ProviderName are empty for medication guides admitted without an order.
type Input struct {
	CarePlanID       uuid.UUID
	PatientName      string
	Medication       string
	ICD10Code        string
	ProviderName     string
	Allergies        string
	HealthConditions string
}

// InputFromDetail builds the generation input of a stored care plan.
func InputFromDetail(d *domain.CarePlanDetail) Input {
	in := Input{
		CarePlanID:       d.ID,
		PatientName:      d.Patient.FullName(),
		Medication:       d.MedicationLabel(),
		Allergies:        d.Patient.Allergies,
		HealthConditions: d.Patient.HealthConditions,
	}
	if d.Order != nil {
		in.ICD10Code = d.Order.ICD10Code
	}
	if d.Provider != nil {
		in.ProviderName = d.Provider.Name
	}
	return in
}

// Validate checks that the input can produce a prompt.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Medication) == "" {
		return ErrEmptyInput
	}
	return nil
}

// Generator produces the text of a care plan. Implementations return a
// *ProviderError on failure; the caller decides whether to retry.
type Generator interface {
	Generate(ctx context.Context, in Input) (string, error)
}

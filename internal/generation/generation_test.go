package generation_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/careplan-api/internal/domain"
	"github.com/phrazzld/careplan-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderInput() generation.Input {
	return generation.Input{
		CarePlanID:   uuid.New(),
		PatientName:  "Alice Johnson",
		Medication:   "Metformin 500mg",
		ICD10Code:    "E11.9",
		ProviderName: "Dr. Smith",
	}
}

func TestPlaceholderGenerator(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gen := generation.PlaceholderGenerator{}

	text, err := gen.Generate(ctx, orderInput())
	require.NoError(t, err)
	for _, section := range []string{
		"## Problem List", "## Goals", "## Pharmacist Interventions", "## Monitoring Plan",
	} {
		assert.Contains(t, text, section)
	}
	assert.Contains(t, text, "Patient Alice Johnson requires Metformin 500mg therapy management")
	assert.Contains(t, text, "Coordinate with Dr. Smith")

	again, err := gen.Generate(ctx, orderInput())
	require.NoError(t, err)
	assert.Equal(t, text, again)
}

func TestPlaceholderGenerator_WithoutOrder(t *testing.T) {
	t.Parallel()

	text, err := generation.PlaceholderGenerator{}.Generate(context.Background(), generation.Input{
		PatientName: "Dana Park",
		Medication:  "Warfarin 5mg",
		Allergies:   "Penicillin",
	})
	require.NoError(t, err)
	assert.Contains(t, text, "- Diagnosis: -")
	assert.Contains(t, text, "- Allergies: Penicillin")
	assert.Contains(t, text, "Coordinate with the prescribing provider")
}

func TestPlaceholderGenerator_Errors(t *testing.T) {
	t.Parallel()

	_, err := generation.PlaceholderGenerator{}.Generate(context.Background(), generation.Input{})
	var pe *generation.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, generation.PlaceholderProvider, pe.Provider)
	assert.ErrorIs(t, err, generation.ErrEmptyInput)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = generation.PlaceholderGenerator{}.Generate(ctx, orderInput())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewProviderError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, generation.NewProviderError("gemini", nil))

	base := errors.New("rate limited")
	err := generation.NewProviderError("gemini", base)
	assert.EqualError(t, err, "gemini: rate limited")
	assert.ErrorIs(t, err, base)

	assert.Same(t, err, generation.NewProviderError("other", err))
}

func TestPromptBuilder_Default(t *testing.T) {
	t.Parallel()

	b, err := generation.NewPromptBuilder("")
	require.NoError(t, err)

	prompt, err := b.Build(orderInput())
	require.NoError(t, err)
	assert.Contains(t, prompt, "Patient: Alice Johnson\nMedication: Metformin 500mg\nICD-10: E11.9\nProvider: Dr. Smith\n")
	assert.Contains(t, prompt, "4. Monitoring Plan")
	assert.NotContains(t, prompt, "Allergies:")

	prompt, err = b.Build(generation.Input{PatientName: "Dana Park", Medication: "Warfarin"})
	require.NoError(t, err)
	assert.NotContains(t, prompt, "ICD-10:")
	assert.NotContains(t, prompt, "Provider:")

	_, err = b.Build(generation.Input{})
	assert.ErrorIs(t, err, generation.ErrEmptyInput)
}

func TestPromptBuilder_CustomTemplate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "prompt.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("Plan for {{.PatientName}} on {{.Medication}}"), 0o600))

	b, err := generation.NewPromptBuilder(path)
	require.NoError(t, err)
	prompt, err := b.Build(orderInput())
	require.NoError(t, err)
	assert.Equal(t, "Plan for Alice Johnson on Metformin 500mg", prompt)

	_, err = generation.NewPromptBuilder(filepath.Join(dir, "missing.tmpl"))
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	bad := filepath.Join(dir, "bad.tmpl")
	require.NoError(t, os.WriteFile(bad, []byte("{{.PatientName"), 0o600))
	_, err = generation.NewPromptBuilder(bad)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}

func TestInputFromDetail(t *testing.T) {
	t.Parallel()

	order := &domain.Order{MedicationName: "Lisinopril 10mg", ICD10Code: "I10"}
	d := &domain.CarePlanDetail{
		CarePlan: domain.CarePlan{ID: uuid.New()},
		Patient: domain.Patient{
			FirstName:      "Bob",
			LastName:       "Williams",
			ClinicalFields: domain.ClinicalFields{Allergies: "Sulfa"},
		},
		Order:    order,
		Provider: &domain.Provider{Name: "Dr. Chen"},
	}

	in := generation.InputFromDetail(d)
	assert.Equal(t, d.ID, in.CarePlanID)
	assert.Equal(t, "Bob Williams", in.PatientName)
	assert.Equal(t, "Lisinopril 10mg", in.Medication)
	assert.Equal(t, "I10", in.ICD10Code)
	assert.Equal(t, "Dr. Chen", in.ProviderName)
	assert.Equal(t, "Sulfa", in.Allergies)

	d.Order, d.Provider = nil, nil
	d.Patient.Medications = "Warfarin, Aspirin"
	in = generation.InputFromDetail(d)
	assert.Equal(t, "Warfarin, Aspirin", in.Medication)
	assert.Empty(t, in.ICD10Code)
	assert.True(t, strings.HasPrefix(in.PatientName, "Bob"))
}

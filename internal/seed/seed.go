// Package seed loads sample providers, patients, orders and care plans so a
// fresh deployment has something to list.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/careplan-api/internal/domain"
	"github.com/phrazzld/careplan-api/internal/identity"
	"github.com/phrazzld/careplan-api/internal/store"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultFixtures []byte

// ProviderFixture is a sample provider.
type ProviderFixture struct {
	Name string `yaml:"name"`
	NPI  string `yaml:"npi"`
}

// PatientFixture is a sample patient. MRN is empty for medication guides.
type PatientFixture struct {
	FirstName   string `yaml:"first_name"`
	LastName    string `yaml:"last_name"`
	MRN         string `yaml:"mrn"`
	DateOfBirth string `yaml:"date_of_birth"`
}

// OrderFixture is a sample order with its care plan.
type OrderFixture struct {
	Provider   ProviderFixture       `yaml:"provider"`
	Patient    PatientFixture        `yaml:"patient"`
	Medication string                `yaml:"medication"`
	ICD10Code  string                `yaml:"icd10_code"`
	Status     domain.CarePlanStatus `yaml:"status"`
	Attempts   int                   `yaml:"attempts"`
	Content    string                `yaml:"content"`
}

// GuideFixture is a sample medication guide admitted without an order.
type GuideFixture struct {
	Patient          PatientFixture        `yaml:"patient"`
	Medications      string                `yaml:"medications"`
	Allergies        string                `yaml:"allergies"`
	HealthConditions string                `yaml:"health_conditions"`
	Status           domain.CarePlanStatus `yaml:"status"`
	Attempts         int                   `yaml:"attempts"`
	Content          string                `yaml:"content"`
}

// Fixtures is the content of a seed file.
type Fixtures struct {
	Orders           []OrderFixture `yaml:"orders"`
	MedicationGuides []GuideFixture `yaml:"medication_guides"`
}

// Result counts what Apply did.
type Result struct {
	Created int
	Skipped int
}

// Parse decodes and validates a seed file.
func Parse(data []byte) (*Fixtures, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("seed: payload is empty")
	}
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("seed: decode fixtures: %w", err)
	}
	for i, o := range f.Orders {
		if !o.Status.IsValid() {
			return nil, fmt.Errorf("seed: order %d: invalid status %q", i, o.Status)
		}
	}
	for i, g := range f.MedicationGuides {
		if !g.Status.IsValid() {
			return nil, fmt.Errorf("seed: medication guide %d: invalid status %q", i, g.Status)
		}
	}
	return &f, nil
}

// Default returns the embedded sample fixtures.
func Default() (*Fixtures, error) {
	return Parse(defaultFixtures)
}

// LoadFile reads and parses a seed file from disk.
func LoadFile(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("seed: %s: %w", path, err)
	}
	return f, nil
}

// Seeder writes fixtures through the identity rules so seeded records obey
// the same uniqueness constraints as admitted ones.
type Seeder struct {
	stores   store.Stores
	tx       store.Transactor
	resolver *identity.Resolver
	now      func() time.Time
	logger   *slog.Logger
}

// NewSeeder creates a seeder.
func NewSeeder(stores store.Stores, tx store.Transactor, logger *slog.Logger) *Seeder {
	return &Seeder{
		stores:   stores,
		tx:       tx,
		resolver: identity.NewResolver(stores.Providers, stores.Patients, logger),
		now:      time.Now,
		logger:   logger.With("component", "seeder"),
	}
}

// Apply stores every fixture not already present. An order fixture is present
// when its patient already has an order for the medication; a medication guide
// fixture when its patient exists.
func (s *Seeder) Apply(ctx context.Context, f *Fixtures) (Result, error) {
	var res Result
	for i, o := range f.Orders {
		created, err := s.applyOrder(ctx, o)
		if err != nil {
			return res, fmt.Errorf("seed: order %d (%s): %w", i, o.Medication, err)
		}
		res.count(created)
	}
	for i, g := range f.MedicationGuides {
		created, err := s.applyGuide(ctx, g)
		if err != nil {
			return res, fmt.Errorf("seed: medication guide %d: %w", i, err)
		}
		res.count(created)
	}
	s.logger.Info("seed applied", "created", res.Created, "skipped", res.Skipped)
	return res, nil
}

func (r *Result) count(created bool) {
	if created {
		r.Created++
	} else {
		r.Skipped++
	}
}

func (s *Seeder) applyOrder(ctx context.Context, o OrderFixture) (bool, error) {
	dob, err := domain.ParseDate(o.Patient.DateOfBirth)
	if err != nil {
		return false, err
	}
	provider, err := s.resolver.ResolveProvider(ctx, o.Provider.Name, o.Provider.NPI)
	if err != nil {
		return false, err
	}
	resolved, err := s.resolver.ResolvePatientByMRN(ctx,
		o.Patient.FirstName, o.Patient.LastName, o.Patient.MRN, dob)
	if err != nil {
		return false, err
	}
	patient := resolved.Patient

	existing, err := s.stores.Orders.ListByPatientAndMedication(ctx, patient.ID, o.Medication)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	now := s.now()
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
		order, err := domain.NewOrder(patient.ID, provider.ID, o.Medication, o.ICD10Code, now)
		if err != nil {
			return err
		}
		if err := tx.Orders.Create(ctx, order); err != nil {
			return err
		}
		plan, err := seededPlan(patient.ID, &order.ID, now, o.Status, o.Attempts, o.Content)
		if err != nil {
			return err
		}
		return tx.CarePlans.Create(ctx, plan)
	})
	return err == nil, err
}

func (s *Seeder) applyGuide(ctx context.Context, g GuideFixture) (bool, error) {
	dob, err := domain.ParseDate(g.Patient.DateOfBirth)
	if err != nil {
		return false, err
	}
	_, err = s.stores.Patients.GetByIdentity(ctx, g.Patient.FirstName, g.Patient.LastName, dob)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrPatientNotFound) {
		return false, err
	}

	patient, err := s.resolver.ResolvePatientByIdentity(ctx, g.Patient.FirstName, g.Patient.LastName, dob,
		domain.ClinicalFields{
			Medications:      g.Medications,
			Allergies:        g.Allergies,
			HealthConditions: g.HealthConditions,
		})
	if err != nil {
		return false, err
	}

	plan, err := seededPlan(patient.ID, nil, s.now(), g.Status, g.Attempts, g.Content)
	if err != nil {
		return false, err
	}
	if err := s.stores.CarePlans.Create(ctx, plan); err != nil {
		return false, err
	}
	return true, nil
}

func seededPlan(
	patientID uuid.UUID,
	orderID *uuid.UUID,
	at time.Time,
	status domain.CarePlanStatus,
	attempts int,
	content string,
) (*domain.CarePlan, error) {
	plan, err := domain.NewCarePlan(patientID, orderID, at)
	if err != nil {
		return nil, err
	}
	plan.Status = status
	plan.Attempts = attempts
	plan.Content = content
	return plan, nil
}

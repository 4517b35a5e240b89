// Package identity resolves the providers and patients named by an incoming
// request to stored records, creating them on first reference.
//
// Each resolution is a lookup followed by a create guarded by a unique key.
// When a concurrent request wins the create, the lookup runs again and the
// same matching rules apply to the record it stored.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/careplan-api/internal/apperr"
	"github.com/phrazzld/careplan-api/internal/domain"
	"github.com/phrazzld/careplan-api/internal/store"
)

// maxRounds bounds the lookup-then-create cycles a single resolution runs.
const maxRounds = 3

// ErrContention is returned when every round lost a create race.
var ErrContention = errors.New("identity resolution did not settle under contention")

// PatientResolution is the resolved patient and, when the submitted identity
// disagreed with stored records, a warning for the caller.
type PatientResolution struct {
	Patient *domain.Patient
	Warning string
}

// Resolver matches request identities against the provider and patient stores.
type Resolver struct {
	providers store.ProviderStore
	patients  store.PatientStore
	logger    *slog.Logger
}

// NewResolver creates a Resolver. If logger is nil, a default logger is used.
func NewResolver(providers store.ProviderStore, patients store.PatientStore, logger *slog.Logger) *Resolver {
	if providers == nil || patients == nil {
		panic("identity resolver requires provider and patient stores")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		providers: providers,
		patients:  patients,
		logger:    logger.With(slog.String("component", "identity_resolver")),
	}
}

// ResolveProvider returns the provider holding npi, creating it when none
// exists. A provider already registered under a different name is a
// duplicate_npi block; nothing is created or modified.
func (r *Resolver) ResolveProvider(ctx context.Context, name, npi string) (*domain.Provider, error) {
	candidate, err := domain.NewProvider(name, npi)
	if err != nil {
		return nil, apperr.Validation(err.Error(), err)
	}

	for round := 1; round <= maxRounds; round++ {
		existing, err := r.providers.GetByNPI(ctx, candidate.NPI)
		if err == nil {
			if existing.Name != candidate.Name {
				return nil, npiConflict(existing, candidate)
			}
			return existing, nil
		}
		if !errors.Is(err, store.ErrProviderNotFound) {
			return nil, fmt.Errorf("failed to look up provider: %w", err)
		}

		err = r.providers.Create(ctx, candidate)
		if err == nil {
			r.logger.Debug("provider created",
				slog.String("provider_id", candidate.ID.String()),
				slog.String("npi", candidate.NPI))
			return candidate, nil
		}
		if !errors.Is(err, store.ErrNPIExists) {
			return nil, fmt.Errorf("failed to create provider: %w", err)
		}
		r.logger.Debug("provider create lost race, retrying lookup",
			slog.String("npi", candidate.NPI),
			slog.Int("round", round))
	}
	return nil, ErrContention
}

// ResolvePatientByMRN returns the patient holding mrn. The MRN is trusted:
// if the stored name or date of birth differ from the submitted ones the
// stored record is returned with a warning. When the MRN is new but another
// MRN already holds the same name and date of birth, a new patient is created
// with a warning naming the older MRN.
func (r *Resolver) ResolvePatientByMRN(
	ctx context.Context,
	firstName, lastName, mrn string,
	dob time.Time,
) (*PatientResolution, error) {
	candidate, err := domain.NewPatient(firstName, lastName, mrn, dob)
	if err != nil {
		return nil, apperr.Validation(err.Error(), err)
	}

	for round := 1; round <= maxRounds; round++ {
		existing, err := r.patients.GetByMRN(ctx, candidate.MRN)
		if err == nil {
			res := &PatientResolution{Patient: existing}
			if !existing.MatchesIdentity(candidate.FirstName, candidate.LastName, candidate.DateOfBirth) {
				res.Warning = mrnMismatchWarning(existing, candidate)
			}
			return res, nil
		}
		if !errors.Is(err, store.ErrPatientNotFound) {
			return nil, fmt.Errorf("failed to look up patient by MRN: %w", err)
		}

		var warning string
		namesake, err := r.patients.FindMRNPatientByIdentity(ctx,
			candidate.FirstName, candidate.LastName, candidate.DateOfBirth)
		switch {
		case err == nil:
			warning = namesakeWarning(namesake, candidate)
		case !errors.Is(err, store.ErrPatientNotFound):
			return nil, fmt.Errorf("failed to look up patient by identity: %w", err)
		}

		err = r.patients.Create(ctx, candidate)
		if err == nil {
			r.logger.Debug("patient created",
				slog.String("patient_id", candidate.ID.String()),
				slog.Bool("possible_duplicate", warning != ""))
			return &PatientResolution{Patient: candidate, Warning: warning}, nil
		}
		if !errors.Is(err, store.ErrMRNExists) {
			return nil, fmt.Errorf("failed to create patient: %w", err)
		}
		r.logger.Debug("patient create lost race, retrying lookup", slog.Int("round", round))
	}
	return nil, ErrContention
}

// ResolvePatientByIdentity returns the MRN-less patient with the given name
// and date of birth as stored, or creates it with fields. Overwriting the
// clinical fields of an existing patient is left to the caller.
func (r *Resolver) ResolvePatientByIdentity(
	ctx context.Context,
	firstName, lastName string,
	dob time.Time,
	fields domain.ClinicalFields,
) (*domain.Patient, error) {
	candidate, err := domain.NewClinicalPatient(firstName, lastName, dob, fields)
	if err != nil {
		return nil, apperr.Validation(err.Error(), err)
	}

	for round := 1; round <= maxRounds; round++ {
		existing, err := r.patients.GetByIdentity(ctx,
			candidate.FirstName, candidate.LastName, candidate.DateOfBirth)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, store.ErrPatientNotFound) {
			return nil, fmt.Errorf("failed to look up patient by identity: %w", err)
		}

		err = r.patients.Create(ctx, candidate)
		if err == nil {
			r.logger.Debug("patient created", slog.String("patient_id", candidate.ID.String()))
			return candidate, nil
		}
		if !errors.Is(err, store.ErrPatientIdentityExists) {
			return nil, fmt.Errorf("failed to create patient: %w", err)
		}
		r.logger.Debug("patient create lost race, retrying lookup", slog.Int("round", round))
	}
	return nil, ErrContention
}

func npiConflict(existing, submitted *domain.Provider) *apperr.Error {
	return apperr.Block(
		apperr.CodeDuplicateNPI,
		fmt.Sprintf("NPI %s is already registered to '%s', but you submitted '%s'. "+
			"NPI is a national license number and must be unique.",
			existing.NPI, existing.Name, submitted.Name),
		map[string]any{
			"npi":            existing.NPI,
			"existing_name":  existing.Name,
			"submitted_name": submitted.Name,
		},
	)
}

func mrnMismatchWarning(existing, submitted *domain.Patient) string {
	return fmt.Sprintf("MRN %s exists for '%s' (DOB: %s), but you submitted '%s' (DOB: %s). "+
		"Using existing patient record.",
		existing.MRN, existing.FullName(), domain.FormatDate(existing.DateOfBirth),
		submitted.FullName(), domain.FormatDate(submitted.DateOfBirth))
}

func namesakeWarning(existing, created *domain.Patient) string {
	return fmt.Sprintf("A patient named '%s' (DOB: %s) already exists with MRN %s. "+
		"Created new patient with MRN %s. Please verify this is not a duplicate.",
		created.FullName(), domain.FormatDate(created.DateOfBirth), existing.MRN, created.MRN)
}

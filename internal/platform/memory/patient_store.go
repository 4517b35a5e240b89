package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/careplan-api/internal/domain"
	"github.com/phrazzld/careplan-api/internal/store"
)

// PatientStore implements store.PatientStore in memory.
type PatientStore struct {
	db *DB
}

var _ store.PatientStore = (*PatientStore)(nil)

// Create implements store.PatientStore.Create.
func (s *PatientStore) Create(_ context.Context, p *domain.Patient) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, existing := range s.db.state.patients {
		if p.MRN != "" && existing.MRN == p.MRN {
			return store.ErrMRNExists
		}
		if p.MRN == "" && existing.MRN == "" &&
			existing.MatchesIdentity(p.FirstName, p.LastName, p.DateOfBirth) {
			return store.ErrPatientIdentityExists
		}
	}
	s.db.state.patients[p.ID] = *p
	return nil
}

// GetByID implements store.PatientStore.GetByID.
func (s *PatientStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Patient, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	p, ok := s.db.state.patients[id]
	if !ok {
		return nil, store.ErrPatientNotFound
	}
	return &p, nil
}

// GetByMRN implements store.PatientStore.GetByMRN.
func (s *PatientStore) GetByMRN(_ context.Context, mrn string) (*domain.Patient, error) {
	return s.find(func(p domain.Patient) bool {
		return mrn != "" && p.MRN == mrn
	})
}

// FindMRNPatientByIdentity implements store.PatientStore.FindMRNPatientByIdentity.
func (s *PatientStore) FindMRNPatientByIdentity(
	_ context.Context,
	firstName, lastName string,
	dob time.Time,
) (*domain.Patient, error) {
	return s.find(func(p domain.Patient) bool {
		return p.MRN != "" && p.MatchesIdentity(firstName, lastName, dob)
	})
}

// GetByIdentity implements store.PatientStore.GetByIdentity.
func (s *PatientStore) GetByIdentity(
	_ context.Context,
	firstName, lastName string,
	dob time.Time,
) (*domain.Patient, error) {
	return s.find(func(p domain.Patient) bool {
		return p.MRN == "" && p.MatchesIdentity(firstName, lastName, dob)
	})
}

// UpdateClinicalFields implements store.PatientStore.UpdateClinicalFields.
func (s *PatientStore) UpdateClinicalFields(_ context.Context, id uuid.UUID, fields domain.ClinicalFields) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p, ok := s.db.state.patients[id]
	if !ok {
		return store.ErrPatientNotFound
	}
	p.UpdateClinicalFields(fields)
	s.db.state.patients[id] = p
	return nil
}

// find returns the oldest patient matching pred.
func (s *PatientStore) find(pred func(domain.Patient) bool) (*domain.Patient, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var found *domain.Patient
	for _, p := range s.db.state.patients {
		if !pred(p) {
			continue
		}
		if found == nil || p.CreatedAt.Before(found.CreatedAt) {
			match := p
			found = &match
		}
	}
	if found == nil {
		return nil, store.ErrPatientNotFound
	}
	return found, nil
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/careplan-api/internal/domain"
	"github.com/phrazzld/careplan-api/internal/store"
)

// CarePlanStore implements store.CarePlanStore in memory.
type CarePlanStore struct {
	db *DB
}

var _ store.CarePlanStore = (*CarePlanStore)(nil)

// Create implements store.CarePlanStore.Create.
func (s *CarePlanStore) Create(_ context.Context, cp *domain.CarePlan) error {
	if err := cp.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.state.patients[cp.PatientID]; !ok {
		return fmt.Errorf("%w: patient with ID %s not found", store.ErrInvalidEntity, cp.PatientID)
	}
	if cp.OrderID == nil {
		for _, existing := range s.db.state.carePlans {
			if existing.OrderID == nil && existing.PatientID == cp.PatientID && existing.Status.IsActive() {
				return store.ErrActiveCarePlanExists
			}
		}
	}
	s.db.state.carePlans[cp.ID] = cloneCarePlan(*cp)
	return nil
}

// GetByID implements store.CarePlanStore.GetByID.
func (s *CarePlanStore) GetByID(_ context.Context, id uuid.UUID) (*domain.CarePlan, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	cp, ok := s.db.state.carePlans[id]
	if !ok {
		return nil, store.ErrCarePlanNotFound
	}
	cp = cloneCarePlan(cp)
	return &cp, nil
}

// GetDetail implements store.CarePlanStore.GetDetail.
func (s *CarePlanStore) GetDetail(_ context.Context, id uuid.UUID) (*domain.CarePlanDetail, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	cp, ok := s.db.state.carePlans[id]
	if !ok {
		return nil, store.ErrCarePlanNotFound
	}
	return s.detail(cp), nil
}

// List implements store.CarePlanStore.List.
func (s *CarePlanStore) List(_ context.Context, query string) ([]*domain.CarePlanDetail, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	details := make([]*domain.CarePlanDetail, 0, len(s.db.state.carePlans))
	for _, cp := range s.db.state.carePlans {
		d := s.detail(cp)
		if q == "" || matchesQuery(d, q) {
			details = append(details, d)
		}
	}
	sort.Slice(details, func(i, j int) bool {
		return details[i].CreatedAt.After(details[j].CreatedAt)
	})
	return details, nil
}

// HasActiveForPatient implements store.CarePlanStore.HasActiveForPatient.
func (s *CarePlanStore) HasActiveForPatient(_ context.Context, patientID uuid.UUID) (bool, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, cp := range s.db.state.carePlans {
		if cp.PatientID == patientID && cp.Status.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

// Claim implements store.CarePlanStore.Claim.
func (s *CarePlanStore) Claim(_ context.Context, id uuid.UUID) (*domain.CarePlan, error) {
	var claimed domain.CarePlan
	err := s.update(id, domain.CarePlanStatusPending, func(cp *domain.CarePlan) {
		cp.Status = domain.CarePlanStatusProcessing
		claimed = cloneCarePlan(*cp)
	})
	if err != nil {
		return nil, err
	}
	return &claimed, nil
}

// RecordAttempt implements store.CarePlanStore.RecordAttempt.
func (s *CarePlanStore) RecordAttempt(_ context.Context, id uuid.UUID) (int, error) {
	var attempts int
	err := s.update(id, domain.CarePlanStatusProcessing, func(cp *domain.CarePlan) {
		cp.Attempts++
		attempts = cp.Attempts
	})
	return attempts, err
}

// Complete implements store.CarePlanStore.Complete.
func (s *CarePlanStore) Complete(_ context.Context, id uuid.UUID, content string) error {
	return s.update(id, domain.CarePlanStatusProcessing, func(cp *domain.CarePlan) {
		cp.Status = domain.CarePlanStatusCompleted
		cp.Content = content
	})
}

// Fail implements store.CarePlanStore.Fail.
func (s *CarePlanStore) Fail(_ context.Context, id uuid.UUID, reason string) error {
	return s.update(id, domain.CarePlanStatusProcessing, func(cp *domain.CarePlan) {
		cp.Status = domain.CarePlanStatusFailed
		cp.Content = reason
	})
}

// ResetToPending implements store.CarePlanStore.ResetToPending.
func (s *CarePlanStore) ResetToPending(_ context.Context, id uuid.UUID) error {
	return s.update(id, domain.CarePlanStatusProcessing, func(cp *domain.CarePlan) {
		cp.Status = domain.CarePlanStatusPending
	})
}

// ListByStatus implements store.CarePlanStore.ListByStatus.
func (s *CarePlanStore) ListByStatus(
	_ context.Context,
	status domain.CarePlanStatus,
	olderThan time.Duration,
) ([]*domain.CarePlan, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	cutoff := time.Now().UTC().Add(-olderThan)
	var plans []*domain.CarePlan
	for _, cp := range s.db.state.carePlans {
		if cp.Status != status {
			continue
		}
		if olderThan > 0 && !cp.UpdatedAt.Before(cutoff) {
			continue
		}
		match := cloneCarePlan(cp)
		plans = append(plans, &match)
	}
	sort.Slice(plans, func(i, j int) bool {
		return plans[i].CreatedAt.Before(plans[j].CreatedAt)
	})
	return plans, nil
}

// update applies mutate to the plan when it is in the required status.
func (s *CarePlanStore) update(id uuid.UUID, required domain.CarePlanStatus, mutate func(*domain.CarePlan)) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	cp, ok := s.db.state.carePlans[id]
	if !ok {
		return store.ErrCarePlanNotFound
	}
	if cp.Status != required {
		return store.NewStoreError("care_plan", "transition",
			fmt.Sprintf("care plan %s is %s, not %s", id, cp.Status, required), store.ErrStateConflict)
	}
	mutate(&cp)
	cp.UpdatedAt = time.Now().UTC()
	s.db.state.carePlans[id] = cp
	return nil
}

// detail joins cp with its records. Callers hold the read lock.
func (s *CarePlanStore) detail(cp domain.CarePlan) *domain.CarePlanDetail {
	d := &domain.CarePlanDetail{
		CarePlan: cloneCarePlan(cp),
		Patient:  s.db.state.patients[cp.PatientID],
	}
	if cp.OrderID != nil {
		if o, ok := s.db.state.orders[*cp.OrderID]; ok {
			d.Order = &o
			if p, ok := s.db.state.providers[o.ProviderID]; ok {
				d.Provider = &p
			}
		}
	}
	return d
}

func matchesQuery(d *domain.CarePlanDetail, q string) bool {
	fields := []string{d.Patient.FirstName, d.Patient.LastName, d.MedicationLabel()}
	if d.Order != nil {
		fields = append(fields, d.Order.ICD10Code)
	}
	if d.Provider != nil {
		fields = append(fields, d.Provider.Name)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

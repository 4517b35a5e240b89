package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/phrazzld/careplan-api/internal/domain"
	"github.com/phrazzld/careplan-api/internal/store"
)

// OrderStore implements store.OrderStore in memory.
type OrderStore struct {
	db *DB
}

var _ store.OrderStore = (*OrderStore)(nil)

// Create implements store.OrderStore.Create.
func (s *OrderStore) Create(_ context.Context, o *domain.Order) error {
	if err := o.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.state.patients[o.PatientID]; !ok {
		return fmt.Errorf("%w: patient with ID %s not found", store.ErrInvalidEntity, o.PatientID)
	}
	if _, ok := s.db.state.providers[o.ProviderID]; !ok {
		return fmt.Errorf("%w: provider with ID %s not found", store.ErrInvalidEntity, o.ProviderID)
	}

	key := domain.NormalizeMedication(o.MedicationName)
	for _, existing := range s.db.state.orders {
		if existing.PatientID == o.PatientID &&
			domain.NormalizeMedication(existing.MedicationName) == key &&
			existing.OrderDate().Equal(o.OrderDate()) {
			return store.ErrSameDayOrderExists
		}
	}
	s.db.state.orders[o.ID] = *o
	return nil
}

// ListByPatientAndMedication implements store.OrderStore.ListByPatientAndMedication.
func (s *OrderStore) ListByPatientAndMedication(
	_ context.Context,
	patientID uuid.UUID,
	medication string,
) ([]*domain.Order, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	key := domain.NormalizeMedication(medication)
	var orders []*domain.Order
	for _, o := range s.db.state.orders {
		if o.PatientID == patientID && domain.NormalizeMedication(o.MedicationName) == key {
			match := o
			orders = append(orders, &match)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/careplan-api/internal/domain"
	"github.com/stretchr/testify/mock"
)

// TestifyMockCarePlanStore is a testify/mock implementation of store.CarePlanStore.
type TestifyMockCarePlanStore struct {
	mock.Mock
}

func (m *TestifyMockCarePlanStore) Create(ctx context.Context, plan *domain.CarePlan) error {
	return m.Called(ctx, plan).Error(0)
}

func (m *TestifyMockCarePlanStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.CarePlan, error) {
	args := m.Called(ctx, id)
	if plan, ok := args.Get(0).(*domain.CarePlan); ok {
		return plan, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TestifyMockCarePlanStore) GetDetail(ctx context.Context, id uuid.UUID) (*domain.CarePlanDetail, error) {
	args := m.Called(ctx, id)
	if detail, ok := args.Get(0).(*domain.CarePlanDetail); ok {
		return detail, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TestifyMockCarePlanStore) List(ctx context.Context, query string) ([]*domain.CarePlanDetail, error) {
	args := m.Called(ctx, query)
	if details, ok := args.Get(0).([]*domain.CarePlanDetail); ok {
		return details, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TestifyMockCarePlanStore) HasActiveForPatient(ctx context.Context, patientID uuid.UUID) (bool, error) {
	args := m.Called(ctx, patientID)
	return args.Bool(0), args.Error(1)
}

func (m *TestifyMockCarePlanStore) Claim(ctx context.Context, id uuid.UUID) (*domain.CarePlan, error) {
	args := m.Called(ctx, id)
	if plan, ok := args.Get(0).(*domain.CarePlan); ok {
		return plan, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TestifyMockCarePlanStore) RecordAttempt(ctx context.Context, id uuid.UUID) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *TestifyMockCarePlanStore) Complete(ctx context.Context, id uuid.UUID, content string) error {
	return m.Called(ctx, id, content).Error(0)
}

func (m *TestifyMockCarePlanStore) Fail(ctx context.Context, id uuid.UUID, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}

func (m *TestifyMockCarePlanStore) ResetToPending(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *TestifyMockCarePlanStore) ListByStatus(
	ctx context.Context,
	status domain.CarePlanStatus,
	olderThan time.Duration,
) ([]*domain.CarePlan, error) {
	args := m.Called(ctx, status, olderThan)
	if plans, ok := args.Get(0).([]*domain.CarePlan); ok {
		return plans, args.Error(1)
	}
	return nil, args.Error(1)
}

package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/careplan-api/internal/domain"
	"github.com/phrazzld/careplan-api/internal/export"
	"github.com/phrazzld/careplan-api/internal/store"
)

// Download is a rendered care plan document.
type Download struct {
	FileName string
	Body     string
}

// CarePlanService provides read access to stored care plans.
type CarePlanService interface {
	// List returns care plans newest first, filtered by query when non-empty.
	List(ctx context.Context, query string) ([]*domain.CarePlanDetail, error)

	// Get returns one care plan with its patient, order and provider.
	Get(ctx context.Context, id uuid.UUID) (*domain.CarePlanDetail, error)

	// Download renders one care plan as a text document.
	Download(ctx context.Context, id uuid.UUID) (*Download, error)
}

type carePlanServiceImpl struct {
	plans  store.CarePlanStore
	logger *slog.Logger
}

// NewCarePlanService creates a CarePlanService.
func NewCarePlanService(plans store.CarePlanStore, logger *slog.Logger) (CarePlanService, error) {
	if plans == nil {
		return nil, ErrNilCarePlanStore
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &carePlanServiceImpl{
		plans:  plans,
		logger: logger.With("component", "careplan_service"),
	}, nil
}

func (s *carePlanServiceImpl) List(ctx context.Context, query string) ([]*domain.CarePlanDetail, error) {
	plans, err := s.plans.List(ctx, query)
	if err != nil {
		s.logger.Error("failed to list care plans", "error", err, "query", query)
		return nil, NewCarePlanServiceError("list", err)
	}
	return plans, nil
}

func (s *carePlanServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.CarePlanDetail, error) {
	detail, err := s.plans.GetDetail(ctx, id)
	if err != nil {
		return nil, NewCarePlanServiceError("get", err)
	}
	return detail, nil
}

func (s *carePlanServiceImpl) Download(ctx context.Context, id uuid.UUID) (*Download, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Download{
		FileName: export.FileName(id),
		Body:     export.Text(detail),
	}, nil
}

// Package admission accepts care plan requests. It resolves the identities a
// request names, enforces the duplicate rules, persists the pending care plan
// and dispatches it for generation without waiting on the result.
package admission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/careplan-api/internal/apperr"
	"github.com/phrazzld/careplan-api/internal/domain"
	"github.com/phrazzld/careplan-api/internal/events"
	"github.com/phrazzld/careplan-api/internal/identity"
	"github.com/phrazzld/careplan-api/internal/store"
)

// Acknowledgement messages
const (
	OrderReceivedMessage    = "Received, queued for processing"
	ClinicalReceivedMessage = "Received, generating your medication guide."
)

// OrderRequest is a care plan request identified by provider NPI and patient MRN.
type OrderRequest struct {
	ProviderName     string
	ProviderNPI      string
	PatientFirstName string
	PatientLastName  string
	PatientMRN       string
	DateOfBirth      time.Time
	MedicationName   string
	ICD10Code        string
	// Confirm acknowledges a previous-day order for the same medication.
	Confirm bool
}

// ClinicalRequest is a medication guide request identified by patient name and
// date of birth.
type ClinicalRequest struct {
	PatientFirstName string
	PatientLastName  string
	DateOfBirth      time.Time
	Medications      string
	Allergies        string
	HealthConditions string
}

// Acknowledgement is returned once a care plan is persisted as pending.
type Acknowledgement struct {
	ID      uuid.UUID
	Status  domain.CarePlanStatus
	Warning string
	Message string
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used to date orders and care plans.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service admits care plan requests.
type Service struct {
	stores   store.Stores
	tx       store.Transactor
	resolver *identity.Resolver
	emitter  events.EventEmitter
	now      func() time.Time
	logger   *slog.Logger
}

// NewService creates an admission Service. stores are used for identity
// resolution and duplicate checks; tx scopes the writes of one admission.
func NewService(
	stores store.Stores,
	tx store.Transactor,
	emitter events.EventEmitter,
	logger *slog.Logger,
	opts ...Option,
) (*Service, error) {
	if stores.Providers == nil || stores.Patients == nil || stores.Orders == nil || stores.CarePlans == nil {
		return nil, errors.New("admission service requires all stores")
	}
	if tx == nil {
		return nil, errors.New("admission service requires a transactor")
	}
	if emitter == nil {
		return nil, errors.New("admission service requires an event emitter")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "admission_service"))

	s := &Service{
		stores:   stores,
		tx:       tx,
		resolver: identity.NewResolver(stores.Providers, stores.Patients, logger),
		emitter:  emitter,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SubmitOrder admits a request identified by provider NPI and patient MRN.
// It creates the order and its pending care plan in one transaction.
func (s *Service) SubmitOrder(ctx context.Context, req OrderRequest) (*Acknowledgement, error) {
	medication := strings.TrimSpace(req.MedicationName)
	if medication == "" {
		return nil, apperr.Validation(domain.ErrEmptyMedicationName.Error(), domain.ErrEmptyMedicationName)
	}
	if err := domain.ValidateICD10(req.ICD10Code); err != nil {
		return nil, apperr.Validation(err.Error(), err)
	}

	provider, err := s.resolver.ResolveProvider(ctx, req.ProviderName, req.ProviderNPI)
	if err != nil {
		return nil, err
	}

	resolution, err := s.resolver.ResolvePatientByMRN(ctx,
		req.PatientFirstName, req.PatientLastName, req.PatientMRN, req.DateOfBirth)
	if err != nil {
		return nil, err
	}
	patient := resolution.Patient

	now := s.now().UTC()
	if err := s.checkDuplicateOrder(ctx, patient.ID, medication, req.Confirm, now); err != nil {
		return nil, err
	}

	var plan *domain.CarePlan
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
		order, err := domain.NewOrder(patient.ID, provider.ID, medication, req.ICD10Code, now)
		if err != nil {
			return apperr.Validation(err.Error(), err)
		}
		if err := tx.Orders.Create(ctx, order); err != nil {
			if errors.Is(err, store.ErrSameDayOrderExists) {
				return sameDayBlock(order.MedicationName)
			}
			return fmt.Errorf("failed to create order: %w", err)
		}

		plan, err = domain.NewCarePlan(patient.ID, &order.ID, now)
		if err != nil {
			return fmt.Errorf("failed to build care plan: %w", err)
		}
		if err := tx.CarePlans.Create(ctx, plan); err != nil {
			return fmt.Errorf("failed to create care plan: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("care plan admitted",
		slog.String("careplan_id", plan.ID.String()),
		slog.String("patient_id", patient.ID.String()),
		slog.Bool("identity_warning", resolution.Warning != ""))
	s.dispatch(ctx, plan.ID)

	return &Acknowledgement{
		ID:      plan.ID,
		Status:  plan.Status,
		Warning: resolution.Warning,
		Message: OrderReceivedMessage,
	}, nil
}

// SubmitClinical admits a request identified by patient name and date of
// birth. The patient's clinical fields are overwritten with the submitted
// ones in the same transaction that creates the care plan, so a patient with
// a care plan in flight keeps its fields.
func (s *Service) SubmitClinical(ctx context.Context, req ClinicalRequest) (*Acknowledgement, error) {
	fields := domain.ClinicalFields{
		Medications:      req.Medications,
		Allergies:        req.Allergies,
		HealthConditions: req.HealthConditions,
	}
	candidate, err := domain.NewClinicalPatient(req.PatientFirstName, req.PatientLastName, req.DateOfBirth, fields)
	if err != nil {
		return nil, apperr.Validation(err.Error(), err)
	}

	existing, err := s.stores.Patients.GetByIdentity(ctx,
		candidate.FirstName, candidate.LastName, candidate.DateOfBirth)
	switch {
	case err == nil:
		active, err := s.stores.CarePlans.HasActiveForPatient(ctx, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check active care plans: %w", err)
		}
		if active {
			return nil, activeBlock()
		}
	case !errors.Is(err, store.ErrPatientNotFound):
		return nil, fmt.Errorf("failed to look up patient: %w", err)
	}

	patient, err := s.resolver.ResolvePatientByIdentity(ctx,
		candidate.FirstName, candidate.LastName, candidate.DateOfBirth, fields)
	if err != nil {
		return nil, err
	}

	var plan *domain.CarePlan
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
		active, err := tx.CarePlans.HasActiveForPatient(ctx, patient.ID)
		if err != nil {
			return fmt.Errorf("failed to check active care plans: %w", err)
		}
		if active {
			return activeBlock()
		}
		if err := tx.Patients.UpdateClinicalFields(ctx, patient.ID, candidate.ClinicalFields); err != nil {
			return fmt.Errorf("failed to update clinical fields: %w", err)
		}

		plan, err = domain.NewCarePlan(patient.ID, nil, s.now())
		if err != nil {
			return fmt.Errorf("failed to build care plan: %w", err)
		}
		if err := tx.CarePlans.Create(ctx, plan); err != nil {
			if errors.Is(err, store.ErrActiveCarePlanExists) {
				return activeBlock()
			}
			return fmt.Errorf("failed to create care plan: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("medication guide admitted",
		slog.String("careplan_id", plan.ID.String()),
		slog.String("patient_id", patient.ID.String()))
	s.dispatch(ctx, plan.ID)

	return &Acknowledgement{
		ID:      plan.ID,
		Status:  plan.Status,
		Message: ClinicalReceivedMessage,
	}, nil
}

// checkDuplicateOrder blocks a second order for the medication on the same
// UTC date and asks for confirmation when an earlier order exists.
func (s *Service) checkDuplicateOrder(
	ctx context.Context,
	patientID uuid.UUID,
	medication string,
	confirm bool,
	now time.Time,
) error {
	previous, err := s.stores.Orders.ListByPatientAndMedication(ctx, patientID, medication)
	if err != nil {
		return fmt.Errorf("failed to look up previous orders: %w", err)
	}

	var latest *domain.Order
	for _, o := range previous {
		if domain.SameDate(o.CreatedAt, now) {
			return sameDayBlock(medication)
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) {
			latest = o
		}
	}

	if latest != nil && !confirm {
		date := domain.FormatDate(latest.CreatedAt)
		return apperr.Warning(
			apperr.CodeDuplicateOrderPrevious,
			fmt.Sprintf("This patient already has a previous order for '%s' from %s. "+
				"Submit again with confirm=true to proceed.", medication, date),
			map[string]any{"previous_order_date": date},
		)
	}
	return nil
}

// dispatch emits the generation event. A failure is logged only: the care
// plan is already durable as pending and the runner sweep picks it up.
func (s *Service) dispatch(ctx context.Context, carePlanID uuid.UUID) {
	event, err := events.NewCarePlanGenerationEvent(carePlanID)
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		s.logger.Warn("failed to dispatch care plan, leaving it for the sweep",
			slog.String("careplan_id", carePlanID.String()),
			slog.String("error", err.Error()))
	}
}

func sameDayBlock(medication string) *apperr.Error {
	return apperr.Block(
		apperr.CodeDuplicateOrderSameDay,
		fmt.Sprintf("An order for '%s' already exists today for this patient. "+
			"Duplicate orders on the same day are not allowed.", medication),
		map[string]any{"medication": medication},
	)
}

func activeBlock() *apperr.Error {
	return apperr.Block(
		apperr.CodeDuplicateActiveCarePlan,
		"A care plan is already being generated for this patient.",
		nil,
	)
}

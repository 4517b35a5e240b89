package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/careplan-api/internal/domain"
	"github.com/phrazzld/careplan-api/internal/platform/logger"
	"github.com/phrazzld/careplan-api/internal/store"
)

const carePlanColumns = `id, patient_id, order_id, status, content, attempts, created_at, updated_at`

const carePlanDetailSelect = `
	SELECT cp.id, cp.patient_id, cp.order_id, cp.status, cp.content, cp.attempts,
		cp.created_at, cp.updated_at,
		p.id, p.first_name, p.last_name, p.mrn, p.date_of_birth,
		p.medications, p.allergies, p.health_conditions, p.created_at, p.updated_at,
		o.id, o.provider_id, o.medication_name, o.icd10_code, o.created_at,
		pr.id, pr.name, pr.npi, pr.created_at
	FROM care_plans cp
	JOIN patients p ON p.id = cp.patient_id
	LEFT JOIN orders o ON o.id = cp.order_id
	LEFT JOIN providers pr ON pr.id = o.provider_id
`

// likeEscaper escapes LIKE wildcards so search terms match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PostgresCarePlanStore implements the store.CarePlanStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCarePlanStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCarePlanStore creates a new PostgreSQL implementation of the CarePlanStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresCarePlanStore(db store.DBTX, logger *slog.Logger) *PostgresCarePlanStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCarePlanStore{
		db:     db,
		logger: logger.With(slog.String("component", "careplan_store")),
	}
}

// Ensure PostgresCarePlanStore implements store.CarePlanStore interface
var _ store.CarePlanStore = (*PostgresCarePlanStore)(nil)

// Create implements store.CarePlanStore.Create
func (s *PostgresCarePlanStore) Create(ctx context.Context, plan *domain.CarePlan) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := plan.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO care_plans (` + carePlanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		plan.ID,
		plan.PatientID,
		nullUUID(plan.OrderID),
		string(plan.Status),
		plan.Content,
		plan.Attempts,
		plan.CreatedAt,
		plan.UpdatedAt,
	)
	if err != nil {
		log.Debug("failed to insert care plan",
			slog.String("careplan_id", plan.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Debug("care plan created", slog.String("careplan_id", plan.ID.String()))
	return nil
}

// GetByID implements store.CarePlanStore.GetByID
func (s *PostgresCarePlanStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.CarePlan, error) {
	query := `SELECT ` + carePlanColumns + ` FROM care_plans WHERE id = $1`
	plan, err := scanCarePlan(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCarePlanNotFound
		}
		return nil, MapError(err)
	}
	return plan, nil
}

// GetDetail implements store.CarePlanStore.GetDetail
func (s *PostgresCarePlanStore) GetDetail(ctx context.Context, id uuid.UUID) (*domain.CarePlanDetail, error) {
	query := carePlanDetailSelect + ` WHERE cp.id = $1`
	detail, err := scanCarePlanDetail(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCarePlanNotFound
		}
		return nil, MapError(err)
	}
	return detail, nil
}

// List implements store.CarePlanStore.List
func (s *PostgresCarePlanStore) List(ctx context.Context, query string) ([]*domain.CarePlanDetail, error) {
	sqlQuery := carePlanDetailSelect
	var args []any

	if q := strings.TrimSpace(query); q != "" {
		sqlQuery += `
		WHERE p.first_name ILIKE $1
			OR p.last_name ILIKE $1
			OR COALESCE(o.medication_name, p.medications) ILIKE $1
			OR o.icd10_code ILIKE $1
			OR pr.name ILIKE $1
		`
		args = append(args, "%"+likeEscaper.Replace(q)+"%")
	}
	sqlQuery += ` ORDER BY cp.created_at DESC`

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	details := []*domain.CarePlanDetail{}
	for rows.Next() {
		d, err := scanCarePlanDetail(rows)
		if err != nil {
			return nil, MapError(err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return details, nil
}

// HasActiveForPatient implements store.CarePlanStore.HasActiveForPatient
func (s *PostgresCarePlanStore) HasActiveForPatient(ctx context.Context, patientID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM care_plans
			WHERE patient_id = $1 AND status IN ('pending', 'processing')
		)
	`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, patientID).Scan(&exists); err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

// Claim implements store.CarePlanStore.Claim
func (s *PostgresCarePlanStore) Claim(ctx context.Context, id uuid.UUID) (*domain.CarePlan, error) {
	query := `
		UPDATE care_plans
		SET status = 'processing', updated_at = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + carePlanColumns
	plan, err := scanCarePlan(s.db.QueryRowContext(ctx, query, id, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.conflictOrNotFound(ctx, id, domain.CarePlanStatusPending)
		}
		return nil, MapError(err)
	}
	return plan, nil
}

// RecordAttempt implements store.CarePlanStore.RecordAttempt
func (s *PostgresCarePlanStore) RecordAttempt(ctx context.Context, id uuid.UUID) (int, error) {
	query := `
		UPDATE care_plans
		SET attempts = attempts + 1, updated_at = $2
		WHERE id = $1 AND status = 'processing'
		RETURNING attempts
	`
	var attempts int
	err := s.db.QueryRowContext(ctx, query, id, time.Now().UTC()).Scan(&attempts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, s.conflictOrNotFound(ctx, id, domain.CarePlanStatusProcessing)
		}
		return 0, MapError(err)
	}
	return attempts, nil
}

// Complete implements store.CarePlanStore.Complete
func (s *PostgresCarePlanStore) Complete(ctx context.Context, id uuid.UUID, content string) error {
	return s.finish(ctx, id, domain.CarePlanStatusCompleted, content)
}

// Fail implements store.CarePlanStore.Fail
func (s *PostgresCarePlanStore) Fail(ctx context.Context, id uuid.UUID, reason string) error {
	return s.finish(ctx, id, domain.CarePlanStatusFailed, reason)
}

// ResetToPending implements store.CarePlanStore.ResetToPending
func (s *PostgresCarePlanStore) ResetToPending(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE care_plans
		SET status = 'pending', updated_at = $2
		WHERE id = $1 AND status = 'processing'
	`
	result, err := s.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return MapError(err)
	}
	if err := CheckRowsAffected(result, nil); err != nil {
		return s.conflictOrNotFound(ctx, id, domain.CarePlanStatusProcessing)
	}
	return nil
}

// ListByStatus implements store.CarePlanStore.ListByStatus
func (s *PostgresCarePlanStore) ListByStatus(
	ctx context.Context,
	status domain.CarePlanStatus,
	olderThan time.Duration,
) ([]*domain.CarePlan, error) {
	query := `SELECT ` + carePlanColumns + ` FROM care_plans WHERE status = $1`
	args := []any{string(status)}
	if olderThan > 0 {
		query += ` AND updated_at < $2`
		args = append(args, time.Now().UTC().Add(-olderThan))
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var plans []*domain.CarePlan
	for rows.Next() {
		plan, err := scanCarePlan(rows)
		if err != nil {
			return nil, MapError(err)
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return plans, nil
}

// finish moves a processing plan to a terminal status.
func (s *PostgresCarePlanStore) finish(
	ctx context.Context,
	id uuid.UUID,
	status domain.CarePlanStatus,
	content string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE care_plans
		SET status = $2, content = $3, updated_at = $4
		WHERE id = $1 AND status = 'processing'
	`
	result, err := s.db.ExecContext(ctx, query, id, string(status), content, time.Now().UTC())
	if err != nil {
		log.Error("failed to finish care plan",
			slog.String("careplan_id", id.String()),
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, nil); err != nil {
		return s.conflictOrNotFound(ctx, id, domain.CarePlanStatusProcessing)
	}
	return nil
}

// conflictOrNotFound explains why a conditional update matched no row.
func (s *PostgresCarePlanStore) conflictOrNotFound(
	ctx context.Context,
	id uuid.UUID,
	required domain.CarePlanStatus,
) error {
	var current string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM care_plans WHERE id = $1`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrCarePlanNotFound
		}
		return MapError(err)
	}
	return store.NewStoreError("care_plan", "transition",
		fmt.Sprintf("care plan %s is %s, not %s", id, current, required), store.ErrStateConflict)
}

func scanCarePlan(row rowScanner) (*domain.CarePlan, error) {
	var (
		cp      domain.CarePlan
		orderID uuid.NullUUID
		status  string
	)
	err := row.Scan(
		&cp.ID,
		&cp.PatientID,
		&orderID,
		&status,
		&cp.Content,
		&cp.Attempts,
		&cp.CreatedAt,
		&cp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if orderID.Valid {
		id := orderID.UUID
		cp.OrderID = &id
	}
	cp.Status = domain.CarePlanStatus(status)
	cp.CreatedAt = cp.CreatedAt.UTC()
	cp.UpdatedAt = cp.UpdatedAt.UTC()
	return &cp, nil
}

func scanCarePlanDetail(row rowScanner) (*domain.CarePlanDetail, error) {
	var (
		d          domain.CarePlanDetail
		orderID    uuid.NullUUID
		status     string
		mrn        sql.NullString
		oID        uuid.NullUUID
		oProvider  uuid.NullUUID
		oMed       sql.NullString
		oICD10     sql.NullString
		oCreatedAt sql.NullTime
		prID       uuid.NullUUID
		prName     sql.NullString
		prNPI      sql.NullString
		prCreated  sql.NullTime
	)
	err := row.Scan(
		&d.ID, &d.PatientID, &orderID, &status, &d.Content, &d.Attempts,
		&d.CreatedAt, &d.UpdatedAt,
		&d.Patient.ID, &d.Patient.FirstName, &d.Patient.LastName, &mrn, &d.Patient.DateOfBirth,
		&d.Patient.Medications, &d.Patient.Allergies, &d.Patient.HealthConditions,
		&d.Patient.CreatedAt, &d.Patient.UpdatedAt,
		&oID, &oProvider, &oMed, &oICD10, &oCreatedAt,
		&prID, &prName, &prNPI, &prCreated,
	)
	if err != nil {
		return nil, err
	}

	d.Status = domain.CarePlanStatus(status)
	d.CreatedAt = d.CreatedAt.UTC()
	d.UpdatedAt = d.UpdatedAt.UTC()
	d.Patient.MRN = mrn.String
	d.Patient.DateOfBirth = domain.DateOf(d.Patient.DateOfBirth)
	d.Patient.CreatedAt = d.Patient.CreatedAt.UTC()
	d.Patient.UpdatedAt = d.Patient.UpdatedAt.UTC()

	if orderID.Valid {
		id := orderID.UUID
		d.OrderID = &id
	}
	if oID.Valid {
		d.Order = &domain.Order{
			ID:             oID.UUID,
			PatientID:      d.PatientID,
			ProviderID:     oProvider.UUID,
			MedicationName: oMed.String,
			ICD10Code:      oICD10.String,
			CreatedAt:      oCreatedAt.Time.UTC(),
		}
	}
	if prID.Valid {
		d.Provider = &domain.Provider{
			ID:        prID.UUID,
			Name:      prName.String,
			NPI:       prNPI.String,
			CreatedAt: prCreated.Time.UTC(),
		}
	}
	return &d, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/careplan-api/internal/domain"
	"github.com/phrazzld/careplan-api/internal/platform/logger"
	"github.com/phrazzld/careplan-api/internal/store"
)

const patientColumns = `id, first_name, last_name, mrn, date_of_birth,
	medications, allergies, health_conditions, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// PostgresPatientStore implements the store.PatientStore interface
// using a PostgreSQL database as the storage backend.
type PostgresPatientStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPatientStore creates a new PostgreSQL implementation of the PatientStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresPatientStore(db store.DBTX, logger *slog.Logger) *PostgresPatientStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPatientStore{
		db:     db,
		logger: logger.With(slog.String("component", "patient_store")),
	}
}

// Ensure PostgresPatientStore implements store.PatientStore interface
var _ store.PatientStore = (*PostgresPatientStore)(nil)

// Create implements store.PatientStore.Create
func (s *PostgresPatientStore) Create(ctx context.Context, patient *domain.Patient) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := patient.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO patients (` + patientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		patient.ID,
		patient.FirstName,
		patient.LastName,
		nullString(patient.MRN),
		patient.DateOfBirth,
		patient.Medications,
		patient.Allergies,
		patient.HealthConditions,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		log.Debug("failed to insert patient",
			slog.String("patient_id", patient.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Debug("patient created", slog.String("patient_id", patient.ID.String()))
	return nil
}

// GetByID implements store.PatientStore.GetByID
func (s *PostgresPatientStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	return s.getOne(ctx, query, id)
}

// GetByMRN implements store.PatientStore.GetByMRN
func (s *PostgresPatientStore) GetByMRN(ctx context.Context, mrn string) (*domain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE mrn = $1`
	return s.getOne(ctx, query, mrn)
}

// FindMRNPatientByIdentity implements store.PatientStore.FindMRNPatientByIdentity
func (s *PostgresPatientStore) FindMRNPatientByIdentity(
	ctx context.Context,
	firstName, lastName string,
	dob time.Time,
) (*domain.Patient, error) {
	query := `
		SELECT ` + patientColumns + `
		FROM patients
		WHERE mrn IS NOT NULL AND first_name = $1 AND last_name = $2 AND date_of_birth = $3
		ORDER BY created_at
		LIMIT 1
	`
	return s.getOne(ctx, query, firstName, lastName, domain.DateOf(dob))
}

// GetByIdentity implements store.PatientStore.GetByIdentity
func (s *PostgresPatientStore) GetByIdentity(
	ctx context.Context,
	firstName, lastName string,
	dob time.Time,
) (*domain.Patient, error) {
	query := `
		SELECT ` + patientColumns + `
		FROM patients
		WHERE mrn IS NULL AND first_name = $1 AND last_name = $2 AND date_of_birth = $3
	`
	return s.getOne(ctx, query, firstName, lastName, domain.DateOf(dob))
}

// UpdateClinicalFields implements store.PatientStore.UpdateClinicalFields
func (s *PostgresPatientStore) UpdateClinicalFields(
	ctx context.Context,
	id uuid.UUID,
	fields domain.ClinicalFields,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE patients
		SET medications = $2, allergies = $3, health_conditions = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		id,
		fields.Medications,
		fields.Allergies,
		fields.HealthConditions,
		time.Now().UTC(),
	)
	if err != nil {
		log.Debug("failed to update clinical fields",
			slog.String("patient_id", id.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrPatientNotFound)
}

func (s *PostgresPatientStore) getOne(ctx context.Context, query string, args ...any) (*domain.Patient, error) {
	p, err := scanPatient(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPatientNotFound
		}
		return nil, MapError(err)
	}
	return p, nil
}

func scanPatient(row rowScanner) (*domain.Patient, error) {
	var (
		p   domain.Patient
		mrn sql.NullString
	)
	err := row.Scan(
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&mrn,
		&p.DateOfBirth,
		&p.Medications,
		&p.Allergies,
		&p.HealthConditions,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.MRN = mrn.String
	p.DateOfBirth = domain.DateOf(p.DateOfBirth)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

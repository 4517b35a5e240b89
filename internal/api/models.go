package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/careplan-api/internal/domain"
)

// GenerateRequest defines the payload of POST /api/generate: a care plan for
// an order identified by provider NPI and patient MRN.
type GenerateRequest struct {
	ProviderName     string `json:"provider_name"      validate:"required,max=200"`
	ProviderNPI      string `json:"provider_npi"       validate:"required,len=10,numeric"`
	PatientFirstName string `json:"patient_first_name" validate:"required,max=100"`
	PatientLastName  string `json:"patient_last_name"  validate:"required,max=100"`
	PatientMRN       string `json:"patient_mrn"        validate:"required,len=6,numeric"`
	DateOfBirth      string `json:"date_of_birth"      validate:"required,datetime=2006-01-02"`
	MedicationName   string `json:"medication_name"    validate:"required,max=200"`
	ICD10Code        string `json:"icd10_code"         validate:"required,max=10"`
	Confirm          bool   `json:"confirm"`
}

// OrderRequest defines the payload of POST /api/orders: a medication guide for
// a patient identified by name and date of birth.
type OrderRequest struct {
	PatientFirstName string `json:"patient_first_name" validate:"required,max=100"`
	PatientLastName  string `json:"patient_last_name"  validate:"required,max=100"`
	DateOfBirth      string `json:"date_of_birth"      validate:"required,datetime=2006-01-02"`
	Medications      string `json:"medications"        validate:"required"`
	Allergies        string `json:"allergies"`
	HealthConditions string `json:"health_conditions"`
}

// AcknowledgementResponse is returned once a request is queued.
type AcknowledgementResponse struct {
	ID      uuid.UUID `json:"id"`
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
	Warning string    `json:"warning,omitempty"`
}

// CarePlanResponse is one care plan as listed and as reported by the status
// endpoint.
type CarePlanResponse struct {
	ID            uuid.UUID `json:"id"`
	PatientName   string    `json:"patient_name"`
	PatientMRN    string    `json:"patient_mrn"`
	Medication    string    `json:"medication"`
	ICD10Code     string    `json:"icd10_code"`
	ProviderName  string    `json:"provider_name"`
	ProviderNPI   string    `json:"provider_npi"`
	Status        string    `json:"status"`
	CarePlanText  string    `json:"care_plan_text"`
	FailureReason string    `json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// TokenRequest defines the payload of POST /api/auth/token.
type TokenRequest struct {
	ClientID     string `json:"client_id"     validate:"required"`
	ClientSecret string `json:"client_secret" validate:"required"`
}

// TokenResponse is a bearer token for the API.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	// ExpiresAt is the RFC 3339 expiry of the token
	ExpiresAt string `json:"expires_at"`
}

// HealthResponse reports liveness and storage reachability.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func carePlanToResponse(d *domain.CarePlanDetail) CarePlanResponse {
	resp := CarePlanResponse{
		ID:            d.ID,
		PatientName:   d.Patient.FullName(),
		PatientMRN:    d.Patient.MRN,
		Medication:    d.MedicationLabel(),
		Status:        string(d.Status),
		CarePlanText:  d.VisibleContent(),
		FailureReason: d.FailureReason(),
		CreatedAt:     d.CreatedAt,
	}
	if d.Order != nil {
		resp.ICD10Code = d.Order.ICD10Code
	}
	if d.Provider != nil {
		resp.ProviderName = d.Provider.Name
		resp.ProviderNPI = d.Provider.NPI
	}
	return resp
}

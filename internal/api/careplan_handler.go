package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/careplan-api/internal/admission"
	"github.com/phrazzld/careplan-api/internal/api/shared"
	"github.com/phrazzld/careplan-api/internal/platform/logger"
	"github.com/phrazzld/careplan-api/internal/service"
)

// Admitter accepts care plan requests.
type Admitter interface {
	SubmitOrder(ctx context.Context, req admission.OrderRequest) (*admission.Acknowledgement, error)
	SubmitClinical(ctx context.Context, req admission.ClinicalRequest) (*admission.Acknowledgement, error)
}

// CarePlanHandler handles care plan admission and retrieval requests.
type CarePlanHandler struct {
	admitter  Admitter
	carePlans service.CarePlanService
	logger    *slog.Logger
}

// NewCarePlanHandler creates a new CarePlanHandler
func NewCarePlanHandler(
	admitter Admitter,
	carePlans service.CarePlanService,
	logger *slog.Logger,
) *CarePlanHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CarePlanHandler")
	}

	return &CarePlanHandler{
		admitter:  admitter,
		carePlans: carePlans,
		logger:    logger.With(slog.String("component", "careplan_handler")),
	}
}

// Generate handles POST /api/generate
func (h *CarePlanHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	dob, err := parseDate("date_of_birth", req.DateOfBirth)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	ack, err := h.admitter.SubmitOrder(r.Context(), admission.OrderRequest{
		ProviderName:     req.ProviderName,
		ProviderNPI:      req.ProviderNPI,
		PatientFirstName: req.PatientFirstName,
		PatientLastName:  req.PatientLastName,
		PatientMRN:       req.PatientMRN,
		DateOfBirth:      dob,
		MedicationName:   req.MedicationName,
		ICD10Code:        strings.ToUpper(strings.TrimSpace(req.ICD10Code)),
		Confirm:          req.Confirm,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	h.respondAccepted(w, r, ack)
}

// CreateOrder handles POST /api/orders
func (h *CarePlanHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	dob, err := parseDate("date_of_birth", req.DateOfBirth)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	ack, err := h.admitter.SubmitClinical(r.Context(), admission.ClinicalRequest{
		PatientFirstName: req.PatientFirstName,
		PatientLastName:  req.PatientLastName,
		DateOfBirth:      dob,
		Medications:      req.Medications,
		Allergies:        req.Allergies,
		HealthConditions: req.HealthConditions,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	h.respondAccepted(w, r, ack)
}

// List handles GET /api/careplans
func (h *CarePlanHandler) List(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	plans, err := h.carePlans.List(r.Context(), query)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	resp := make([]CarePlanResponse, 0, len(plans))
	for _, p := range plans {
		resp = append(resp, carePlanToResponse(p))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Status handles GET /api/careplans/{id}/status
func (h *CarePlanHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	detail, err := h.carePlans.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, carePlanToResponse(detail))
}

// Download handles GET /api/careplans/{id}/download
func (h *CarePlanHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	doc, err := h.carePlans.Download(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(doc.Body)); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).
			Warn("failed to write care plan download", "careplan_id", id, "error", err)
	}
}

func (h *CarePlanHandler) respondAccepted(w http.ResponseWriter, r *http.Request, ack *admission.Acknowledgement) {
	logger.FromContextOrDefault(r.Context(), h.logger).Debug("care plan queued",
		slog.String("careplan_id", ack.ID.String()),
		slog.Bool("warning", ack.Warning != ""))

	shared.RespondWithJSON(w, r, http.StatusAccepted, AcknowledgementResponse{
		ID:      ack.ID,
		Status:  string(ack.Status),
		Message: ack.Message,
		Warning: ack.Warning,
	})
}

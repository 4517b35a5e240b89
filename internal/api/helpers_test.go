package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/careplan-api/internal/admission"
	"github.com/phrazzld/careplan-api/internal/api/shared"
	"github.com/phrazzld/careplan-api/internal/events"
	"github.com/phrazzld/careplan-api/internal/platform/memory"
	"github.com/phrazzld/careplan-api/internal/service"
	"github.com/phrazzld/careplan-api/internal/store"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testAPI wires the care plan handler to the in-memory store with no
// generation worker, so admitted plans stay pending.
type testAPI struct {
	router http.Handler
	stores store.Stores
	now    time.Time
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	logger := discardLogger()
	db := memory.NewDB()
	ta := &testAPI{
		stores: db.Stores(),
		now:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	admitter, err := admission.NewService(ta.stores, db, events.NewInMemoryEventEmitter(logger), logger,
		admission.WithClock(func() time.Time { return ta.now }))
	require.NoError(t, err)
	carePlans, err := service.NewCarePlanService(ta.stores.CarePlans, logger)
	require.NoError(t, err)

	ta.router = carePlanRouter(NewCarePlanHandler(admitter, carePlans, logger))
	return ta
}

func carePlanRouter(h *CarePlanHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/generate", h.Generate)
	r.Post("/api/orders", h.CreateOrder)
	r.Get("/api/careplans", h.List)
	r.Get("/api/careplans/{id}/status", h.Status)
	r.Get("/api/careplans/{id}/download", h.Download)
	return r
}

func (ta *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return serve(t, ta.router, method, path, body)
}

func serve(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	return decodeBody[shared.ErrorResponse](t, rec)
}

func generatePayload() map[string]any {
	return map[string]any{
		"provider_name":      "Dr. Sarah Smith",
		"provider_npi":       "1234567890",
		"patient_first_name": "Alice",
		"patient_last_name":  "Johnson",
		"patient_mrn":        "100001",
		"date_of_birth":      "1980-05-12",
		"medication_name":    "IVIG",
		"icd10_code":         "G70.00",
	}
}

func orderPayload() map[string]any {
	return map[string]any{
		"patient_first_name": "Isabel",
		"patient_last_name":  "Ortiz",
		"date_of_birth":      "1975-09-30",
		"medications":        "Metformin 500mg",
		"allergies":          "Penicillin",
	}
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/careplan-api/internal/api"
	"github.com/phrazzld/careplan-api/internal/config"
	"github.com/phrazzld/careplan-api/internal/generation"
	"github.com/phrazzld/careplan-api/internal/mocks"
	"github.com/phrazzld/careplan-api/internal/platform/memory"
	"github.com/phrazzld/careplan-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func carePlanGenerator() *mocks.MockGenerator {
	return &mocks.MockGenerator{
		GenerateFn: func(_ context.Context, in generation.Input) (string, error) {
			return "Care plan for " + in.PatientName, nil
		},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: 8080, LogLevel: "error", ShutdownTimeoutSeconds: 1},
		Database: config.DatabaseConfig{Driver: "memory"},
		Auth:     config.AuthConfig{TokenLifetimeMinutes: 60},
		LLM:      config.LLMConfig{ModelName: "test", RequestTimeoutSeconds: 5},
		Task: config.TaskConfig{
			QueueSize:            16,
			WorkerCount:          2,
			MaxAttempts:          4,
			BackoffBaseMillis:    0,
			StuckTaskAgeMinutes:  30,
			SweepIntervalSeconds: 60,
		},
	}
}

func startTestApp(t *testing.T, cfg *config.Config, gen generation.Generator) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := newApplication(context.Background(), cfg, logger,
		&storage{backend: memory.NewDB()}, gen)
	require.NoError(t, err)
	require.NoError(t, app.taskRunner.Start())
	t.Cleanup(app.cleanup)

	return app.setupRouter()
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func generateBody() map[string]any {
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

func waitForStatus(t *testing.T, h http.Handler, id, token, want string) api.CarePlanResponse {
	t.Helper()

	var last api.CarePlanResponse
	require.Eventually(t, func() bool {
		rec := doJSON(t, h, http.MethodGet, "/api/careplans/"+id+"/status", token, nil)
		if rec.Code != http.StatusOK {
			return false
		}
		last = api.CarePlanResponse{}
		if err := json.Unmarshal(rec.Body.Bytes(), &last); err != nil {
			return false
		}
		return last.Status == want
	}, 5*time.Second, 10*time.Millisecond, "care plan never reached %s", want)
	return last
}

func TestCarePlanLifecycle(t *testing.T) {
	t.Parallel()

	gen := carePlanGenerator()
	router := startTestApp(t, testConfig(), gen)

	rec := doJSON(t, router, http.MethodPost, "/api/generate", "", generateBody())
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var ack api.AcknowledgementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	assert.Equal(t, "pending", ack.Status)

	item := waitForStatus(t, router, ack.ID.String(), "", "completed")
	assert.Equal(t, "Care plan for Alice Johnson", item.CarePlanText)
	assert.Empty(t, item.FailureReason)
	assert.Equal(t, 1, gen.Calls())

	download := doJSON(t, router, http.MethodGet, "/api/careplans/"+ack.ID.String()+"/download", "", nil)
	require.Equal(t, http.StatusOK, download.Code)
	assert.True(t, strings.HasSuffix(download.Body.String(), "\n\nCare plan for Alice Johnson\n"), download.Body.String())
}

func TestCarePlanFailsAfterFourAttempts(t *testing.T) {
	t.Parallel()

	gen := &mocks.MockGenerator{Err: errors.New("rate limit exceeded")}
	router := startTestApp(t, testConfig(), gen)

	rec := doJSON(t, router, http.MethodPost, "/api/generate", "", generateBody())
	require.Equal(t, http.StatusAccepted, rec.Code)
	var ack api.AcknowledgementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))

	item := waitForStatus(t, router, ack.ID.String(), "", "failed")
	assert.Empty(t, item.CarePlanText)
	assert.Equal(t, "care plan generation failed after 4 attempts: mock: rate limit exceeded", item.FailureReason)
	assert.Equal(t, 4, gen.Calls())
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	router := startTestApp(t, testConfig(), carePlanGenerator())

	rec := doJSON(t, router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","database":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
}

func TestTokenRouteAbsentWhenAuthDisabled(t *testing.T) {
	t.Parallel()

	router := startTestApp(t, testConfig(), carePlanGenerator())

	rec := doJSON(t, router, http.MethodPost, "/api/auth/token", "", map[string]string{
		"client_id": "intake-portal", "client_secret": "s3cret-value",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthenticatedRoutes(t *testing.T) {
	t.Parallel()

	hash, err := auth.HashSecret("s3cret-value", bcrypt.MinCost)
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Auth = config.AuthConfig{
		Enabled:              true,
		JWTSecret:            "test-secret-that-is-at-least-32-characters",
		TokenLifetimeMinutes: 60,
		ClientID:             "intake-portal",
		ClientSecretHash:     hash,
	}
	router := startTestApp(t, cfg, carePlanGenerator())

	unauthenticated := doJSON(t, router, http.MethodGet, "/api/careplans", "", nil)
	require.Equal(t, http.StatusUnauthorized, unauthenticated.Code)

	badSecret := doJSON(t, router, http.MethodPost, "/api/auth/token", "", map[string]string{
		"client_id": "intake-portal", "client_secret": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, badSecret.Code)

	tokenRec := doJSON(t, router, http.MethodPost, "/api/auth/token", "", map[string]string{
		"client_id": "intake-portal", "client_secret": "s3cret-value",
	})
	require.Equal(t, http.StatusOK, tokenRec.Code, tokenRec.Body.String())
	var token api.TokenResponse
	require.NoError(t, json.Unmarshal(tokenRec.Body.Bytes(), &token))

	list := doJSON(t, router, http.MethodGet, "/api/careplans", token.AccessToken, nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.JSONEq(t, "[]", list.Body.String())

	health := doJSON(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, health.Code)
}

package gemini

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/phrazzld/careplan-api/internal/config"
	"github.com/phrazzld/careplan-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	resp     *genai.GenerateContentResponse
	err      error
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(
	_ context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	f.model, f.contents, f.config = model, contents, config
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: "model"}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: content, FinishReason: genai.FinishReasonStop}},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.LLMConfig {
	return config.LLMConfig{
		GeminiAPIKey:          "test-key",
		ModelName:             "gemini-2.0-flash",
		Temperature:           0.7,
		RequestTimeoutSeconds: 30,
	}
}

func input() generation.Input {
	return generation.Input{
		PatientName:  "Alice Johnson",
		Medication:   "Metformin 500mg",
		ICD10Code:    "E11.9",
		ProviderName: "Dr. Smith",
	}
}

func TestGenerate_Success(t *testing.T) {
	t.Parallel()

	models := &fakeModels{resp: textResponse("## Problem List\n", "- Diabetes\n")}
	g, err := newGenerator(testLogger(), models, testConfig())
	require.NoError(t, err)

	text, err := g.Generate(context.Background(), input())
	require.NoError(t, err)
	assert.Equal(t, "## Problem List\n- Diabetes", text)

	assert.Equal(t, "gemini-2.0-flash", models.model)
	require.Len(t, models.contents, 1)
	require.NotEmpty(t, models.contents[0].Parts)
	assert.Contains(t, models.contents[0].Parts[0].Text, "Medication: Metformin 500mg")
	require.NotNil(t, models.config.Temperature)
	assert.InDelta(t, 0.7, *models.config.Temperature, 0.0001)
	assert.Equal(t, generation.SystemInstruction, models.config.SystemInstruction.Parts[0].Text)
}

func TestGenerate_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		models   *fakeModels
		expected error
	}{
		{"api error", &fakeModels{err: errors.New("429 resource exhausted")}, generation.ErrGenerationFailed},
		{"nil response", &fakeModels{}, generation.ErrInvalidResponse},
		{"no candidates", &fakeModels{resp: &genai.GenerateContentResponse{}}, generation.ErrInvalidResponse},
		{"blank text", &fakeModels{resp: textResponse("  ")}, generation.ErrInvalidResponse},
		{"safety block", &fakeModels{resp: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
		}}, generation.ErrContentBlocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g, err := newGenerator(testLogger(), tt.models, testConfig())
			require.NoError(t, err)

			_, err = g.Generate(context.Background(), input())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expected)

			var pe *generation.ProviderError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, ProviderName, pe.Provider)
		})
	}
}

func TestGenerate_InvalidInputSkipsCall(t *testing.T) {
	t.Parallel()

	models := &fakeModels{resp: textResponse("unused")}
	g, err := newGenerator(testLogger(), models, testConfig())
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), generation.Input{PatientName: "Alice"})
	assert.ErrorIs(t, err, generation.ErrEmptyInput)
	assert.Empty(t, models.model)
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	assert.NoError(t, validateConfig(ctx, testLogger(), testConfig()))

	cfg := testConfig()
	cfg.GeminiAPIKey = ""
	assert.ErrorIs(t, validateConfig(ctx, testLogger(), cfg), generation.ErrInvalidConfig)

	cfg = testConfig()
	cfg.ModelName = ""
	assert.ErrorIs(t, validateConfig(ctx, testLogger(), cfg), generation.ErrInvalidConfig)

	cfg = testConfig()
	cfg.Temperature = 3
	assert.ErrorIs(t, validateConfig(ctx, testLogger(), cfg), generation.ErrInvalidConfig)
}

func TestNewGenerator_PlaceholderWithoutKey(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	for _, key := range []string{"", "  ", "your-api-key-here", " your-api-key-here\n"} {
		cfg.GeminiAPIKey = key
		g, err := NewGenerator(context.Background(), testLogger(), cfg)
		require.NoError(t, err, "key %q", key)
		assert.IsType(t, generation.PlaceholderGenerator{}, g, "key %q", key)
	}

	_, err := NewGenerator(context.Background(), nil, cfg)
	assert.Error(t, err)
}

func TestNewGenerator_BadPromptTemplate(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.PromptTemplatePath = "/nonexistent/prompt.tmpl"
	_, err := newGenerator(testLogger(), &fakeModels{}, cfg)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}

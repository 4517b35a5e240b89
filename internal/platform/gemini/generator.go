package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/careplan-api/internal/config"
	"github.com/phrazzld/careplan-api/internal/generation"
	"google.golang.org/genai"
)

// ProviderName identifies Gemini in provider errors.
const ProviderName = "gemini"

// modelsAPI is the part of genai.Models the generator uses.
type modelsAPI interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator implements generation.Generator using the Gemini API.
type GeminiGenerator struct {
	logger      *slog.Logger
	models      modelsAPI
	model       string
	temperature float32
	prompts     *generation.PromptBuilder
}

var _ generation.Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a generator backed by a live genai client.
func NewGeminiGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if err := validateConfig(ctx, logger, cfg); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newGenerator(logger, client.Models, cfg)
}

func newGenerator(logger *slog.Logger, models modelsAPI, cfg config.LLMConfig) (*GeminiGenerator, error) {
	prompts, err := generation.NewPromptBuilder(cfg.PromptTemplatePath)
	if err != nil {
		return nil, err
	}
	return &GeminiGenerator{
		logger:      logger.With(slog.String("component", "gemini_generator")),
		models:      models,
		model:       cfg.ModelName,
		temperature: cfg.Temperature,
		prompts:     prompts,
	}, nil
}

// Generate implements generation.Generator with a single API call.
func (g *GeminiGenerator) Generate(ctx context.Context, in generation.Input) (string, error) {
	prompt, err := g.prompts.Build(in)
	if err != nil {
		return "", generation.NewProviderError(ProviderName, err)
	}

	g.logger.DebugContext(ctx, "calling Gemini",
		slog.String("careplan_id", in.CarePlanID.String()),
		slog.String("model", g.model),
		slog.Int("prompt_length", len(prompt)))

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: generation.SystemInstruction}},
		},
	})
	if err != nil {
		return "", generation.NewProviderError(ProviderName,
			fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err))
	}

	text, err := responseText(resp)
	if err != nil {
		return "", generation.NewProviderError(ProviderName, err)
	}
	return text, nil
}

// responseText extracts the generated text of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	switch {
	case resp == nil:
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	case len(resp.Candidates) == 0:
		return "", fmt.Errorf("%w: no candidates", generation.ErrInvalidResponse)
	case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
		return "", generation.ErrContentBlocked
	case resp.Candidates[0].Content == nil:
		return "", fmt.Errorf("%w: empty content", generation.ErrInvalidResponse)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty text", generation.ErrInvalidResponse)
	}
	return text, nil
}

package gemini

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/phrazzld/careplan-api/internal/config"
	"github.com/phrazzld/careplan-api/internal/generation"
)

// sampleAPIKey is the key value shipped in sample configuration files.
const sampleAPIKey = "your-api-key-here"

// NewGenerator returns the Gemini generator when an API key is configured and
// the offline placeholder otherwise. The sample key counts as unconfigured.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (generation.Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if key := strings.TrimSpace(cfg.GeminiAPIKey); key == "" || key == sampleAPIKey {
		logger.InfoContext(ctx, "no Gemini API key configured, using placeholder generator")
		return generation.PlaceholderGenerator{}, nil
	}

	logger.InfoContext(ctx, "initializing Gemini generator", slog.String("model", cfg.ModelName))
	return NewGeminiGenerator(ctx, logger, cfg)
}

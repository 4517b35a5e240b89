package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/careplan-api/internal/generation"
	"github.com/phrazzld/careplan-api/internal/platform/logger"
	"github.com/phrazzld/careplan-api/internal/store"
)

// Processor-specific errors
var (
	ErrNilCarePlanStore = errors.New("care plan store cannot be nil")
	ErrNilGenerator     = errors.New("generator cannot be nil")
)

// DefaultMaxAttempts is one provider call plus three retries.
const DefaultMaxAttempts = 4

// ProcessorConfig controls the attempt loop of the care plan processor.
type ProcessorConfig struct {
	// MaxAttempts is the total number of provider calls per care plan.
	MaxAttempts int
	// BackoffBase is the delay before the first retry; later retries double it.
	BackoffBase time.Duration
	// RequestTimeout bounds each provider call. Zero disables the bound.
	RequestTimeout time.Duration
}

// DefaultProcessorConfig returns the production attempt settings.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		MaxAttempts:    DefaultMaxAttempts,
		BackoffBase:    time.Second,
		RequestTimeout: 60 * time.Second,
	}
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// CarePlanProcessor drives one care plan from pending to completed or failed.
type CarePlanProcessor struct {
	plans     store.CarePlanStore
	generator generation.Generator
	config    ProcessorConfig
	sleep     Sleeper
	logger    *slog.Logger
}

// NewCarePlanProcessor creates a processor.
func NewCarePlanProcessor(
	plans store.CarePlanStore,
	generator generation.Generator,
	config ProcessorConfig,
	logger *slog.Logger,
) (*CarePlanProcessor, error) {
	if plans == nil {
		return nil, ErrNilCarePlanStore
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	return &CarePlanProcessor{
		plans:     plans,
		generator: generator,
		config:    config,
		sleep:     sleepContext,
		logger:    logger.With("component", "careplan_processor"),
	}, nil
}

// SetSleeper replaces the wait between attempts.
func (p *CarePlanProcessor) SetSleeper(s Sleeper) {
	p.sleep = s
}

// Process claims the care plan and runs the attempt loop. A plan that is not
// pending is left alone. Provider failures end up on the row, so the returned
// error only reports store trouble or cancellation.
func (p *CarePlanProcessor) Process(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, p.logger).With("careplan_id", id)

	plan, err := p.plans.Claim(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrStateConflict) {
			log.Debug("care plan not pending, skipping")
			return nil
		}
		if errors.Is(err, store.ErrCarePlanNotFound) {
			log.Warn("care plan to process does not exist")
			return nil
		}
		return fmt.Errorf("failed to claim care plan %s: %w", id, err)
	}

	if plan.Attempts >= p.config.MaxAttempts {
		log.Warn("care plan recovered with exhausted attempt budget",
			"attempts", plan.Attempts)
		return p.fail(ctx, id, failureReason(plan.Attempts,
			errors.New("attempt budget exhausted before processing resumed")))
	}

	detail, err := p.plans.GetDetail(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load care plan %s: %w", id, err)
	}
	input := generation.InputFromDetail(detail)
	if err := input.Validate(); err != nil {
		log.Error("care plan cannot be generated", "error", err)
		return p.fail(ctx, id, fmt.Sprintf("care plan generation failed: %v", err))
	}

	var lastErr error
	for {
		attempt, err := p.plans.RecordAttempt(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to record attempt for care plan %s: %w", id, err)
		}

		content, genErr := p.generate(ctx, input)
		if genErr == nil {
			if err := p.plans.Complete(ctx, id, content); err != nil {
				return fmt.Errorf("failed to complete care plan %s: %w", id, err)
			}
			log.Info("care plan completed", "attempts", attempt)
			return nil
		}

		// Shutdown: the row stays processing for the next start to recover.
		if ctx.Err() != nil {
			log.Info("care plan generation interrupted", "attempt", attempt)
			return ctx.Err()
		}

		lastErr = genErr
		log.Warn("care plan generation attempt failed",
			"attempt", attempt,
			"max_attempts", p.config.MaxAttempts,
			"error", genErr)

		if attempt >= p.config.MaxAttempts {
			return p.fail(ctx, id, failureReason(attempt, lastErr))
		}

		if err := p.sleep(ctx, Backoff(p.config.BackoffBase, attempt)); err != nil {
			return err
		}
	}
}

func (p *CarePlanProcessor) generate(ctx context.Context, input generation.Input) (string, error) {
	if p.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.RequestTimeout)
		defer cancel()
	}
	return p.generator.Generate(ctx, input)
}

func (p *CarePlanProcessor) fail(ctx context.Context, id uuid.UUID, reason string) error {
	if err := p.plans.Fail(ctx, id, reason); err != nil {
		return fmt.Errorf("failed to mark care plan %s failed: %w", id, err)
	}
	p.logger.Error("care plan generation failed", "careplan_id", id, "reason", reason)
	return nil
}

func failureReason(attempts int, err error) string {
	return fmt.Sprintf("care plan generation failed after %d attempts: %v", attempts, err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/careplan-api/internal/domain"
	"github.com/phrazzld/careplan-api/internal/platform/logger"
	"github.com/phrazzld/careplan-api/internal/store"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process care plans
	WorkerCount int

	// StuckTaskAge defines how long a care plan can be in processing state
	// before it's considered stuck and reset
	StuckTaskAge time.Duration

	// SweepInterval defines how often to look for stuck and unqueued plans
	// If zero, defaults to 5 minutes
	SweepInterval time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:   2,
		StuckTaskAge:  30 * time.Minute,
		SweepInterval: 5 * time.Minute,
	}
}

// Processor handles one care plan id taken off the queue.
type Processor interface {
	Process(ctx context.Context, id uuid.UUID) error
}

// TaskRunner manages background care plan generation
type TaskRunner struct {
	plans      store.CarePlanStore
	queue      *ChannelQueue
	processor  Processor
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     TaskRunnerConfig
	logger     *slog.Logger
}

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(
	plans store.CarePlanStore,
	queue *ChannelQueue,
	processor Processor,
	config TaskRunnerConfig,
	logger *slog.Logger,
) *TaskRunner {
	if config.SweepInterval <= 0 {
		config.SweepInterval = 5 * time.Minute
	}
	if config.WorkerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
		config.WorkerCount = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &TaskRunner{
		plans:      plans,
		queue:      queue,
		processor:  processor,
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger.With("component", "task_runner"),
	}
}

// Submit hands a care plan id to the workers.
func (r *TaskRunner) Submit(ctx context.Context, id uuid.UUID) error {
	return r.queue.Enqueue(ctx, id)
}

// Start recovers unfinished plans, then starts the workers and the sweep.
func (r *TaskRunner) Start() error {
	if err := r.Recover(r.ctx); err != nil {
		return fmt.Errorf("failed to recover care plans: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.sweepLoop()

	return nil
}

// Stop cancels in-flight work and waits for the workers to return.
func (r *TaskRunner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
	r.queue.Close()
}

// Recover requeues pending plans and resets plans left processing by a
// previous run. Only plans processing for longer than StuckTaskAge are reset;
// younger ones may belong to another live instance and are left to the sweep.
func (r *TaskRunner) Recover(ctx context.Context) error {
	pending, err := r.plans.ListByStatus(ctx, domain.CarePlanStatusPending, 0)
	if err != nil {
		return fmt.Errorf("failed to get pending care plans: %w", err)
	}

	processing, err := r.plans.ListByStatus(ctx, domain.CarePlanStatusProcessing, r.config.StuckTaskAge)
	if err != nil {
		return fmt.Errorf("failed to get processing care plans: %w", err)
	}

	r.logger.Info("recovering unfinished care plans",
		"pending_count", len(pending),
		"processing_count", len(processing))

	for _, plan := range pending {
		r.requeue(ctx, plan.ID)
	}
	for _, plan := range processing {
		r.resetAndRequeue(ctx, plan.ID)
	}
	return nil
}

// Sweep resets plans stuck in processing and requeues pending plans that
// were never picked up, for example after a dispatch failure.
func (r *TaskRunner) Sweep(ctx context.Context) error {
	stuck, err := r.plans.ListByStatus(ctx, domain.CarePlanStatusProcessing, r.config.StuckTaskAge)
	if err != nil {
		return fmt.Errorf("failed to get stuck care plans: %w", err)
	}
	if len(stuck) > 0 {
		r.logger.Info("found stuck care plans", "count", len(stuck))
	}
	for _, plan := range stuck {
		r.resetAndRequeue(ctx, plan.ID)
	}

	waiting, err := r.plans.ListByStatus(ctx, domain.CarePlanStatusPending, r.config.SweepInterval)
	if err != nil {
		return fmt.Errorf("failed to get waiting care plans: %w", err)
	}
	for _, plan := range waiting {
		r.requeue(ctx, plan.ID)
	}
	return nil
}

func (r *TaskRunner) resetAndRequeue(ctx context.Context, id uuid.UUID) {
	if err := r.plans.ResetToPending(ctx, id); err != nil {
		if errors.Is(err, store.ErrStateConflict) {
			// Finished or reclaimed since it was listed.
			return
		}
		r.logger.Error("failed to reset care plan to pending",
			"careplan_id", id,
			"error", err)
		return
	}
	r.requeue(ctx, id)
}

func (r *TaskRunner) requeue(ctx context.Context, id uuid.UUID) {
	if err := r.queue.Enqueue(ctx, id); err != nil {
		r.logger.Error("failed to requeue care plan",
			"careplan_id", id,
			"error", err)
	}
}

func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	log := r.logger.With("worker_id", id)
	log.Debug("starting worker")

	for {
		planID, err := r.queue.Receive(r.ctx)
		if err != nil {
			log.Debug("stopping worker", "reason", err)
			return
		}

		ctx := logger.WithLogger(r.ctx, log)
		if err := r.processor.Process(ctx, planID); err != nil {
			if r.ctx.Err() != nil {
				log.Info("care plan left processing at shutdown", "careplan_id", planID)
				return
			}
			log.Error("care plan processing failed",
				"careplan_id", planID,
				"error", err)
		}
	}
}

func (r *TaskRunner) sweepLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			if err := r.Sweep(r.ctx); err != nil {
				r.logger.Error("care plan sweep failed", "error", err)
			}
		}
	}
}

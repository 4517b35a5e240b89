package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/careplan-api/internal/admission"
	"github.com/phrazzld/careplan-api/internal/config"
	"github.com/phrazzld/careplan-api/internal/events"
	"github.com/phrazzld/careplan-api/internal/generation"
	"github.com/phrazzld/careplan-api/internal/platform/gemini"
	"github.com/phrazzld/careplan-api/internal/service"
	"github.com/phrazzld/careplan-api/internal/service/auth"
	"github.com/phrazzld/careplan-api/internal/task"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	storage *storage

	// Service interfaces
	admission *admission.Service
	carePlans service.CarePlanService
	generator generation.Generator

	// Set only when auth is enabled
	jwtService    auth.JWTService
	authenticator *auth.ClientAuthenticator

	eventEmitter *events.InMemoryEventEmitter
	taskRunner   *task.TaskRunner
}

// newApplication creates a new application instance with all dependencies
// initialized. The task runner is created but not started.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	st *storage,
	generator generation.Generator,
) (*application, error) {
	app := &application{
		config:    cfg,
		logger:    logger,
		storage:   st,
		generator: generator,
	}
	stores := st.backend.Stores()

	var err error
	if generator == nil {
		app.generator, err = gemini.NewGenerator(ctx, logger.With("component", "llm_generator"), cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
		}
	}

	if cfg.Auth.Enabled {
		app.jwtService, err = auth.NewJWTService(cfg.Auth)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
		}
		app.authenticator, err = auth.NewClientAuthenticator(cfg.Auth, auth.NewBcryptVerifier())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize client authenticator: %w", err)
		}
		logger.Info("API authentication enabled",
			"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)
	}

	processor, err := task.NewCarePlanProcessor(stores.CarePlans, app.generator, task.ProcessorConfig{
		MaxAttempts:    cfg.Task.MaxAttempts,
		BackoffBase:    cfg.Task.BackoffBase(),
		RequestTimeout: cfg.LLM.RequestTimeout(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create care plan processor: %w", err)
	}

	app.taskRunner = task.NewTaskRunner(
		stores.CarePlans,
		task.NewChannelQueue(cfg.Task.QueueSize, logger),
		processor,
		task.TaskRunnerConfig{
			WorkerCount:   cfg.Task.WorkerCount,
			StuckTaskAge:  cfg.Task.StuckTaskAge(),
			SweepInterval: cfg.Task.SweepInterval(),
		},
		logger,
	)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(task.NewCarePlanEventHandler(app.taskRunner, logger))

	app.admission, err = admission.NewService(stores, st.backend, app.eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create admission service: %w", err)
	}

	app.carePlans, err = service.NewCarePlanService(stores.CarePlans, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create care plan service: %w", err)
	}

	logger.Info("application initialized")
	return app, nil
}

// Run starts the task runner and serves HTTP until ctx is done.
func (app *application) Run(ctx context.Context) error {
	if err := app.taskRunner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.storage != nil {
		if err := app.storage.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}

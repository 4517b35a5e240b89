package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/careplan-api/internal/events"
)

// Submitter accepts care plan ids for background generation.
type Submitter interface {
	Submit(ctx context.Context, id uuid.UUID) error
}

// CarePlanEventHandler implements events.EventHandler by submitting the care
// plan of each generation event to the runner.
type CarePlanEventHandler struct {
	submitter Submitter
	logger    *slog.Logger
}

// NewCarePlanEventHandler creates a handler submitting to submitter.
func NewCarePlanEventHandler(submitter Submitter, logger *slog.Logger) *CarePlanEventHandler {
	return &CarePlanEventHandler{
		submitter: submitter,
		logger:    logger.With("component", "careplan_event_handler"),
	}
}

// HandleEvent submits the care plan named by a generation event. Events of
// other types are ignored.
func (h *CarePlanEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	if event.Type != events.CarePlanGenerationType {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload events.CarePlanGenerationPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if payload.CarePlanID == uuid.Nil {
		return fmt.Errorf("event %s carries no care plan id", event.ID)
	}

	if err := h.submitter.Submit(ctx, payload.CarePlanID); err != nil {
		h.logger.Error("failed to submit care plan",
			"error", err,
			"careplan_id", payload.CarePlanID,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit care plan: %w", err)
	}

	h.logger.Debug("care plan submitted",
		"careplan_id", payload.CarePlanID,
		"event_id", event.ID)
	return nil
}

var _ events.EventHandler = (*CarePlanEventHandler)(nil)

package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler implements EventHandler for testing
type recordingHandler struct {
	events []*TaskRequestEvent
	err    error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *TaskRequestEvent) error {
	h.events = append(h.events, event)
	return h.err
}

func TestNewCarePlanGenerationEvent(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	event, err := NewCarePlanGenerationEvent(id)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, CarePlanGenerationType, event.Type)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)
	assert.JSONEq(t, `{"careplan_id":"`+id.String()+`"}`, string(event.Payload))

	var payload CarePlanGenerationPayload
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, id, payload.CarePlanID)
}

func TestNewTaskRequestEvent_UnmarshalablePayload(t *testing.T) {
	t.Parallel()

	_, err := NewTaskRequestEvent("bad", make(chan int))
	assert.Error(t, err)
}

func TestInMemoryEventEmitter(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	event, err := NewCarePlanGenerationEvent(uuid.New())
	require.NoError(t, err)

	t.Run("no handlers", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(logger)
		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("delivers to every handler", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(logger)
		h1, h2 := &recordingHandler{}, &recordingHandler{}
		emitter.RegisterHandler(h1)
		emitter.RegisterHandler(h2)

		require.NoError(t, emitter.EmitEvent(context.Background(), event))
		assert.Equal(t, []*TaskRequestEvent{event}, h1.events)
		assert.Equal(t, []*TaskRequestEvent{event}, h2.events)
	})

	t.Run("failing handler does not stop delivery", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(logger)
		failing := &recordingHandler{err: errors.New("queue full")}
		ok := &recordingHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(ok)

		err := emitter.EmitEvent(context.Background(), event)
		assert.EqualError(t, err, "queue full")
		assert.Len(t, ok.events, 1)
	})
}

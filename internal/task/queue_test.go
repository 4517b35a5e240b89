package task

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelQueue(t *testing.T) {
	t.Parallel()

	t.Run("enqueue and receive", func(t *testing.T) {
		t.Parallel()
		q := NewChannelQueue(2, discardLogger())
		id := uuid.New()

		require.NoError(t, q.Enqueue(context.Background(), id))
		assert.Equal(t, 1, q.Len())

		got, err := q.Receive(context.Background())
		require.NoError(t, err)
		assert.Equal(t, id, got)
	})

	t.Run("full queue", func(t *testing.T) {
		t.Parallel()
		q := NewChannelQueue(1, discardLogger())

		require.NoError(t, q.Enqueue(context.Background(), uuid.New()))
		err := q.Enqueue(context.Background(), uuid.New())
		assert.ErrorIs(t, err, ErrQueueFull)
	})

	t.Run("closed queue", func(t *testing.T) {
		t.Parallel()
		q := NewChannelQueue(2, discardLogger())
		id := uuid.New()
		require.NoError(t, q.Enqueue(context.Background(), id))

		q.Close()
		q.Close()

		assert.ErrorIs(t, q.Enqueue(context.Background(), uuid.New()), ErrQueueClosed)

		got, err := q.Receive(context.Background())
		require.NoError(t, err, "buffered ids survive Close")
		assert.Equal(t, id, got)

		_, err = q.Receive(context.Background())
		assert.ErrorIs(t, err, ErrQueueClosed)
	})

	t.Run("receive honors context", func(t *testing.T) {
		t.Parallel()
		q := NewChannelQueue(1, discardLogger())
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := q.Receive(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("enqueue with cancelled context", func(t *testing.T) {
		t.Parallel()
		q := NewChannelQueue(1, discardLogger())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.ErrorIs(t, q.Enqueue(ctx, uuid.New()), context.Canceled)
		assert.Equal(t, 0, q.Len())
	})
}

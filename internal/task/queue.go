package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Common errors returned by the queue
var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// Queue hands care plan ids from admission to the workers. Delivery is
// at least once and unordered.
type Queue interface {
	Enqueue(ctx context.Context, id uuid.UUID) error
	Receive(ctx context.Context) (uuid.UUID, error)
}

// ChannelQueue is a bounded in-process Queue backed by a buffered channel.
type ChannelQueue struct {
	ids    chan uuid.UUID
	mu     sync.RWMutex
	closed bool
	logger *slog.Logger
}

var _ Queue = (*ChannelQueue)(nil)

// NewChannelQueue creates a queue holding at most size ids.
func NewChannelQueue(size int, logger *slog.Logger) *ChannelQueue {
	if size <= 0 {
		size = 1
	}
	return &ChannelQueue{
		ids:    make(chan uuid.UUID, size),
		logger: logger,
	}
}

// Enqueue adds an id without blocking.
// Returns ErrQueueFull when the buffer is full and ErrQueueClosed after Close.
func (q *ChannelQueue) Enqueue(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.ids <- id:
		q.logger.Debug("care plan enqueued",
			"careplan_id", id,
			"queue_len", len(q.ids),
			"queue_cap", cap(q.ids))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.ids))
	}
}

// Receive blocks until an id is available, ctx is done or the queue is closed
// and drained.
func (q *ChannelQueue) Receive(ctx context.Context) (uuid.UUID, error) {
	select {
	case <-ctx.Done():
		return uuid.Nil, ctx.Err()
	case id, ok := <-q.ids:
		if !ok {
			return uuid.Nil, ErrQueueClosed
		}
		return id, nil
	}
}

// Len reports the number of buffered ids.
func (q *ChannelQueue) Len() int {
	return len(q.ids)
}

// Close stops further submission. Buffered ids can still be received.
func (q *ChannelQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ids)
		q.logger.Info("task queue closed")
	}
}

// Package queue buffers history writes between the request path and the
// history workers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/dugout/internal/domain/model"
	"github.com/okian/dugout/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Reasons reported when Enqueue rejects a play.
const (
	ReasonClosed    = "closed"
	ReasonFull      = "queue_full"
	ReasonCancelled = "context_cancelled"
)

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a play without blocking.
	// Returns false if the queue is full or closed and the play was not enqueued.
	Enqueue(ctx context.Context, p model.Play) bool

	// Dequeue returns the receive side of the queue. The channel is closed
	// once the queue is closed and every buffered play has been received.
	Dequeue() <-chan model.Play

	// Len returns the current number of queued plays.
	Len() int

	// Cap returns the maximum number of buffered plays.
	Cap() int

	// Close stops accepting plays. Buffered plays can still be dequeued.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	plays    chan model.Play
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.plays = make(chan model.Play, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a play to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, p model.Play) bool { //nolint:gocritic // hugeParam: Play is passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError(ReasonClosed)
		return false
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError(ReasonCancelled)
		return false
	}

	select {
	case q.plays <- p:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.plays))
		return true
	default:
		metrics.RecordQueueEnqueueError(ReasonFull)
		return false
	}
}

// Dequeue returns the receive side of the queue.
func (q *InMemoryQueue) Dequeue() <-chan model.Play {
	return q.plays
}

// Len returns the current number of queued plays.
func (q *InMemoryQueue) Len() int {
	size := len(q.plays)
	metrics.UpdateQueueSize(size)
	return size
}

// Cap returns the queue capacity.
func (q *InMemoryQueue) Cap() int { return q.capacity }

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.plays)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

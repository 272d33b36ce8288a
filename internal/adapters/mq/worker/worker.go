// Package worker drains the history queue into the play store.
package worker

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/okian/dugout/internal/domain/model"
	"github.com/okian/dugout/pkg/logger"
	"github.com/okian/dugout/pkg/metrics"
)

const (
	defaultWorkerCount  = 2
	poolShutdownTimeout = 30 * time.Second
)

// Saver persists a history record.
type Saver interface {
	Create(ctx context.Context, p model.Play) (model.Play, error)
}

// Queue defines how workers receive plays.
type Queue interface {
	Dequeue() <-chan model.Play
}

// ErrorHandler is told about plays that could not be saved.
type ErrorHandler func(p model.Play, err error)

// Worker processes queued plays until the queue is closed and drained.
type Worker interface {
	// Run starts the worker loop until the queue closes or ctx is canceled.
	Run(ctx context.Context)

	// Done is closed when Run returns.
	Done() <-chan struct{}
}

// InMemoryWorker implements Worker for saving plays.
type InMemoryWorker struct {
	queue   Queue
	saver   Saver
	name    string
	onError ErrorHandler

	done chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, saver Saver, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:  queue,
		saver:  saver,
		name:   "history-worker",
		done:   make(chan struct{}),
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	plays := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-plays:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			if err := w.save(ctx, p); err != nil {
				w.logger.Error(ctx, "error saving play", logger.String("playID", p.ID), logger.Error(err))
			}
		}
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) save(ctx context.Context, p model.Play) error { //nolint:gocritic // hugeParam: Play is passed by value for channel semantics
	start := time.Now()
	_, err := w.saver.Create(ctx, p)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordHistoryError("create")
		if w.onError != nil {
			w.onError(p, err)
		}
		return fmt.Errorf("save play %s: %w", p.ID, err)
	}
	metrics.RecordWorkerProcessed(float64(time.Since(start).Microseconds()) / 1000)
	metrics.RecordHistorySaved("async")
	return nil
}

// Pool manages multiple workers reading the same queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	stop   sync.Once
	logger logger.Logger
}

// NewPool creates a new worker pool. Worker options apply to every worker;
// names are suffixed with the worker index.
func NewPool(workerCount int, queue Queue, saver Saver, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	base := &InMemoryWorker{logger: logger.Nop()}
	for _, opt := range opts {
		opt(base)
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  base.logger.Named("history-pool"),
	}
	for i := range workerCount {
		wopts := append(slices.Clone(opts), WithName("history-worker-"+strconv.Itoa(i)))
		pool.workers[i] = NewInMemoryWorker(queue, saver, wopts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	var err error
	p.stop.Do(func() {
		if closer, ok := p.queue.(interface{ Close() error }); ok {
			if cerr := closer.Close(); cerr != nil {
				p.logger.Error(ctx, "error closing queue", logger.Error(cerr))
			}
		}

		shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
		defer cancel()

		for i, w := range p.workers {
			select {
			case <-w.done:
			case <-shutdownCtx.Done():
				p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
				err = fmt.Errorf("shutdown timed out: %w", shutdownCtx.Err())
				return
			}
		}
		metrics.UpdateWorkerCount(0)
	})
	return err
}

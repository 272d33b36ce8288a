// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	historyqueue "github.com/okian/dugout/internal/adapters/mq/queue"
	workerpool "github.com/okian/dugout/internal/adapters/mq/worker"
	"github.com/okian/dugout/internal/adapters/repository"
	"github.com/okian/dugout/internal/domain/dedupe"
	"github.com/okian/dugout/internal/domain/engine"
	"github.com/okian/dugout/internal/domain/model"
	"github.com/okian/dugout/internal/domain/types"
	"github.com/okian/dugout/pkg/logger"
	"github.com/okian/dugout/pkg/metrics"
)

// modeSync labels history writes made on the request path.
const modeSync = "sync"

// SaveOptions controls whether a recommendation is written to history.
type SaveOptions struct {
	Save bool
	// IdempotencyKey makes repeated saves return the first history id.
	IdempotencyKey string
}

// Recommendation is the engine output plus how it was recorded.
type Recommendation struct {
	Plan  model.StrategyPlan
	Trace engine.Trace

	// HistoryID is set when the plan was saved.
	HistoryID string
	// Replayed reports that HistoryID came from an earlier request with the
	// same idempotency key.
	Replayed bool
}

// Service implements the API dependencies for the play-calling system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	deduper    dedupe.Deduper
	queue      historyqueue.Queue
	workerPool *workerpool.Pool

	// Configuration
	workerCount     int
	queueSize       int
	idempotencySize int
	asyncHistory    bool
	now             func() time.Time

	// State
	started   bool
	startedAt time.Time

	recommendations atomic.Int64
	savedAsync      atomic.Int64
	savedSync       atomic.Int64
	fallbacks       atomic.Int64
	replays         atomic.Int64
	writeErrors     atomic.Int64

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     2,
		queueSize:       1024,
		idempotencySize: dedupe.DefaultMaxSize,
		asyncHistory:    true,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting play-calling service...")

	if s.store == nil {
		s.store = repository.NewMemoryStore(ctx)
		s.logger.Info(ctx, "using in-memory history store")
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.idempotencySize))

	if s.asyncHistory {
		q := historyqueue.NewInMemoryQueue(historyqueue.WithCapacity(s.queueSize))
		s.queue = q
		s.workerPool = workerpool.NewPool(s.workerCount, q, s.store,
			workerpool.WithLogger(s.logger),
			workerpool.WithErrorHandler(func(p model.Play, err error) {
				s.writeErrors.Add(1)
				s.logger.Warn(context.Background(), "async history write dropped",
					logger.String("playID", p.ID), logger.Error(err))
			}),
		)
		// Writers outlive the caller's context so Stop can drain them.
		s.workerPool.Start(context.WithoutCancel(ctx))
	}

	metrics.UpdateHistoryRecords(s.store.Count(ctx))

	s.started = true
	s.startedAt = s.now()
	s.logger.Info(ctx, "play-calling service started",
		logger.Bool("asyncHistory", s.asyncHistory),
		logger.Int("historyWorkers", s.workerCount),
		logger.Int("historyQueueSize", s.queueSize),
		logger.Int("idempotencySize", s.idempotencySize),
	)
	return nil
}

// Stop drains pending history writes and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping play-calling service...")

	if s.workerPool != nil {
		if err := s.workerPool.Shutdown(ctx); err != nil {
			s.logger.Error(ctx, "history writers did not drain", logger.Error(err))
		}
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error(ctx, "error closing history store", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "play-calling service stopped")
}

// Recommend runs the engine for sit and, when asked, records the plan.
func (s *Service) Recommend(ctx context.Context, sit model.GameSituation, opts SaveOptions) (Recommendation, error) {
	start := time.Now()
	plan, trace := engine.Evaluate(sit)
	latency := float64(time.Since(start).Microseconds()) / 1000
	metrics.RecordRecommendation(trace, engine.HighLeverage(sit.Inning, sit.ScoreDifference), latency)
	s.recommendations.Add(1)

	rec := Recommendation{Plan: plan, Trace: trace}
	if !opts.Save {
		return rec, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return Recommendation{}, ErrNotStarted
	}

	id := uuid.NewString()
	if opts.IdempotencyKey != "" {
		if first, seen := s.deduper.SeenAndRecord(ctx, opts.IdempotencyKey, id); seen {
			s.replays.Add(1)
			metrics.RecordIdempotentReplay()
			s.logger.Debug(ctx, "idempotent replay",
				logger.String("idempotencyKey", opts.IdempotencyKey),
				logger.String("playID", first),
			)
			rec.HistoryID, rec.Replayed = first, true
			return rec, nil
		}
		metrics.UpdateIdempotencyEntries(int(s.deduper.Size()))
	}

	play := model.NewPlayFromPlan(sit, plan)
	play.ID = id

	if err := s.save(ctx, play); err != nil {
		if opts.IdempotencyKey != "" {
			s.deduper.Unrecord(ctx, opts.IdempotencyKey)
		}
		return Recommendation{}, err
	}
	rec.HistoryID = id
	return rec, nil
}

// save hands p to the writers, or writes it inline when the queue refuses it.
func (s *Service) save(ctx context.Context, p model.Play) error { //nolint:gocritic // hugeParam: Play is passed by value for channel semantics
	if s.queue != nil {
		if s.queue.Enqueue(ctx, p) {
			s.savedAsync.Add(1)
			return nil
		}
		s.fallbacks.Add(1)
		s.logger.Warn(ctx, "history queue rejected play, writing synchronously",
			logger.String("playID", p.ID),
			logger.Int("queueLength", s.queue.Len()),
		)
	}

	if _, err := s.store.Create(ctx, p); err != nil {
		s.writeErrors.Add(1)
		metrics.RecordHistoryError("create")
		s.logger.Error(ctx, "history write failed", logger.String("playID", p.ID), logger.Error(err))
		return fmt.Errorf("%w: %w", ErrNoHistory, err)
	}
	s.savedSync.Add(1)
	metrics.RecordHistorySaved(modeSync)
	return nil
}

// ListPlays returns one page of history.
func (s *Service) ListPlays(ctx context.Context, opts repository.ListOptions) (types.PlayList, error) {
	store, err := s.history()
	if err != nil {
		return types.PlayList{}, err
	}
	plays, total, err := store.List(ctx, opts)
	if err != nil {
		return types.PlayList{}, err
	}
	limit := opts.Limit
	if limit == 0 {
		limit = repository.DefaultListLimit
	}
	return types.PlayList{Items: plays, Total: total, Limit: limit, Offset: opts.Offset}, nil
}

// GetPlay returns a single record.
func (s *Service) GetPlay(ctx context.Context, id string) (model.Play, error) {
	store, err := s.history()
	if err != nil {
		return model.Play{}, err
	}
	return store.Get(ctx, id)
}

// CreatePlay stores a manually entered record.
func (s *Service) CreatePlay(ctx context.Context, p model.Play) (model.Play, error) {
	store, err := s.history()
	if err != nil {
		return model.Play{}, err
	}
	p.ID = ""
	p.GeneratedFromEngine = false
	created, err := store.Create(ctx, p)
	if err != nil {
		metrics.RecordHistoryError("create")
		return model.Play{}, err
	}
	metrics.RecordHistorySaved("manual")
	s.logger.Info(ctx, "manual play recorded", logger.String("playID", created.ID), logger.String("play", created.String()))
	return created, nil
}

// UpdatePlay replaces the editable fields of a record.
func (s *Service) UpdatePlay(ctx context.Context, id string, p model.Play) (model.Play, error) {
	store, err := s.history()
	if err != nil {
		return model.Play{}, err
	}
	p.ID = id
	updated, err := store.Update(ctx, p)
	if err != nil {
		metrics.RecordHistoryError("update")
		return model.Play{}, err
	}
	return updated, nil
}

// PatchPlay applies only the fields present in patch.
func (s *Service) PatchPlay(ctx context.Context, id string, patch types.PlayInput) (model.Play, error) {
	store, err := s.history()
	if err != nil {
		return model.Play{}, err
	}
	existing, err := store.Get(ctx, id)
	if err != nil {
		return model.Play{}, err
	}
	merged, err := patch.Merge(existing).Build()
	if err != nil {
		return model.Play{}, err
	}
	return s.UpdatePlay(ctx, id, merged)
}

// DeletePlay removes a record.
func (s *Service) DeletePlay(ctx context.Context, id string) error {
	store, err := s.history()
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, id); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			metrics.RecordHistoryError("delete")
		}
		return err
	}
	s.logger.Info(ctx, "play deleted", logger.String("playID", id))
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":           s.started,
		"asyncHistory":      s.asyncHistory,
		"historyWorkers":    s.workerCount,
		"historyQueueSize":  s.queueSize,
		"idempotencySize":   s.idempotencySize,
		"recommendations":   s.recommendations.Load(),
		"historySavedAsync": s.savedAsync.Load(),
		"historySavedSync":  s.savedSync.Load(),
		"historyFallbacks":  s.fallbacks.Load(),
		"idempotentReplays": s.replays.Load(),
		"historyErrors":     s.writeErrors.Load(),
	}

	if s.started {
		ctx := context.Background()
		records := s.store.Count(ctx)
		stats["historyRecords"] = records
		stats["idempotencyEntries"] = s.deduper.Size()
		stats["uptimeSeconds"] = int64(s.now().Sub(s.startedAt).Seconds())
		metrics.UpdateHistoryRecords(records)
		if s.queue != nil {
			stats["historyQueueLength"] = s.queue.Len()
		}
	}
	return stats
}

func (s *Service) history() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

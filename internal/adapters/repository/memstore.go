package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/dugout/internal/domain/model"
	"github.com/okian/dugout/pkg/metrics"
)

// MemoryStore keeps the history in a map guarded by a RWMutex.
// It is the default backend and loses its contents on restart.
type MemoryStore struct {
	settings

	mu    sync.RWMutex
	byID  map[string]model.Play
	close  sync.Once
	closed atomic.Bool

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewMemoryStore constructs an in-memory store with configuration options.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		settings: defaultSettings(),
		byID:     make(map[string]model.Play),
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(&s.settings)
	}
	s.startMetricsUpdater(ctx)
	return s
}

// Create implements Store.Create.
func (s *MemoryStore) Create(_ context.Context, p model.Play) (model.Play, error) {
	defer observe("create", time.Now())

	if s.closed.Load() {
		return model.Play{}, ErrClosed
	}

	if p.ID == "" {
		p.ID = s.newID()
	}
	now := stamp(s.now)
	p.CreatedAt, p.UpdatedAt = now, now

	s.mu.Lock()
	if _, ok := s.byID[p.ID]; ok {
		s.mu.Unlock()
		return model.Play{}, ErrConflict
	}
	s.byID[p.ID] = p
	n := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateHistoryRecords(n)
	return p, nil
}

// Get implements Store.Get.
func (s *MemoryStore) Get(_ context.Context, id string) (model.Play, error) {
	defer observe("get", time.Now())

	if s.closed.Load() {
		return model.Play{}, ErrClosed
	}

	s.mu.RLock()
	p, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return model.Play{}, ErrNotFound
	}
	return p, nil
}

// List implements Store.List.
func (s *MemoryStore) List(_ context.Context, opts ListOptions) ([]model.Play, int, error) {
	defer observe("list", time.Now())

	if s.closed.Load() {
		return nil, 0, ErrClosed
	}

	opts, err := opts.normalize()
	if err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	matched := make([]model.Play, 0, len(s.byID))
	for _, p := range s.byID {
		if opts.matches(&p) {
			matched = append(matched, p)
		}
	}
	s.mu.RUnlock()

	sortPlays(matched)
	total := len(matched)
	if opts.Offset >= total {
		return []model.Play{}, total, nil
	}
	end := min(opts.Offset+opts.Limit, total)
	return matched[opts.Offset:end], total, nil
}

// Update implements Store.Update.
func (s *MemoryStore) Update(_ context.Context, p model.Play) (model.Play, error) {
	defer observe("update", time.Now())

	if s.closed.Load() {
		return model.Play{}, ErrClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.byID[p.ID]
	if !ok {
		return model.Play{}, ErrNotFound
	}
	p.CreatedAt = old.CreatedAt
	p.GeneratedFromEngine = old.GeneratedFromEngine
	p.UpdatedAt = stamp(s.now)
	s.byID[p.ID] = p
	return p, nil
}

// Delete implements Store.Delete.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	defer observe("delete", time.Now())

	if s.closed.Load() {
		return ErrClosed
	}

	s.mu.Lock()
	if _, ok := s.byID[id]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.byID, id)
	n := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateHistoryRecords(n)
	return nil
}

// Count implements Store.Count. A closed store counts as zero.
func (s *MemoryStore) Count(_ context.Context) int {
	if s.closed.Load() {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Close stops the background metrics goroutine. Later calls return ErrClosed.
func (s *MemoryStore) Close() error {
	s.close.Do(func() {
		s.closed.Store(true)
		close(s.stopChan)
	})
	s.wg.Wait()
	return nil
}

// startMetricsUpdater periodically publishes the record count.
func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateHistoryRecords(s.Count(ctx))
			}
		}
	}()
}

func observe(op string, start time.Time) {
	metrics.RecordRepositoryLatency(op, float64(time.Since(start).Microseconds())/1000)
}

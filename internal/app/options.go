package service

import (
	"time"

	"github.com/okian/dugout/internal/adapters/repository"
	"github.com/okian/dugout/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore sets the history backend. The service takes ownership and
// closes it on Stop. Without it an in-memory store is created on Start.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithHistoryQueueSize sets the capacity of the async history queue.
func WithHistoryQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithHistoryWorkers sets the number of history writer goroutines.
func WithHistoryWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithIdempotencySize sets how many idempotency keys are remembered.
func WithIdempotencySize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.idempotencySize = size
		}
	}
}

// WithAsyncHistory toggles queued history writes. When disabled every save
// is written before Recommend returns.
func WithAsyncHistory(enabled bool) Option {
	return func(s *Service) {
		s.asyncHistory = enabled
	}
}

// WithClock overrides the time source used for uptime reporting.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

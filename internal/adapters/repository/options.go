package repository

import (
	"time"

	"github.com/google/uuid"
)

// settings are shared by every Store implementation.
type settings struct {
	metricsUpdateInterval time.Duration
	now                   func() time.Time
	newID                 func() string
}

func defaultSettings() settings {
	return settings{
		metricsUpdateInterval: 5 * time.Second,
		now:                   time.Now,
		newID:                 uuid.NewString,
	}
}

// Option applies a configuration option to a Store.
type Option func(*settings)

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *settings) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how ids are assigned to new records.
func WithIDGenerator(newID func() string) Option {
	return func(s *settings) {
		if newID != nil {
			s.newID = newID
		}
	}
}

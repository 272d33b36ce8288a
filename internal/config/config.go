// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/okian/dugout/internal/adapters/repository"
)

// metricName matches a Prometheus name component or label name.
var metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// History backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// HistoryBackend selects the play store: memory or sqlite.
	HistoryBackend string `koanf:"history_backend"`

	// SQLitePath is the database file used by the sqlite backend.
	SQLitePath string `koanf:"sqlite_path"`

	// HistoryQueueSize bounds the async history queue.
	HistoryQueueSize int `koanf:"history_queue_size"`

	// HistoryWorkers sets the number of async history writers.
	HistoryWorkers int `koanf:"history_workers"`

	// AsyncHistory routes saves through the queue instead of the request path.
	AsyncHistory bool `koanf:"async_history"`

	// IdempotencyCacheSize bounds the remembered Idempotency-Key values.
	IdempotencyCacheSize int `koanf:"idempotency_cache_size"`

	// DefaultListLimit and MaxListLimit bound GET /plays?limit.
	DefaultListLimit int `koanf:"default_list_limit"`
	MaxListLimit     int `koanf:"max_list_limit"`

	// MetricsNamespace and MetricsSubsystem prefix every exported metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsEnabled turns recommendation counters on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsLabels are constant labels added to every metric.
	MetricsLabels map[string]string `koanf:"metrics_labels"`

	// MetricsLatencyBuckets overrides the HTTP and repository latency buckets.
	MetricsLatencyBuckets []float64 `koanf:"metrics_latency_buckets"`
}

// New creates a Config with defaults. The context is reserved for sources
// that need one.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		HistoryBackend:       BackendMemory,
		SQLitePath:           "data/dugout.db",
		HistoryQueueSize:     1024,
		HistoryWorkers:       2,
		AsyncHistory:         true,
		IdempotencyCacheSize: 10_000,
		DefaultListLimit:     50,
		MaxListLimit:         500,
		MetricsNamespace:     "dugout",
		MetricsSubsystem:     "playcalling",
		MetricsEnabled:       true,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.HistoryBackend != BackendMemory && c.HistoryBackend != BackendSQLite:
		return fmt.Errorf("%w: history_backend must be %q or %q, got %q",
			ErrInvalidConfig, BackendMemory, BackendSQLite, c.HistoryBackend)
	case c.HistoryBackend == BackendSQLite && strings.TrimSpace(c.SQLitePath) == "":
		return fmt.Errorf("%w: sqlite_path is required for the sqlite backend", ErrInvalidConfig)
	case c.HistoryQueueSize < 1:
		return fmt.Errorf("%w: history_queue_size must be positive", ErrInvalidConfig)
	case c.HistoryWorkers < 1:
		return fmt.Errorf("%w: history_workers must be positive", ErrInvalidConfig)
	case c.IdempotencyCacheSize < 1:
		return fmt.Errorf("%w: idempotency_cache_size must be positive", ErrInvalidConfig)
	case c.MaxListLimit < 1 || c.MaxListLimit > repository.MaxListLimit:
		return fmt.Errorf("%w: max_list_limit must be between 1 and %d", ErrInvalidConfig, repository.MaxListLimit)
	case c.DefaultListLimit < 1 || c.DefaultListLimit > c.MaxListLimit:
		return fmt.Errorf("%w: default_list_limit must be between 1 and max_list_limit", ErrInvalidConfig)
	case !metricName.MatchString(c.MetricsNamespace):
		return fmt.Errorf("%w: metrics_namespace %q is not a valid metric name", ErrInvalidConfig, c.MetricsNamespace)
	case !metricName.MatchString(c.MetricsSubsystem):
		return fmt.Errorf("%w: metrics_subsystem %q is not a valid metric name", ErrInvalidConfig, c.MetricsSubsystem)
	case !increasing(c.MetricsLatencyBuckets):
		return fmt.Errorf("%w: metrics_latency_buckets must be strictly increasing", ErrInvalidConfig)
	}
	for name := range c.MetricsLabels {
		if !metricName.MatchString(name) {
			return fmt.Errorf("%w: metrics_labels key %q is not a valid label name", ErrInvalidConfig, name)
		}
	}
	return nil
}

func increasing(buckets []float64) bool {
	for i := 1; i < len(buckets); i++ {
		if buckets[i] <= buckets[i-1] {
			return false
		}
	}
	return true
}

// Package replay drives a running dugout server with generated game
// situations and checks every answer against the local engine.
package replay

import (
	"errors"
	"sync/atomic"
	"time"
)

// Defaults used by the replay command.
const (
	DefaultBaseURL     = "http://localhost:9080"
	DefaultCount       = 1000
	DefaultConcurrency = 8
	DefaultTimeout     = 10 * time.Second
)

// Error constants.
var (
	ErrUnhealthy = errors.New("service is not healthy")
	ErrMismatch  = errors.New("responses did not match the local engine")
	ErrConfig    = errors.New("invalid replay config")
)

// Config holds configuration for a replay run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Count       int           // Number of situations to send
	Seed        uint64        // Seed for the situation generator
	Concurrency int           // Requests in flight at once
	Timeout     time.Duration // HTTP request timeout
	Save        bool          // Ask the server to record every plan
	OutputFile  string        // Optional JSON dump of the generated situations
	Verbose     bool          // Log every mismatch
}

func (c *Config) validate() error {
	switch {
	case c.BaseURL == "":
		return errors.Join(ErrConfig, errors.New("base url is required"))
	case c.Count < 1:
		return errors.Join(ErrConfig, errors.New("count must be positive"))
	case c.Concurrency < 1:
		return errors.Join(ErrConfig, errors.New("concurrency must be positive"))
	case c.Timeout <= 0:
		return errors.Join(ErrConfig, errors.New("timeout must be positive"))
	}
	return nil
}

// Stats holds replay statistics.
type Stats struct {
	Generated  int
	Sent       int64
	Matched    int64
	Mismatched int64
	Failed     int64
	Saved      int64
	Duration   time.Duration
}

// counters is the concurrent side of Stats.
type counters struct {
	sent, matched, mismatched, failed, saved atomic.Int64
}

func (c *counters) snapshot(generated int, d time.Duration) Stats {
	return Stats{
		Generated:  generated,
		Sent:       c.sent.Load(),
		Matched:    c.matched.Load(),
		Mismatched: c.mismatched.Load(),
		Failed:     c.failed.Load(),
		Saved:      c.saved.Load(),
		Duration:   d,
	}
}

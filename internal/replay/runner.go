package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/dugout/internal/domain/engine"
	"github.com/okian/dugout/internal/domain/model"
	"github.com/okian/dugout/internal/domain/validation"
	"github.com/okian/dugout/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Header names sent by the replay.
const headerIdempotencyKey = "Idempotency-Key"

// Run executes a complete replay: health check, generation, concurrent
// submission and verification. It returns ErrMismatch when any response
// disagreed with the local engine or could not be fetched.
func Run(ctx context.Context, cfg *Config, log logger.Logger) (Stats, error) {
	if err := cfg.validate(); err != nil {
		return Stats{}, err
	}
	start := time.Now()

	log.Info(ctx, "starting replay",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("count", cfg.Count),
		logger.Int("concurrency", cfg.Concurrency),
		logger.String("timeout", cfg.Timeout.String()),
		logger.Bool("save", cfg.Save),
	)

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	if err := checkHealth(ctx, client); err != nil {
		return Stats{}, err
	}

	situations := Generate(cfg.Seed, cfg.Count)
	log.Info(ctx, "generated situations", logger.Int("count", len(situations)))

	if cfg.OutputFile != "" {
		if err := saveSituations(cfg.OutputFile, situations); err != nil {
			log.Warn(ctx, "failed to save situations to file", logger.Error(err))
		} else {
			log.Info(ctx, "situations saved to file", logger.String("filename", cfg.OutputFile))
		}
	}

	var c counters
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for i, s := range situations {
		g.Go(func() error {
			c.sent.Add(1)
			status, body, err := submit(gctx, client, s, cfg.Save)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				c.failed.Add(1)
				log.Warn(gctx, "request failed", logger.Int("index", i), logger.Error(err))
				return nil
			}
			if err := verify(s, status, body, cfg.Save); err != nil {
				c.mismatched.Add(1)
				if cfg.Verbose {
					log.Warn(gctx, "response mismatch",
						logger.Int("index", i),
						logger.String("situation", engine.Summary(s)),
						logger.String("bases", s.BaseState()),
						logger.String("count", s.Count()),
						logger.Error(err),
					)
				}
				return nil
			}
			c.matched.Add(1)
			if cfg.Save {
				c.saved.Add(1)
			}
			return nil
		})
	}
	waitErr := g.Wait()

	stats := c.snapshot(len(situations), time.Since(start))
	logStats(ctx, log, stats)

	if waitErr != nil {
		return stats, fmt.Errorf("replay interrupted: %w", waitErr)
	}
	if stats.Mismatched > 0 || stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d mismatched, %d failed", ErrMismatch, stats.Mismatched, stats.Failed)
	}
	return stats, nil
}

func submit(ctx context.Context, client *httpClient, s model.GameSituation, save bool) (int, []byte, error) {
	req := validation.FromSituation(s)
	req.SaveToHistory = save
	var headers map[string]string
	if save {
		headers = map[string]string{headerIdempotencyKey: uuid.NewString()}
	}
	return client.post(ctx, "/recommendations", req, headers)
}

// checkHealth verifies the service is running.
func checkHealth(ctx context.Context, client *httpClient) error {
	status, _, err := client.get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, status)
	}
	return nil
}

// saveSituations writes the generated situations as a JSON array.
func saveSituations(filename string, situations []model.GameSituation) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(situations, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal situations: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

func logStats(ctx context.Context, log logger.Logger, s Stats) {
	var perSecond float64
	if s.Duration > 0 {
		perSecond = float64(s.Sent) / s.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("generated", s.Generated),
		logger.Int("sent", int(s.Sent)),
		logger.Int("matched", int(s.Matched)),
		logger.Int("mismatched", int(s.Mismatched)),
		logger.Int("failed", int(s.Failed)),
		logger.Int("saved", int(s.Saved)),
		logger.String("duration", s.Duration.String()),
		logger.Float64("requestsPerSecond", perSecond),
	)
}

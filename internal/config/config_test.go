package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/dugout/internal/adapters/repository"
	"github.com/okian/dugout/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.HistoryBackend, convey.ShouldEqual, config.BackendMemory)
			convey.So(cfg.HistoryQueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.HistoryWorkers, convey.ShouldEqual, 2)
			convey.So(cfg.AsyncHistory, convey.ShouldBeTrue)
			convey.So(cfg.IdempotencyCacheSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.DefaultListLimit, convey.ShouldEqual, 50)
			convey.So(cfg.MaxListLimit, convey.ShouldEqual, 500)
			convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "dugout")
			convey.So(cfg.MetricsSubsystem, convey.ShouldEqual, "playcalling")
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one bad setting", t, func() {
		cases := map[string]func(c *config.Config){
			"addr":                    func(c *config.Config) { c.Addr = " " },
			"history_backend":         func(c *config.Config) { c.HistoryBackend = "postgres" },
			"sqlite_path":             func(c *config.Config) { c.HistoryBackend, c.SQLitePath = config.BackendSQLite, "" },
			"history_queue_size":      func(c *config.Config) { c.HistoryQueueSize = 0 },
			"history_workers":         func(c *config.Config) { c.HistoryWorkers = -1 },
			"idempotency_cache_size":  func(c *config.Config) { c.IdempotencyCacheSize = 0 },
			"max_list_limit":          func(c *config.Config) { c.MaxListLimit = 0 },
			"default_list_limit":      func(c *config.Config) { c.DefaultListLimit = 1000 },
			"metrics_namespace":       func(c *config.Config) { c.MetricsNamespace = "dug-out" },
			"metrics_subsystem":       func(c *config.Config) { c.MetricsSubsystem = "" },
			"metrics_latency_buckets": func(c *config.Config) { c.MetricsLatencyBuckets = []float64{1, 5, 5} },
			"metrics_labels":          func(c *config.Config) { c.MetricsLabels = map[string]string{"9env": "x"} },
		}

		for key, edit := range cases {
			cfg := config.New(context.Background())
			edit(cfg)
			err := cfg.Validate()

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, key)
		}
	})
}

func TestConfig_ValidateListCeiling(t *testing.T) {
	convey.Convey("Given a max_list_limit above the store page ceiling", t, func() {
		cfg := config.New(context.Background())
		cfg.MaxListLimit = repository.MaxListLimit + 1

		convey.Convey("Then validation should reject it", func() {
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "max_list_limit")
		})
	})

	convey.Convey("Given a max_list_limit equal to the ceiling", t, func() {
		cfg := config.New(context.Background())
		cfg.MaxListLimit = repository.MaxListLimit

		convey.Convey("Then validation should accept it", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/dugout/internal/adapters/repository"
	"github.com/okian/dugout/internal/config"
	"github.com/okian/dugout/internal/domain/types"
	"github.com/okian/dugout/pkg/logger"
	"github.com/okian/dugout/pkg/metrics"
)

func TestConfigFromEnv(t *testing.T) {
	convey.Convey("Given dugout environment variables", t, func() {
		t.Setenv("DUGOUT_ADDR", ":8081")
		t.Setenv("DUGOUT_HISTORY_BACKEND", "sqlite")
		t.Setenv("DUGOUT_HISTORY_WORKERS", "4")

		convey.Convey("Then configuration should pick them up", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8081")
			convey.So(cfg.HistoryBackend, convey.ShouldEqual, config.BackendSQLite)
			convey.So(cfg.HistoryWorkers, convey.ShouldEqual, 4)
		})
	})

	convey.Convey("Given an empty listen address", t, func() {
		t.Setenv("DUGOUT_ADDR", " ")

		convey.Convey("Then loading should fail", func() {
			cfg, err := config.Load(context.Background())
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

func TestOpenStore(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)

		convey.Convey("When the memory backend is selected", func() {
			store, err := openStore(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			defer store.Close()

			convey.So(store, convey.ShouldHaveSameTypeAs, &repository.MemoryStore{})
		})

		convey.Convey("When the sqlite backend is selected", func() {
			cfg.HistoryBackend = config.BackendSQLite
			cfg.SQLitePath = filepath.Join(t.TempDir(), "nested", "dugout.db")
			store, err := openStore(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			defer store.Close()

			convey.So(store, convey.ShouldHaveSameTypeAs, &repository.SQLiteStore{})
			convey.So(store.Count(ctx), convey.ShouldEqual, 0)
		})
	})
}

func TestMux(t *testing.T) {
	convey.Convey("Given a started service behind the full mux", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)
		cfg.AsyncHistory = false

		store, err := openStore(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)
		svc := newService(cfg, store, logger.Nop())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		convey.Reset(svc.Stop)

		mux := newMux(ctx, cfg, svc, logger.Nop())
		do := func(method, target, body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(method, target, strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			return w
		}

		convey.Convey("When a saved recommendation is requested", func() {
			w := do(http.MethodPost, "/recommendations", `{
				"offenseTeam":"Visitors","defenseTeam":"Home","inning":9,"halfInning":"bottom",
				"outs":1,"balls":3,"strikes":2,"runnersOnThird":true,"scoreDifference":-1,
				"saveToHistory":true}`)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)

			var rec types.RecommendationResponse
			convey.So(json.Unmarshal(w.Body.Bytes(), &rec), convey.ShouldBeNil)
			convey.So(rec.HistoryID, convey.ShouldNotBeEmpty)

			convey.Convey("Then the history should list it", func() {
				w := do(http.MethodGet, "/plays", "")
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				var page types.PlayList
				convey.So(json.Unmarshal(w.Body.Bytes(), &page), convey.ShouldBeNil)
				convey.So(page.Total, convey.ShouldEqual, 1)
				convey.So(page.Items[0].ID, convey.ShouldEqual, rec.HistoryID)
				convey.So(page.Items[0].RecommendedPitch, convey.ShouldEqual, rec.PitchCall)
				convey.So(page.Limit, convey.ShouldEqual, cfg.DefaultListLimit)
			})
		})

		convey.Convey("Then the web app, docs and ops routes should all answer", func() {
			convey.So(do(http.MethodGet, "/", "").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(do(http.MethodGet, "/api-docs", "").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(do(http.MethodGet, "/openapi.yaml", "").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(do(http.MethodGet, "/healthz", "").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(do(http.MethodGet, "/stats", "").Code, convey.ShouldEqual, http.StatusOK)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the background metrics updaters", t, func() {
		convey.Convey("Then the system updater should return once its context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		})

		convey.Convey("Then a single system update should not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("Then a service update should work before and after start", func() {
			ctx := context.Background()
			cfg := config.New(ctx)
			svc := newService(cfg, repository.NewMemoryStore(ctx), logger.Nop())
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)

			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}

func TestMetricsOptions(t *testing.T) {
	convey.Convey("Given metrics settings in the config", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)
		cfg.MetricsNamespace = "ballpark"
		cfg.MetricsLabels = map[string]string{"env": "test"}
		metrics.Configure(metricsOptions(cfg)...)
		convey.Reset(func() { metrics.Configure() })

		store := repository.NewMemoryStore(ctx)
		convey.Reset(func() { _ = store.Close() })
		mux := newMux(ctx, cfg, newService(cfg, store, logger.Nop()), logger.Nop())

		convey.Convey("When /healthz is scraped after a request", func() {
			mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/stats", nil))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			convey.Convey("Then the metrics should carry the configured prefix and labels", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "ballpark_playcalling_http_requests_total{")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, `env="test"`)
				convey.So(w.Body.String(), convey.ShouldNotContainSubstring, "dugout_playcalling_")
			})
		})
	})
}

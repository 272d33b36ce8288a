package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then it should be created and enabled", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Enabled(), ShouldBeTrue)
				So(manager.namespace, ShouldEqual, "dugout")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the metrics should be registered under the custom names", func() {
				manager.RecordRecommendation([]string{"initialize"}, false, 0.01)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_namespace_test_subsystem_recommendations_total")
			})
		})

		Convey("When empty options are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithCustomLabels(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "dugout")
				So(manager.subsystem, ShouldEqual, "playcalling")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.customLabels, ShouldNotBeNil)
			})
		})
	})
}

func TestRecordRecommendation(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When recording a high-leverage plan", func() {
			manager.RecordRecommendation([]string{"initialize", "high-leverage", "finalize"}, true, 0.02)

			Convey("Then the counters should reflect each fired rule", func() {
				So(testutil.ToFloat64(manager.recommendations), ShouldEqual, 1.0)
				So(testutil.ToFloat64(manager.highLeverage), ShouldEqual, 1.0)
				So(testutil.ToFloat64(manager.ruleFired.WithLabelValues("high-leverage")), ShouldEqual, 1.0)
				So(testutil.ToFloat64(manager.ruleFired.WithLabelValues("count-pitch")), ShouldEqual, 0.0)
			})
		})

		Convey("When recording is disabled", func() {
			disabled := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()), WithMetricsEnabled(false))
			disabled.RecordRecommendation([]string{"initialize"}, true, 0.02)

			Convey("Then nothing should be counted", func() {
				So(testutil.ToFloat64(disabled.recommendations), ShouldEqual, 0.0)
				So(testutil.ToFloat64(disabled.highLeverage), ShouldEqual, 0.0)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global recorders", t, func() {
		Convey("Then they should not panic with ordinary and edge values", func() {
			So(func() {
				RecordRecommendation([]string{"initialize"}, false, 0)
				RecordValidationRejection("outs")
				RecordHistorySaved("async")
				RecordHistorySaved("sync")
				RecordHistoryError("create")
				RecordIdempotentReplay()
				UpdateHistoryRecords(12)
				RecordRepositoryLatency("list", 1.5)
				UpdateIdempotencyEntries(3)
				UpdateQueueSize(0)
				UpdateQueueCapacity(1024)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError("queue_full")
				UpdateWorkerCount(4)
				RecordWorkerProcessed(2)
				RecordWorkerError()
				RecordHTTPRequest("", "", "200")
				RecordHTTPRequestDuration("/plays", "GET", "200", 0)
				RecordErrorByEndpoint("/plays", "GET", "not_found")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(10)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})

		Convey("Then the custom registry should expose them", func() {
			RecordHistorySaved("sync")
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given the global manager rebuilt with a namespace", t, func() {
		Configure(WithNamespace("ballpark"))
		Reset(func() { Configure() })

		Convey("When a global recorder fires", func() {
			RecordHistorySaved("sync")

			Convey("Then GetRegistry should expose it under the new prefix", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "ballpark_playcalling_history_saved_total")
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					manager.RecordRecommendation([]string{"initialize"}, j%2 == 0, float64(j))
				}
			}()
		}
		wg.Wait()

		Convey("Then every recording should be counted", func() {
			So(testutil.ToFloat64(manager.recommendations), ShouldEqual, 1000.0)
			So(testutil.ToFloat64(manager.highLeverage), ShouldEqual, 500.0)
		})
	})
}

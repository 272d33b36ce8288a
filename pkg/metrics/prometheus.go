// Package metrics provides Prometheus metrics for the dugout play-calling service.
package metrics

import (
	"slices"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// engineBuckets covers the sub-millisecond range the rule chain lives in.
var engineBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5} //nolint:gochecknoglobals // fixed bucket layout

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Engine metrics
	recommendations      prometheus.Counter
	ruleFired            *prometheus.CounterVec
	highLeverage         prometheus.Counter
	engineLatency        prometheus.Histogram
	validationRejections *prometheus.CounterVec

	// History metrics
	historySaved       *prometheus.CounterVec
	historyErrors      *prometheus.CounterVec
	historyReplays     prometheus.Counter
	historyRecords     prometheus.Gauge
	repositoryLatency  *prometheus.HistogramVec
	idempotencyEntries prometheus.Gauge

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec

	// Worker metrics
	workerCount     prometheus.Gauge
	workerProcessed prometheus.Counter
	workerErrors    prometheus.Counter
	workerLatency   prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// global holds the manager behind the package-level recorders. Configure
// swaps it together with its registry.
var global atomic.Pointer[globalMetrics] //nolint:gochecknoglobals // intentional global for singleton metrics manager

type globalMetrics struct {
	manager  *Manager
	registry *prometheus.Registry
}

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	Configure()
}

// Configure rebuilds the global manager on a fresh custom registry, so the
// default Go metrics stay out. Call it before serving /metrics.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	manager := NewManager(append(slices.Clip(opts), WithPrometheusRegistry(registry))...)
	global.Store(&globalMetrics{manager: manager, registry: registry})
}

func globalManager() *Manager {
	return global.Load().manager
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "dugout",
		subsystem:        "playcalling",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics on the configured registry.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	m.recommendations = m.counter("recommendations_total", "Total number of strategy plans generated")
	m.ruleFired = m.counterVec("rule_fired_total", "Number of times each rule group changed the plan", "rule")
	m.highLeverage = m.counter("high_leverage_total", "Recommendations generated in high-leverage situations")
	m.engineLatency = m.histogram("engine_latency_milliseconds", "Rule chain evaluation latency in milliseconds", engineBuckets)
	m.validationRejections = m.counterVec("validation_rejections_total", "Requests rejected by the validation boundary", "field")

	m.historySaved = m.counterVec("history_saved_total", "Play history records written", "mode")
	m.historyErrors = m.counterVec("history_errors_total", "Play history persistence failures", "operation")
	m.historyReplays = m.counter("history_idempotent_replays_total", "Save requests answered from the idempotency cache")
	m.historyRecords = m.gauge("history_records", "Number of play history records in the store")
	m.repositoryLatency = m.histogramVec("repository_latency_milliseconds", "Repository operation latency in milliseconds", "operation")
	m.idempotencyEntries = m.gauge("idempotency_entries", "Idempotency keys currently remembered")

	m.queueSize = m.gauge("queue_size", "Current size of the history write queue")
	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the history write queue")
	m.queueEnqueued = m.counter("queue_enqueued_total", "History writes accepted by the queue")
	m.queueDequeued = m.counter("queue_dequeued_total", "History writes handed to workers")
	m.queueEnqueueErrors = m.counterVec("queue_enqueue_errors_total", "History writes rejected by the queue", "reason")

	m.workerCount = m.gauge("worker_count", "Number of history writer workers")
	m.workerProcessed = m.counter("worker_processed_total", "History writes completed by workers")
	m.workerErrors = m.counter("worker_errors_total", "History writes that failed in workers")
	m.workerLatency = m.histogram("worker_latency_milliseconds", "History write latency in workers in milliseconds", m.histogramBuckets)

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		"endpoint", "method", "status_code")
	m.errorsByEndpoint = m.counterVec("http_errors_total", "HTTP error responses by endpoint and type",
		"endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Allocated heap memory in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Current number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Average GC pause time in milliseconds", m.histogramBuckets)
}

// Enabled reports whether recording is enabled on the manager.
func (m *Manager) Enabled() bool { return m.enabled }

// RecordRecommendation records one generated plan with the rule groups that fired.
func (m *Manager) RecordRecommendation(firedRules []string, highLeverage bool, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.recommendations.Inc()
	for _, r := range firedRules {
		m.ruleFired.WithLabelValues(r).Inc()
	}
	if highLeverage {
		m.highLeverage.Inc()
	}
	m.engineLatency.Observe(latencyMs)
}

// RecordRecommendation records a generated plan on the global manager.
func RecordRecommendation(firedRules []string, highLeverage bool, latencyMs float64) {
	globalManager().RecordRecommendation(firedRules, highLeverage, latencyMs)
}

// RecordValidationRejection counts a rejected field.
func RecordValidationRejection(field string) {
	globalManager().validationRejections.WithLabelValues(field).Inc()
}

// RecordHistorySaved counts a history write; mode is "async" or "sync".
func RecordHistorySaved(mode string) {
	globalManager().historySaved.WithLabelValues(mode).Inc()
}

// RecordHistoryError counts a failed repository operation.
func RecordHistoryError(operation string) {
	globalManager().historyErrors.WithLabelValues(operation).Inc()
}

// RecordIdempotentReplay counts a save answered from the idempotency cache.
func RecordIdempotentReplay() {
	globalManager().historyReplays.Inc()
}

// UpdateHistoryRecords sets the current number of stored plays.
func UpdateHistoryRecords(count int) {
	globalManager().historyRecords.Set(float64(count))
}

// RecordRepositoryLatency observes a repository operation latency.
func RecordRepositoryLatency(operation string, latencyMs float64) {
	globalManager().repositoryLatency.WithLabelValues(operation).Observe(latencyMs)
}

// UpdateIdempotencyEntries sets the number of remembered idempotency keys.
func UpdateIdempotencyEntries(count int) {
	globalManager().idempotencyEntries.Set(float64(count))
}

// UpdateQueueSize sets the current queue length.
func UpdateQueueSize(size int) {
	globalManager().queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager().queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue counts an accepted enqueue.
func RecordQueueEnqueue() {
	globalManager().queueEnqueued.Inc()
}

// RecordQueueDequeue counts a dequeue.
func RecordQueueDequeue() {
	globalManager().queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a rejected enqueue by reason.
func RecordQueueEnqueueError(reason string) {
	globalManager().queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the number of history workers.
func UpdateWorkerCount(count int) {
	globalManager().workerCount.Set(float64(count))
}

// RecordWorkerProcessed counts a completed history write and its latency.
func RecordWorkerProcessed(latencyMs float64) {
	globalManager().workerProcessed.Inc()
	globalManager().workerLatency.Observe(latencyMs)
}

// RecordWorkerError counts a failed history write.
func RecordWorkerError() {
	globalManager().workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager().httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager().httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an HTTP error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager().errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage updates the allocated memory gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager().systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager().systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager().systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return global.Load().registry
}

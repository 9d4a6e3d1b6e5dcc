// Package metrics provides Prometheus metrics for the dscore scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the dscore service.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Scoring
	recordingsScored prometheus.Counter
	scoringLatency   prometheus.Histogram
	framesLabeled    prometheus.Counter

	// DER scorer subprocess
	derLatency  prometheus.Histogram
	derFailures prometheus.Counter

	// Batch
	batchFailed     prometheus.Counter
	batchSkipped    prometheus.Counter
	batchDuplicates prometheus.Counter

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Repository
	repositoryRows          prometheus.Gauge
	repositoryUpdateLatency prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry *prometheus.Registry //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	Init()
}

// Init replaces the global manager with one built from opts on a fresh
// registry. Call it before metrics are recorded concurrently.
func Init(opts ...Option) {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append(opts, WithPrometheusRegistry(customRegistry))...)
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "dscore",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(subsystem, name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(subsystem, name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(subsystem, name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	})
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.recordingsScored = m.counter("scoring", "recordings_scored_total", "Total number of recordings scored on frame-level metrics")
	m.scoringLatency = m.histogram("scoring", "latency_milliseconds", "Frame-level scoring latency per reference/system pair in milliseconds")
	m.framesLabeled = m.counter("scoring", "frames_labeled_total", "Total number of frames labeled across reference and system")

	m.derLatency = m.histogram("der", "latency_milliseconds", "External DER scorer latency in milliseconds")
	m.derFailures = m.counter("der", "failures_total", "Total number of failed DER scorer runs")

	m.batchFailed = m.counter("batch", "recordings_failed_total", "Total number of batch recordings that failed to score")
	m.batchSkipped = m.counter("batch", "recordings_skipped_total", "Total number of batch recordings skipped for a missing RTTM")
	m.batchDuplicates = m.counter("batch", "duplicate_ids_total", "Total number of repeated file ids dropped from a batch")

	m.queueSize = m.gauge("queue", "size", "Current number of jobs waiting in the queue")
	m.queueCapacity = m.gauge("queue", "capacity", "Maximum queue capacity")
	m.queueEnqueued = m.counter("queue", "enqueue_total", "Total number of jobs enqueued")
	m.queueDequeued = m.counter("queue", "dequeue_total", "Total number of jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue", "enqueue_errors_total", "Total number of enqueue errors")

	m.workerCount = m.gauge("worker", "count", "Number of workers in the pool")
	m.workerActiveCount = m.gauge("worker", "active_count", "Number of workers currently scoring a job")
	m.workerProcessingLatency = m.histogram("worker", "processing_latency_milliseconds", "Worker job processing latency in milliseconds")
	m.workerErrors = m.counter("worker", "errors_total", "Total number of worker job errors")

	m.repositoryRows = m.gauge("repository", "rows_total", "Number of score rows held by the repository")
	m.repositoryUpdateLatency = m.histogram("repository", "update_latency_milliseconds", "Repository write latency in milliseconds")

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   "http",
			Name:        "requests_total",
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: m.constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   "http",
			Name:        "request_duration_milliseconds",
			Help:        "HTTP request duration in milliseconds",
			ConstLabels: m.constLabels,
			Buckets:     m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.systemMemoryUsage = m.gauge("system", "memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system", "goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system", "gc_pause_time_milliseconds", "Average GC pause time in milliseconds")

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Name:        "errors_by_component_total",
			Help:        "Total number of errors by component",
			ConstLabels: m.constLabels,
		},
		[]string{"component", "error_type"},
	)
}

// RecordRecordingScored increments the scored recordings counter.
func RecordRecordingScored() {
	globalManager.recordingsScored.Inc()
}

// RecordScoringLatency records frame-level scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordFramesLabeled adds n to the labeled frames counter.
func RecordFramesLabeled(n int) {
	globalManager.framesLabeled.Add(float64(n))
}

// RecordDERLatency records external scorer latency in milliseconds.
func RecordDERLatency(latencyMs float64) {
	globalManager.derLatency.Observe(latencyMs)
}

// RecordDERFailure increments the failed DER runs counter.
func RecordDERFailure() {
	globalManager.derFailures.Inc()
}

// RecordBatchRecordingFailed increments the failed batch recordings counter.
func RecordBatchRecordingFailed() {
	globalManager.batchFailed.Inc()
}

// RecordBatchRecordingSkipped increments the skipped batch recordings counter.
func RecordBatchRecordingSkipped() {
	globalManager.batchSkipped.Inc()
}

// RecordBatchDuplicate increments the duplicate batch ids counter.
func RecordBatchDuplicate() {
	globalManager.batchDuplicates.Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the pool size.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// AddWorkerActive adjusts the number of busy workers by delta.
func AddWorkerActive(delta int) {
	globalManager.workerActiveCount.Add(float64(delta))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// UpdateRepositoryRowsTotal sets the number of rows held by the repository.
func UpdateRepositoryRowsTotal(count int) {
	globalManager.repositoryRows.Set(float64(count))
}

// RecordRepositoryUpdateLatency records repository write latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

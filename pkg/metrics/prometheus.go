package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes used as the "outcome" label.
const (
	OutcomeSuccess        = "success"
	OutcomeInvalidInput   = "invalid_input"
	OutcomeInferenceError = "inference_error"
	OutcomeCanceled       = "canceled"
	OutcomeError          = "error"
)

var inferenceBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50}

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Forecast metrics
	forecastRuns     *prometheus.CounterVec
	forecastLatency  prometheus.Histogram
	slotsForecast    prometheus.Counter
	lastPeakWait     prometheus.Gauge
	lastDayReception prometheus.Gauge

	// Model metrics
	inferenceLatency *prometheus.HistogramVec
	inferenceErrors  *prometheus.CounterVec

	// Cache metrics
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	cacheEntries prometheus.Gauge

	// Queue metrics
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueue           prometheus.Counter
	queueDequeue           prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker metrics
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "waitcast",
		subsystem:        "forecast",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.forecastRuns = auto.NewCounterVec(m.counter("runs_total", "Forecast runs by outcome"), []string{"outcome"})
	m.forecastLatency = auto.NewHistogram(m.histogram("run_latency_milliseconds", "Wall time of one forecast run", m.histogramBuckets))
	m.slotsForecast = auto.NewCounter(m.counter("slots_total", "Slots forecast across all successful runs"))
	m.lastPeakWait = auto.NewGauge(m.gauge("last_peak_wait_minutes", "Longest predicted wait in the most recent run"))
	m.lastDayReception = auto.NewGauge(m.gauge("last_day_reception_total", "Summed reception prediction of the most recent run"))

	m.inferenceLatency = auto.NewHistogramVec(m.histogram("inference_latency_milliseconds", "Single model prediction latency", inferenceBuckets), []string{"model"})
	m.inferenceErrors = auto.NewCounterVec(m.counter("inference_errors_total", "Failed model predictions"), []string{"model"})

	m.cacheHits = auto.NewCounter(m.counter("cache_hits_total", "Forecasts served from the cache"))
	m.cacheMisses = auto.NewCounter(m.counter("cache_misses_total", "Forecast cache misses"))
	m.cacheEntries = auto.NewGauge(m.gauge("cache_entries", "Forecasts currently cached"))

	m.queueSize = auto.NewGauge(m.gauge("queue_size", "Batch jobs waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gauge("queue_capacity", "Batch job queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gauge("queue_utilization_ratio", "Batch job queue utilization"))
	m.queueEnqueue = auto.NewCounter(m.counter("queue_enqueue_total", "Batch jobs enqueued"))
	m.queueDequeue = auto.NewCounter(m.counter("queue_dequeue_total", "Batch jobs dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counter("queue_enqueue_errors_total", "Batch jobs rejected by the queue"))
	m.queueProcessingLatency = auto.NewHistogram(m.histogram("queue_processing_latency_milliseconds", "Enqueue latency", m.histogramBuckets))

	m.workerCount = auto.NewGauge(m.gauge("worker_count", "Forecast workers running"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogram("worker_processing_latency_milliseconds", "Time a worker spends on one job", m.histogramBuckets))
	m.workerErrors = auto.NewCounter(m.counter("worker_errors_total", "Jobs that finished with an error"))

	m.httpRequests = auto.NewCounterVec(m.counter("http_requests_total", "HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogram("http_request_duration_milliseconds", "HTTP request duration", m.histogramBuckets), []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(m.counter("errors_by_component_total", "Errors by component"), []string{"component", "error_type"})
	m.errorRateByType = auto.NewCounterVec(m.counter("errors_by_type_total", "Errors by type and severity"), []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counter("errors_by_endpoint_total", "Errors by endpoint"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutines", "Goroutines running"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogram("system_gc_pause_milliseconds", "Average GC pause",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100}))
}

// RecordForecastRun counts a run with the given outcome.
func RecordForecastRun(outcome string) {
	globalManager.forecastRuns.WithLabelValues(outcome).Inc()
}

// RecordForecastLatency records the wall time of a run in milliseconds.
func RecordForecastLatency(latencyMs float64) {
	globalManager.forecastLatency.Observe(latencyMs)
}

// RecordSlotsForecast adds n forecast slots.
func RecordSlotsForecast(n int) {
	globalManager.slotsForecast.Add(float64(n))
}

// UpdateLastRun publishes the peak wait and day reception of the latest run.
func UpdateLastRun(peakWaitMinutes, dayReception int) {
	globalManager.lastPeakWait.Set(float64(peakWaitMinutes))
	globalManager.lastDayReception.Set(float64(dayReception))
}

// RecordInferenceLatency records one model prediction latency.
func RecordInferenceLatency(model string, latencyMs float64) {
	globalManager.inferenceLatency.WithLabelValues(model).Observe(latencyMs)
}

// RecordInferenceError counts a failed model prediction.
func RecordInferenceError(model string) {
	globalManager.inferenceErrors.WithLabelValues(model).Inc()
}

// RecordCacheHit counts a cached forecast.
func RecordCacheHit() { globalManager.cacheHits.Inc() }

// RecordCacheMiss counts a cache miss.
func RecordCacheMiss() { globalManager.cacheMisses.Inc() }

// UpdateCacheEntries sets the number of cached forecasts.
func UpdateCacheEntries(n int) { globalManager.cacheEntries.Set(float64(n)) }

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) { globalManager.queueUtilization.Set(utilization) }

// RecordQueueEnqueue counts an accepted job.
func RecordQueueEnqueue() { globalManager.queueEnqueue.Inc() }

// RecordQueueDequeue counts a dequeued job.
func RecordQueueDequeue() { globalManager.queueDequeue.Inc() }

// RecordQueueEnqueueError counts a rejected job.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// RecordQueueProcessingLatency records enqueue latency in milliseconds.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerProcessingLatency records job processing time in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a job that failed.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent counts an error raised by a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType counts an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint counts an HTTP error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets heap bytes in use.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

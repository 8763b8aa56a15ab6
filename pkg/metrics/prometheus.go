// Package metrics provides Prometheus metrics for the cricksim match service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the match service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Engine metrics
	ballsResolved      *prometheus.CounterVec
	effectiveScore     prometheus.Histogram
	offersCreated      *prometheus.CounterVec
	protocolViolations prometheus.Counter
	selectionRepairs   *prometheus.CounterVec
	duplicateCommits   prometheus.Counter
	ratingLookupErrors prometheus.Counter

	// Match lifecycle
	matchesStarted   prometheus.Counter
	matchesCompleted *prometheus.CounterVec
	activeMatches    prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Storage
	storeLatency    *prometheus.HistogramVec
	storeErrors     *prometheus.CounterVec
	resultsRecorded prometheus.Counter

	// Ball event queue
	queueCapacity          prometheus.Gauge
	queueSize              prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueue           prometheus.Counter
	queueDequeue           prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Live feed
	feedClients  prometheus.Gauge
	feedMessages *prometheus.CounterVec

	// Error breakdowns
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "cricksim",
		subsystem:        "match",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      make(map[string]string),
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	m.ballsResolved = m.counterVec("balls_resolved_total", "Balls resolved by outcome", "outcome")
	m.effectiveScore = m.histogram("effective_score", "Effective score of resolved balls",
		[]float64{10, 20, 30, 40, 50, 60, 70, 75, 85, 98, 100})
	m.offersCreated = m.counterVec("offers_created_total", "Offers computed, by human role", "role")
	m.protocolViolations = m.counter("protocol_violations_total", "Balls resolved without a matching offer")
	m.selectionRepairs = m.counterVec("selection_repairs_total", "Invalid human selections replaced by defaults", "field")
	m.duplicateCommits = m.counter("duplicate_commits_total", "Resolve requests for an already resolved offer")
	m.ratingLookupErrors = m.counter("rating_lookup_errors_total", "Rating table lookups that found no row")

	m.matchesStarted = m.counter("matches_started_total", "Matches created")
	m.matchesCompleted = m.counterVec("matches_completed_total", "Matches completed by result", "result")
	m.activeMatches = m.gauge("active_matches", "Matches currently held by the session store")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		m.histogramBuckets, "endpoint", "method", "status_code")

	m.storeLatency = m.histogramVec("store_latency_milliseconds", "Session store latency by operation",
		m.histogramBuckets, "backend", "op")
	m.storeErrors = m.counterVec("store_errors_total", "Session store failures by operation", "backend", "op")
	m.resultsRecorded = m.counter("results_recorded_total", "Completed matches written to the results ledger")

	m.queueCapacity = m.gauge("queue_capacity", "Maximum capacity of the ball event queue")
	m.queueSize = m.gauge("queue_size", "Current size of the ball event queue")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Ball event queue utilization (0-1)")
	m.queueEnqueue = m.counter("queue_enqueue_total", "Ball events enqueued")
	m.queueDequeue = m.counter("queue_dequeue_total", "Ball events dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Ball events dropped at enqueue")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds", "Enqueue latency in milliseconds",
		m.histogramBuckets)

	m.workerCount = m.gauge("worker_count", "Running ball event workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Time to fan a ball event out to all sinks",
		m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Sink failures seen by workers")

	m.feedClients = m.gauge("feed_clients", "Connected live feed clients")
	m.feedMessages = m.counterVec("feed_messages_total", "Messages delivered by feed sink", "sink")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint", "endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds", "Latency of operations that failed",
		m.histogramBuckets, "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordBall counts a resolved ball and observes its effective score.
func RecordBall(outcome string, effectiveScore int) {
	globalManager.ballsResolved.WithLabelValues(outcome).Inc()
	globalManager.effectiveScore.Observe(float64(effectiveScore))
}

// RecordOffer counts an offer; role is "batting" or "bowling" for the human side.
func RecordOffer(role string) {
	globalManager.offersCreated.WithLabelValues(role).Inc()
}

// RecordProtocolViolation counts a resolve that had to select inline.
func RecordProtocolViolation() {
	globalManager.protocolViolations.Inc()
}

// RecordSelectionRepair counts a repaired field of a human selection.
func RecordSelectionRepair(field string) {
	globalManager.selectionRepairs.WithLabelValues(field).Inc()
}

// RecordDuplicateCommit counts a replayed resolve.
func RecordDuplicateCommit() {
	globalManager.duplicateCommits.Inc()
}

// RecordRatingLookupError counts a rating table miss.
func RecordRatingLookupError() {
	globalManager.ratingLookupErrors.Inc()
}

// RecordMatchStarted increments the matches started counter.
func RecordMatchStarted() {
	globalManager.matchesStarted.Inc()
}

// RecordMatchCompleted counts a completed match by result kind (won, tie).
func RecordMatchCompleted(result string) {
	globalManager.matchesCompleted.WithLabelValues(result).Inc()
}

// UpdateActiveMatches sets the number of stored matches.
func UpdateActiveMatches(count int) {
	globalManager.activeMatches.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordStoreLatency records a session store operation latency.
func RecordStoreLatency(backend, op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(backend, op).Observe(latencyMs)
}

// RecordStoreError counts a failed session store operation.
func RecordStoreError(backend, op string) {
	globalManager.storeErrors.WithLabelValues(backend, op).Inc()
}

// RecordResult counts a match written to the results ledger.
func RecordResult() {
	globalManager.resultsRecorded.Inc()
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueue.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeue.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records queue processing latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// UpdateFeedClients sets the number of connected feed clients.
func UpdateFeedClients(count int) {
	globalManager.feedClients.Set(float64(count))
}

// RecordFeedMessage counts a message delivered by a sink (websocket, redis).
func RecordFeedMessage(sink string) {
	globalManager.feedMessages.WithLabelValues(sink).Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
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

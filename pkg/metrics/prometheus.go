// Package metrics provides Prometheus metrics for the maidx rating service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Rating engine
	ratingsComputed prometheus.Counter
	b50Computed     *prometheus.CounterVec
	b50Latency      prometheus.Histogram

	// Uploads
	uploadScores     *prometheus.CounterVec
	uploadDuplicates prometheus.Counter

	// Recompute pipeline
	recomputeLatency prometheus.Histogram
	recomputeErrors  prometheus.Counter

	// Leaderboard and catalog
	leaderboardPlayers *prometheus.GaugeVec
	leaderboardUpdate  prometheus.Histogram
	leaderboardQuery   prometheus.Histogram
	catalogCharts      prometheus.Gauge
	catalogSyncs       *prometheus.CounterVec
	dbQueryLatency     *prometheus.HistogramVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActive            prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "maidx",
		subsystem:        "rating",
		histogramBuckets: prometheus.DefBuckets,
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

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.ratingsComputed = m.counter("ratings_computed_total", "Single-chart ratings computed")
	m.b50Computed = m.counterVec("b50_computed_total", "B50 summaries computed by region", "region")
	m.b50Latency = m.histogram("b50_latency_milliseconds", "Time to load, classify and aggregate one B50")

	m.uploadScores = m.counterVec("upload_scores_total", "Uploaded scores by outcome", "outcome")
	m.uploadDuplicates = m.counter("upload_duplicates_total", "Uploads rejected because their id was already applied")

	m.recomputeLatency = m.histogram("recompute_latency_milliseconds", "Time to recompute and persist a player's rating")
	m.recomputeErrors = m.counter("recompute_errors_total", "Failed rating recomputations")

	m.leaderboardPlayers = m.gaugeVec("leaderboard_players", "Players on the leaderboard by region", "region")
	m.leaderboardUpdate = m.histogram("leaderboard_update_latency_milliseconds", "Leaderboard write latency")
	m.leaderboardQuery = m.histogram("leaderboard_query_latency_milliseconds", "Leaderboard read latency")
	m.catalogCharts = m.gauge("catalog_charts", "Charts known to the catalog")
	m.catalogSyncs = m.counterVec("catalog_syncs_total", "Catalog synchronisations by region and outcome", "region", "outcome")
	m.dbQueryLatency = m.histogramVec("db_query_latency_milliseconds", "Database query latency by operation", "op")

	m.queueSize = m.gauge("queue_size", "Recompute jobs waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the recompute queue")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Recompute jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Recompute jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Recompute jobs dropped on backpressure")

	m.workerCount = m.gauge("worker_count", "Recompute workers started")
	m.workerActive = m.gauge("worker_active_count", "Recompute workers currently busy")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Per-job processing time")
	m.workerErrors = m.counter("worker_errors_total", "Jobs that failed inside a worker")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		"endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordRatingsComputed adds n single-chart ratings.
func RecordRatingsComputed(n int) {
	globalManager.ratingsComputed.Add(float64(n))
}

// RecordB50Computed counts one B50 for region and its latency.
func RecordB50Computed(region string, latencyMs float64) {
	globalManager.b50Computed.WithLabelValues(region).Inc()
	globalManager.b50Latency.Observe(latencyMs)
}

// RecordUploadScores counts accepted and failed scores of one upload.
func RecordUploadScores(accepted, failed int) {
	globalManager.uploadScores.WithLabelValues("accepted").Add(float64(accepted))
	globalManager.uploadScores.WithLabelValues("failed").Add(float64(failed))
}

// RecordUploadDuplicate counts an upload whose id was already applied.
func RecordUploadDuplicate() {
	globalManager.uploadDuplicates.Inc()
}

// RecordRecompute records a successful recomputation.
func RecordRecompute(latencyMs float64) {
	globalManager.recomputeLatency.Observe(latencyMs)
}

// RecordRecomputeError counts a failed recomputation.
func RecordRecomputeError() {
	globalManager.recomputeErrors.Inc()
}

// UpdateLeaderboardPlayers sets the number of ranked players in region.
func UpdateLeaderboardPlayers(region string, count int) {
	globalManager.leaderboardPlayers.WithLabelValues(region).Set(float64(count))
}

// RecordLeaderboardUpdateLatency records a leaderboard write.
func RecordLeaderboardUpdateLatency(latencyMs float64) {
	globalManager.leaderboardUpdate.Observe(latencyMs)
}

// RecordLeaderboardQueryLatency records a leaderboard read.
func RecordLeaderboardQueryLatency(latencyMs float64) {
	globalManager.leaderboardQuery.Observe(latencyMs)
}

// UpdateCatalogCharts sets the number of known charts.
func UpdateCatalogCharts(count int) {
	globalManager.catalogCharts.Set(float64(count))
}

// RecordCatalogSync counts a catalog sync with outcome "ok" or "error".
func RecordCatalogSync(region, outcome string) {
	globalManager.catalogSyncs.WithLabelValues(region, outcome).Inc()
}

// RecordDBQueryLatency records one database operation.
func RecordDBQueryLatency(op string, latencyMs float64) {
	globalManager.dbQueryLatency.WithLabelValues(op).Observe(latencyMs)
}

// UpdateQueueSize sets the queue backlog.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue counts an enqueued job.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts a dequeued job.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a job dropped on backpressure.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the number of started workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActive.Set(float64(count))
}

// RecordWorkerProcessingLatency records one job's processing time.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a failed job.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records an HTTP request's duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent counts an error raised by component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint counts an error returned by an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the registry the global metrics live on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

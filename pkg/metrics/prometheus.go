// Package metrics provides Prometheus metrics for the profile event bridge.
package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the bridge.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Outbound translation
	outboundDelivered *prometheus.CounterVec
	outboundFiltered  *prometheus.CounterVec
	outboundErrors    *prometheus.CounterVec
	outboundLatency   *prometheus.HistogramVec

	// Inbound construction
	inboundCalls       *prometheus.CounterVec
	inboundDiagnostics *prometheus.CounterVec

	// Bus
	busPublished       *prometheus.CounterVec
	busHandlerErrors   *prometheus.CounterVec
	busDispatchLatency prometheus.Histogram
	busSubscribers     prometheus.Gauge

	// Queue Metrics - async bus backlog
	queueCapacity    prometheus.Gauge
	queueSize        prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueue     prometheus.Counter
	queueDequeue     prometheus.Counter
	queueRejected    prometheus.Counter

	// Worker Metrics - dispatch performance
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Host transport
	transportSends   *prometheus.CounterVec
	transportDropped *prometheus.CounterVec
	websocketClients prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "profile",
		subsystem:        "bridge",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Disabled managers still hand out live collectors, they are just never exposed.
	if !m.enabled {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
		Buckets:     m.histogramBuckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.outboundDelivered = auto.NewCounterVec(
		m.counterOpts("outbound_delivered_total", "Events delivered to the host by wire name"),
		[]string{"kind"},
	)
	m.outboundFiltered = auto.NewCounterVec(
		m.counterOpts("outbound_filtered_total", "Events dropped by the provider filter"),
		[]string{"kind", "provider"},
	)
	m.outboundErrors = auto.NewCounterVec(
		m.counterOpts("outbound_errors_total", "Outbound encode or delivery failures"),
		[]string{"kind", "stage"},
	)
	m.outboundLatency = auto.NewHistogramVec(
		m.histogramOpts("outbound_latency_milliseconds", "Time from event observation to host delivery"),
		[]string{"kind"},
	)

	m.inboundCalls = auto.NewCounterVec(
		m.counterOpts("inbound_calls_total", "Host calls by entry point and outcome"),
		[]string{"entry", "status"},
	)
	m.inboundDiagnostics = auto.NewCounterVec(
		m.counterOpts("inbound_diagnostics_total", "Recoverable collection parse failures on host calls"),
		[]string{"kind", "field"},
	)

	m.busPublished = auto.NewCounterVec(
		m.counterOpts("bus_published_total", "Events published on the internal bus"),
		[]string{"kind"},
	)
	m.busHandlerErrors = auto.NewCounterVec(
		m.counterOpts("bus_handler_errors_total", "Subscriber failures by kind"),
		[]string{"kind"},
	)
	m.busDispatchLatency = auto.NewHistogram(
		m.histogramOpts("bus_dispatch_latency_milliseconds", "Time to fan an event out to every subscriber"),
	)
	m.busSubscribers = auto.NewGauge(m.gaugeOpts("bus_subscribers", "Current number of bus subscribers"))

	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum queue capacity"))
	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current size of the event queue (backlog indicator)"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)"))
	m.queueEnqueue = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Total number of events enqueued"))
	m.queueDequeue = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Total number of events dequeued"))
	m.queueRejected = auto.NewCounter(m.counterOpts("queue_rejected_total", "Events rejected because the queue was full or closed"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Configured number of dispatch workers"))
	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count", "Workers currently dispatching an event"))
	m.workerProcessingLatency = auto.NewHistogram(
		m.histogramOpts("worker_processing_latency_milliseconds", "Worker processing latency in milliseconds"),
	)
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Total number of worker errors"))

	m.transportSends = auto.NewCounterVec(
		m.counterOpts("transport_sends_total", "Host transport sends by transport and status"),
		[]string{"transport", "status"},
	)
	m.transportDropped = auto.NewCounterVec(
		m.counterOpts("transport_dropped_total", "Messages dropped for slow host clients"),
		[]string{"transport"},
	)
	m.websocketClients = auto.NewGauge(m.gaugeOpts("websocket_clients", "Connected websocket host clients"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
}

// RunSystemSampler refreshes the system gauges every refresh interval until ctx is done.
func (m *Manager) RunSystemSampler(ctx context.Context) {
	t := time.NewTicker(m.refreshInterval)
	defer t.Stop()
	m.sampleSystem()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.sampleSystem()
		}
	}
}

func (m *Manager) sampleSystem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.systemMemoryUsage.Set(float64(ms.Alloc))
	m.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
}

// Outbound Metrics Functions.

// RecordOutboundDelivered increments delivered events for a wire name.
func RecordOutboundDelivered(kind string, latencyMs float64) {
	globalManager.outboundDelivered.WithLabelValues(kind).Inc()
	globalManager.outboundLatency.WithLabelValues(kind).Observe(latencyMs)
}

// RecordOutboundFiltered increments events dropped by the provider filter.
func RecordOutboundFiltered(kind, provider string) {
	globalManager.outboundFiltered.WithLabelValues(kind, provider).Inc()
}

// RecordOutboundError increments outbound failures; stage is "encode" or "deliver".
func RecordOutboundError(kind, stage string) {
	globalManager.outboundErrors.WithLabelValues(kind, stage).Inc()
}

// Inbound Metrics Functions.

// RecordInboundCall records a host call outcome.
func RecordInboundCall(entry, status string) {
	globalManager.inboundCalls.WithLabelValues(entry, status).Inc()
}

// RecordInboundDiagnostic records a recoverable collection parse failure.
func RecordInboundDiagnostic(kind, field string) {
	globalManager.inboundDiagnostics.WithLabelValues(kind, field).Inc()
}

// Bus Metrics Functions.

// RecordBusPublished increments published events for a kind.
func RecordBusPublished(kind string) {
	globalManager.busPublished.WithLabelValues(kind).Inc()
}

// RecordBusHandlerError increments subscriber failures for a kind.
func RecordBusHandlerError(kind string) {
	globalManager.busHandlerErrors.WithLabelValues(kind).Inc()
}

// RecordBusDispatchLatency records dispatch latency in milliseconds.
func RecordBusDispatchLatency(latencyMs float64) {
	globalManager.busDispatchLatency.Observe(latencyMs)
}

// UpdateBusSubscribers sets the current subscriber count.
func UpdateBusSubscribers(count int) {
	globalManager.busSubscribers.Set(float64(count))
}

// Queue Metrics Functions.

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

// RecordQueueRejected increments the rejected enqueue counter.
func RecordQueueRejected() {
	globalManager.queueRejected.Inc()
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of workers currently dispatching.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// Transport Metrics Functions.

// RecordTransportSend records a host transport send outcome.
func RecordTransportSend(transport, status string) {
	globalManager.transportSends.WithLabelValues(transport, status).Inc()
}

// RecordTransportDropped records a message dropped for a slow client.
func RecordTransportDropped(transport string) {
	globalManager.transportDropped.WithLabelValues(transport).Inc()
}

// UpdateWebsocketClients sets the number of connected websocket hosts.
func UpdateWebsocketClients(count int) {
	globalManager.websocketClients.Set(float64(count))
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RunSystemSampler refreshes the global system gauges until ctx is done.
func RunSystemSampler(ctx context.Context) {
	globalManager.RunSystemSampler(ctx)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

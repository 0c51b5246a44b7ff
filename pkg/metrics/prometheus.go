// Package metrics provides Prometheus metrics for the lagtrace engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Record lifecycle
	recordsFinalized  prometheus.Counter
	recordsByType     *prometheus.CounterVec
	recordsQueued     prometheus.Counter
	recordsBelowThold prometheus.Counter
	ignoredEvents     *prometheus.CounterVec
	orphanHandles     prometheus.Counter

	// Interaction grouping
	interactionsCommitted prometheus.Counter
	interactionsRevoked   prometheus.Counter
	firstInputEmitted     prometheus.Counter

	// Pending table / dispatch queue health
	pendingSize   prometheus.Gauge
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	queueOverflow prometheus.Counter
	drainedTotal  prometheus.Counter
	drainCalls    prometheus.Counter

	// Timing distributions (milliseconds; durations are post-rounding)
	eventDuration     prometheus.Histogram
	processingLatency prometheus.Histogram
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
		namespace: "lagtrace",
		subsystem: "engine",
		// Buckets track the 8ms rounding grid at the low end.
		histogramBuckets: []float64{4, 8, 16, 24, 40, 56, 80, 104, 200, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.recordsFinalized = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_finalized_total",
		Help:      "Total number of timing records finalized at render checkpoints",
	})

	m.recordsByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_by_type_total",
		Help:      "Finalized timing records broken down by event type",
	}, []string{"event_type"})

	m.recordsQueued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_queued_total",
		Help:      "Records that cleared the exposure policy and were queued",
	})

	m.recordsBelowThold = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_below_threshold_total",
		Help:      "Finalized records dropped by the duration threshold policy",
	})

	m.ignoredEvents = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ignored_events_total",
		Help:      "Dispatches that produced no record, by reason",
	}, []string{"reason"})

	m.orphanHandles = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "orphan_handles_total",
		Help:      "Notifications that referenced an unknown or already-finalized handle",
	})

	m.interactionsCommitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "interactions_committed_total",
		Help:      "Interaction sessions committed (one per discrete interaction)",
	})

	m.interactionsRevoked = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "interactions_revoked_total",
		Help:      "Provisional interaction sessions revoked (e.g. press became scroll)",
	})

	m.firstInputEmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "first_input_emitted_total",
		Help:      "First-input records emitted (at most one per document)",
	})

	m.pendingSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pending_records",
		Help:      "In-flight records awaiting finalization",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dispatch_queue_size",
		Help:      "Undelivered records in the dispatch queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dispatch_queue_capacity",
		Help:      "Configured dispatch queue capacity",
	})

	m.queueOverflow = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dispatch_queue_overflow_total",
		Help:      "Records evicted because the dispatch queue was full",
	})

	m.drainedTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_drained_total",
		Help:      "Records handed to the observer surface via drain",
	})

	m.drainCalls = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "drain_calls_total",
		Help:      "Number of non-empty drain calls",
	})

	m.eventDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "event_duration_milliseconds",
		Help:      "Rounded event durations (start time to render checkpoint)",
		Buckets:   m.histogramBuckets,
	})

	m.processingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "processing_latency_milliseconds",
		Help:      "Synchronous handler execution time per record",
		Buckets:   m.histogramBuckets,
	})
}

// RecordFinalized increments the finalized counter and observes the
// record's timing distributions.
func RecordFinalized(durationMs, processingMs float64) {
	globalManager.recordsFinalized.Inc()
	globalManager.eventDuration.Observe(durationMs)
	globalManager.processingLatency.Observe(processingMs)
}

// RecordFinalizedByType increments the per-type finalized counter.
func RecordFinalizedByType(eventType string) {
	globalManager.recordsByType.WithLabelValues(eventType).Inc()
}

// RecordQueued increments the queued records counter.
func RecordQueued() {
	globalManager.recordsQueued.Inc()
}

// RecordBelowThreshold increments the threshold-drop counter.
func RecordBelowThreshold() {
	globalManager.recordsBelowThold.Inc()
}

// RecordIgnoredEvent increments the ignored dispatches counter for a reason.
func RecordIgnoredEvent(reason string) {
	globalManager.ignoredEvents.WithLabelValues(reason).Inc()
}

// RecordOrphanHandle increments the orphan handle counter.
func RecordOrphanHandle() {
	globalManager.orphanHandles.Inc()
}

// RecordInteractionCommitted increments the committed interactions counter.
func RecordInteractionCommitted() {
	globalManager.interactionsCommitted.Inc()
}

// RecordInteractionRevoked increments the revoked interactions counter.
func RecordInteractionRevoked() {
	globalManager.interactionsRevoked.Inc()
}

// RecordFirstInput increments the first-input emissions counter.
func RecordFirstInput() {
	globalManager.firstInputEmitted.Inc()
}

// UpdatePendingSize sets the pending table gauge.
func UpdatePendingSize(size int) {
	globalManager.pendingSize.Set(float64(size))
}

// UpdateQueueSize sets the dispatch queue size gauge.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the dispatch queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueOverflow increments the queue overflow counter.
func RecordQueueOverflow() {
	globalManager.queueOverflow.Inc()
}

// RecordDrain records one drain call delivering n records.
func RecordDrain(n int) {
	globalManager.drainedTotal.Add(float64(n))
	globalManager.drainCalls.Inc()
}

// GetRegistry returns the custom registry carrying all engine metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

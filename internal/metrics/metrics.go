package metrics

import (
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const namespace = "gridtab"

// Metrics holds all gridtab metrics. Prometheus collectors are registered on
// a private registry; atomic totals back the JSON stats endpoint.
type Metrics struct {
	startTime time.Time
	registry  *prometheus.Registry

	documents     *prometheus.CounterVec
	rows          prometheus.Counter
	payloadBytes  *prometheus.CounterVec
	transformTime *prometheus.HistogramVec
	httpRequests  *prometheus.CounterVec
	httpLatency   prometheus.Histogram
	storageWrites *prometheus.CounterVec
	inboxRuns     *prometheus.CounterVec

	documentsTotal  atomic.Int64
	documentsFailed atomic.Int64
	rowsTotal       atomic.Int64
	bytesTotal      atomic.Int64
	payloadsTotal   atomic.Int64
	transformNanos  atomic.Int64
	storageWritten  atomic.Int64
	storageErrors   atomic.Int64
	inboxProcessed  atomic.Int64
	inboxFailed     atomic.Int64

	logger zerolog.Logger
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process-wide metrics instance.
func Get() *Metrics {
	once.Do(func() {
		instance = New(zerolog.Nop())
	})
	return instance
}

// Init initializes the process-wide instance with a logger.
func Init(logger zerolog.Logger) *Metrics {
	m := Get()
	m.logger = logger.With().Str("component", "metrics").Logger()
	m.logger.Info().Msg("Metrics collector initialized")
	return m
}

// New creates a metrics set on its own registry.
func New(logger zerolog.Logger) *Metrics {
	m := &Metrics{
		startTime: time.Now(),
		registry:  prometheus.NewRegistry(),
		logger:    logger.With().Str("component", "metrics").Logger(),
	}

	m.documents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "documents_total",
		Help:      "Transformed documents by root tag, type code and outcome.",
	}, []string{"root_tag", "type", "outcome"})
	m.rows = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_total",
		Help:      "Table rows produced.",
	})
	m.payloadBytes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payload_bytes_total",
		Help:      "Bytes received for transformation by payload kind.",
	}, []string{"kind"})
	m.transformTime = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "transform_duration_seconds",
		Help:      "Time to transform one document.",
		Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"root_tag"})
	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method and status class.",
	}, []string{"method", "status"})
	m.httpLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5},
	})
	m.storageWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "storage_writes_total",
		Help:      "Objects written to the storage backend by result.",
	}, []string{"result"})
	m.inboxRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inbox_objects_total",
		Help:      "Inbox objects handled by result.",
	}, []string{"result"})

	m.registry.MustRegister(
		m.documents, m.rows, m.payloadBytes, m.transformTime,
		m.httpRequests, m.httpLatency, m.storageWrites, m.inboxRuns,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveDocument records one transformed document. Empty root tags or type
// codes (documents that failed to parse) are reported as "unknown".
func (m *Metrics) ObserveDocument(rootTag, typeCode, outcome string, rows int, elapsed time.Duration) {
	if rootTag == "" {
		rootTag = "unknown"
	}
	if typeCode == "" {
		typeCode = "unknown"
	}
	m.documents.WithLabelValues(rootTag, typeCode, outcome).Inc()
	m.transformTime.WithLabelValues(rootTag).Observe(elapsed.Seconds())
	m.documentsTotal.Add(1)
	m.transformNanos.Add(elapsed.Nanoseconds())
	if outcome != "ok" {
		m.documentsFailed.Add(1)
		return
	}
	m.rows.Add(float64(rows))
	m.rowsTotal.Add(int64(rows))
}

// ObservePayload records the size of an incoming payload.
func (m *Metrics) ObservePayload(kind string, size int) {
	m.payloadBytes.WithLabelValues(kind).Add(float64(size))
	m.payloadsTotal.Add(1)
	m.bytesTotal.Add(int64(size))
}

// ObserveHTTP records one finished HTTP request.
func (m *Metrics) ObserveHTTP(method string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, statusClass(status)).Inc()
	m.httpLatency.Observe(elapsed.Seconds())
}

// ObserveStorageWrite records one object write.
func (m *Metrics) ObserveStorageWrite(err error) {
	if err != nil {
		m.storageWrites.WithLabelValues("error").Inc()
		m.storageErrors.Add(1)
		return
	}
	m.storageWrites.WithLabelValues("ok").Inc()
	m.storageWritten.Add(1)
}

// ObserveInboxObject records one inbox object.
func (m *Metrics) ObserveInboxObject(err error) {
	if err != nil {
		m.inboxRuns.WithLabelValues("error").Inc()
		m.inboxFailed.Add(1)
		return
	}
	m.inboxRuns.WithLabelValues("ok").Inc()
	m.inboxProcessed.Add(1)
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// Snapshot returns current totals as a JSON-friendly map.
func (m *Metrics) Snapshot() map[string]interface{} {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	docs := m.documentsTotal.Load()
	avgMs := 0.0
	if docs > 0 {
		avgMs = float64(m.transformNanos.Load()) / float64(docs) / 1e6
	}

	return map[string]interface{}{
		"uptime_seconds":        int64(time.Since(m.startTime).Seconds()),
		"documents_total":       docs,
		"documents_failed":      m.documentsFailed.Load(),
		"rows_total":            m.rowsTotal.Load(),
		"payloads_total":        m.payloadsTotal.Load(),
		"payload_bytes_total":   m.bytesTotal.Load(),
		"transform_avg_ms":      avgMs,
		"storage_writes_total":  m.storageWritten.Load(),
		"storage_errors_total":  m.storageErrors.Load(),
		"inbox_processed_total": m.inboxProcessed.Load(),
		"inbox_failed_total":    m.inboxFailed.Load(),
		"goroutines":            runtime.NumGoroutine(),
		"memory_alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
	}
}

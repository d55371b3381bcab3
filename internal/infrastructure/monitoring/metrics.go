package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "docstudio"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Workspace metrics
	TabsOpen   prometheus.Gauge
	TabsOpened *prometheus.CounterVec

	// Editor metrics
	Annotations *prometheus.CounterVec
	Commands    *prometheus.CounterVec

	// Service metrics
	ServiceCalls    *prometheus.CounterVec
	ServiceDuration *prometheus.HistogramVec

	// AI metrics
	AIRequests  *prometheus.CounterVec
	AIFallbacks *prometheus.CounterVec
	AIDuration  *prometheus.HistogramVec
	StaleDrops  *prometheus.CounterVec

	// Session metrics
	SessionsSaved    prometheus.Counter
	SessionsRestored prometheus.Counter
	AutoSaves        *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time

	// Snapshot for JSON API
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current values for the JSON info endpoint
type Snapshot struct {
	TotalRequests     int64   `json:"totalRequests"`
	TotalErrors       int64   `json:"totalErrors"`
	AverageLatencyMS  float64 `json:"averageLatencyMs"`
	TabsOpen          int64   `json:"tabsOpen"`
	ActiveConnections int64   `json:"activeConnections"`
	AIRequests        int64   `json:"aiRequests"`
	StaleDrops        int64   `json:"staleDrops"`
	UptimeSeconds     float64 `json:"uptimeSeconds"`

	totalDuration float64
}

// NewMetrics registers every collector with reg. A nil reg uses the
// default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		RequestSize: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_size_bytes",
				Help:      "HTTP request body size",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "path"},
		),
		ResponseSize: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response body size",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "path"},
		),

		TabsOpen: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tabs_open",
			Help:      "Number of open workspace tabs",
		}),
		TabsOpened: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tabs_opened_total",
				Help:      "Tabs opened by kind",
			},
			[]string{"kind"},
		),

		Annotations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "annotations_total",
				Help:      "Annotations committed by kind",
			},
			[]string{"kind"},
		),
		Commands: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Named commands executed",
			},
			[]string{"command", "status"},
		),

		ServiceCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "service_calls_total",
				Help:      "Registry tool calls",
			},
			[]string{"service", "tool", "status"},
		),
		ServiceDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "service_call_duration_seconds",
				Help:      "Registry tool call latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"service", "tool"},
		),

		AIRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ai_requests_total",
				Help:      "Assistant requests by action and answering source",
			},
			[]string{"action", "source"},
		),
		AIFallbacks: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ai_fallbacks_total",
				Help:      "Assistant requests answered by the simulation after a provider failure",
			},
			[]string{"action"},
		),
		AIDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ai_request_duration_seconds",
				Help:      "Assistant request latency",
				Buckets:   []float64{.01, .05, .1, .5, 1, 2, 5, 10, 30},
			},
			[]string{"action"},
		),
		StaleDrops: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ai_stale_results_total",
				Help:      "Superseded assistant results dropped",
			},
			[]string{"channel"},
		),

		SessionsSaved: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_saved_total",
			Help:      "Workspace snapshots saved",
		}),
		SessionsRestored: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_restored_total",
			Help:      "Workspace snapshots restored",
		}),
		AutoSaves: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "autosaves_total",
				Help:      "Auto-save writes",
			},
			[]string{"status"},
		),

		WSConnections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_connections_active",
			Help:      "Open WebSocket connections",
		}),
		WSMessages: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ws_messages_total",
				Help:      "WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "uptime_seconds",
		Help:      "Seconds since the server started",
	}, func() float64 { return time.Since(m.startTime).Seconds() })

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordServiceCall records a registry tool call
func (m *Metrics) RecordServiceCall(service, tool, status string, duration time.Duration) {
	m.ServiceCalls.WithLabelValues(service, tool, status).Inc()
	m.ServiceDuration.WithLabelValues(service, tool).Observe(duration.Seconds())
}

// SetTabsOpen implements workspace.Observer
func (m *Metrics) SetTabsOpen(count int) {
	m.TabsOpen.Set(float64(count))
	m.mu.Lock()
	m.snapshot.TabsOpen = int64(count)
	m.mu.Unlock()
}

// IncTabsOpened implements workspace.Observer
func (m *Metrics) IncTabsOpened(kind string) {
	m.TabsOpened.WithLabelValues(kind).Inc()
}

// IncAnnotations implements studio.Observer
func (m *Metrics) IncAnnotations(kind string) {
	m.Annotations.WithLabelValues(kind).Inc()
}

// IncCommands implements studio.Observer
func (m *Metrics) IncCommands(name string, ok bool) {
	m.Commands.WithLabelValues(name, statusLabel(ok)).Inc()
}

// ObserveAIRequest implements ai.Observer
func (m *Metrics) ObserveAIRequest(action, source string, fallback bool, d time.Duration) {
	m.AIRequests.WithLabelValues(action, source).Inc()
	m.AIDuration.WithLabelValues(action).Observe(d.Seconds())
	if fallback {
		m.AIFallbacks.WithLabelValues(action).Inc()
	}
	m.mu.Lock()
	m.snapshot.AIRequests++
	m.mu.Unlock()
}

// IncStaleDrops counts a superseded assistant result
func (m *Metrics) IncStaleDrops(channel string) {
	m.StaleDrops.WithLabelValues(channel).Inc()
	m.mu.Lock()
	m.snapshot.StaleDrops++
	m.mu.Unlock()
}

// IncSessionsSaved increments the sessions saved counter
func (m *Metrics) IncSessionsSaved() {
	m.SessionsSaved.Inc()
}

// IncSessionsRestored increments the sessions restored counter
func (m *Metrics) IncSessionsRestored() {
	m.SessionsRestored.Inc()
}

// IncAutoSaves counts one auto-save write
func (m *Metrics) IncAutoSaves(ok bool) {
	m.AutoSaves.WithLabelValues(statusLabel(ok)).Inc()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// Snapshot returns the current values for the info endpoint
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	s := m.snapshot
	m.mu.RUnlock()

	if s.TotalRequests > 0 {
		s.AverageLatencyMS = s.totalDuration / float64(s.TotalRequests) * 1000
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}

func statusLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}

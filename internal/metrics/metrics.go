// Package metrics exposes Prometheus metrics for the check-in service.
//
// A nil *Manager is valid and records nothing, so callers that do not care
// about metrics (tests, CLI tools) can pass nil.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Toggle outcomes used as label values.
const (
	OutcomeCheckedIn  = "checked_in"
	OutcomeCheckedOut = "checked_out"
	OutcomeRejected   = "rejected"
)

// Manager owns the service metrics and the registry they live in.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	toggles         *prometheus.CounterVec
	expiredSessions prometheus.Counter
	openSessions    prometheus.Gauge
	logins          *prometheus.CounterVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	queryDuration       prometheus.Histogram
	slowQueries         prometheus.Counter
}

// NewManager creates a Manager. Without WithRegistry a fresh registry with the
// Go and process collectors is used.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "cutrackit",
		subsystem:        "",
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.toggles = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "toggles_total",
		Help:      "Court check-in/out toggles by outcome",
	}, []string{"outcome"})

	m.expiredSessions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_expired_total",
		Help:      "Court sessions closed by the stale-session sweeper",
	})

	m.openSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "open_sessions",
		Help:      "Currently open court sessions across all courts",
	})

	m.logins = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "logins_total",
		Help:      "Login attempts by result",
	}, []string{"result"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by path, method and status code",
	}, []string{"path", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   m.histogramBuckets,
	}, []string{"path", "method"})

	m.queryDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "db_query_duration_seconds",
		Help:      "SQL statement latency",
		Buckets:   m.histogramBuckets,
	})

	m.slowQueries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "db_slow_queries_total",
		Help:      "SQL statements slower than the configured threshold",
	})
}

// RecordToggle counts one toggle with the given outcome.
func (m *Manager) RecordToggle(outcome string) {
	if m == nil {
		return
	}
	m.toggles.WithLabelValues(outcome).Inc()
}

// RecordExpired counts sessions closed by the sweeper.
func (m *Manager) RecordExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.expiredSessions.Add(float64(n))
}

// SetOpenSessions sets the open session gauge.
func (m *Manager) SetOpenSessions(n int) {
	if m == nil {
		return
	}
	m.openSessions.Set(float64(n))
}

// RecordLogin counts a login attempt. result is "success" or "failure".
func (m *Manager) RecordLogin(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records one served request.
func (m *Manager) RecordHTTPRequest(path, method string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(path, method).Observe(seconds)
}

// ObserveQuery records one SQL statement.
func (m *Manager) ObserveQuery(seconds float64, slow bool) {
	if m == nil {
		return
	}
	m.queryDuration.Observe(seconds)
	if slow {
		m.slowQueries.Inc()
	}
}

// Registry returns the registry backing this manager.
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

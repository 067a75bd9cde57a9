package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"cutrackit/internal/adapters/http/perf"
)

// DefaultSlowRequestMs is the default threshold for slow request warnings.
const DefaultSlowRequestMs = 200

// unmatchedPath labels requests for paths that are not routes, so scanners
// cannot blow up metric cardinality.
const unmatchedPath = "unmatched"

// HTTPRecorder receives one observation per request.
type HTTPRecorder interface {
	RecordHTTPRequest(path, method string, status int, seconds float64)
}

// TimingOption configures Timing.
type TimingOption func(*timingConfig)

type timingConfig struct {
	slowMs   float64
	recorder HTTPRecorder
	paths    map[string]bool
}

// WithSlowRequestMs sets the slow request threshold.
func WithSlowRequestMs(ms int) TimingOption {
	return func(c *timingConfig) {
		if ms > 0 {
			c.slowMs = float64(ms)
		}
	}
}

// WithHTTPRecorder sends observations to Prometheus.
func WithHTTPRecorder(r HTTPRecorder) TimingOption {
	return func(c *timingConfig) { c.recorder = r }
}

// WithKnownPaths limits metric path labels to the given routes.
func WithKnownPaths(paths []string) TimingOption {
	return func(c *timingConfig) {
		c.paths = make(map[string]bool, len(paths))
		for _, p := range paths {
			c.paths[p] = true
		}
	}
}

// requestIDCounter is an atomic counter for request IDs.
var requestIDCounter uint64

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and delegates to the underlying ResponseWriter.
// PRE: code is a valid HTTP status code
// POST: status stored, header written to underlying ResponseWriter
func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// statusWriterPool reduces allocations on the hot path.
var statusWriterPool = sync.Pool{
	New: func() any {
		return &statusWriter{}
	},
}

// Timing returns middleware that logs request duration.
// Requests to /static/ are excluded.
// Normal requests log at DEBUG; slow requests (above threshold) log at WARN.
// If collector is non-nil, entries are recorded for the perf dashboard.
func Timing(collector *perf.Collector, opts ...TimingOption) func(http.Handler) http.Handler {
	cfg := timingConfig{slowMs: DefaultSlowRequestMs}
	for _, o := range opts {
		o(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			// Skip static assets
			if strings.HasPrefix(path, "/static/") {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			reqID := atomic.AddUint64(&requestIDCounter, 1)

			sw := statusWriterPool.Get().(*statusWriter)
			sw.ResponseWriter = w
			sw.status = http.StatusOK
			defer func() {
				elapsed := time.Since(start)
				durationMs := float64(elapsed.Microseconds()) / 1000.0

				if durationMs >= cfg.slowMs {
					slog.Warn("slow_request",
						"request_id", reqID,
						"method", r.Method,
						"path", path,
						"status", sw.status,
						"duration_ms", durationMs,
					)
				} else {
					slog.Debug("request",
						"request_id", reqID,
						"method", r.Method,
						"path", path,
						"status", sw.status,
						"duration_ms", durationMs,
					)
				}

				label := path
				if cfg.paths != nil && !cfg.paths[path] {
					label = unmatchedPath
				}
				if collector != nil {
					collector.Record(perf.Entry{
						Kind:       perf.KindRequest,
						Path:       r.Method + " " + label,
						StatusCode: sw.status,
						DurationMs: durationMs,
						Timestamp:  start,
					})
				}
				if cfg.recorder != nil {
					cfg.recorder.RecordHTTPRequest(label, r.Method, sw.status, elapsed.Seconds())
				}

				sw.ResponseWriter = nil
				statusWriterPool.Put(sw)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}

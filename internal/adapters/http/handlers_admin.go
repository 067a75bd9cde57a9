package web

import (
	"net/http"
	"strconv"
	"time"

	"cutrackit/internal/adapters/http/perf"
)

// defaultPerfWindow is how far back /admin/perf looks without ?minutes=.
const defaultPerfWindow = 15 * time.Minute

const perfTopN = 10

type healthResponse struct {
	Status    string  `json:"status"`
	UptimeSec float64 `json:"uptime_seconds"`
	Sessions  int     `json:"sessions"`
}

// handleHealthz handles GET /healthz
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		UptimeSec: s.now().Sub(s.started).Seconds(),
		Sessions:  s.sessions.Len(),
	})
}

// handlePerf handles GET /admin/perf?minutes=
func (s *Server) handlePerf(w http.ResponseWriter, r *http.Request) {
	if s.perf == nil {
		writeJSON(w, http.StatusOK, perf.Snapshot{})
		return
	}
	window := defaultPerfWindow
	if m, err := strconv.Atoi(r.URL.Query().Get("minutes")); err == nil && m > 0 && m <= 24*60 {
		window = time.Duration(m) * time.Minute
	}
	writeJSON(w, http.StatusOK, s.perf.Snapshot(time.Now().Add(-window), perfTopN))
}

package web

import (
	"net/http"
	"strings"

	"cutrackit/internal/application/orchestrators"
	"cutrackit/internal/application/projections"
	"cutrackit/internal/application/validation"
)

type toggleRequest struct {
	CourtID string `json:"court_id"`
}

type kioskToggleRequest struct {
	QRToken string `json:"qr_token"`
	CourtID string `json:"court_id"`
}

func (s *Server) toggleDeps() orchestrators.ToggleSessionDeps {
	return orchestrators.ToggleSessionDeps{
		SessionStore: s.stores.SessionStore,
		Metrics:      s.metrics,
		Now:          s.now,
		StaleAfter:   s.cfg.SessionTimeout,
	}
}

// handleToggle handles POST /api/toggle. Browsers posting the dashboard form
// are sent back to the dashboard.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if isJSONBody(r) {
		if err := strictDecode(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	} else {
		if err := parseForm(w, r); err != nil {
			s.fail(w, r, "", "", nil, err)
			return
		}
		req.CourtID = r.PostFormValue("court_id")
	}

	sess := sessionFrom(r)
	result, err := orchestrators.ExecuteToggleSession(r.Context(), orchestrators.ToggleSessionInput{
		UserID:  sess.AccountID,
		CourtID: strings.TrimSpace(req.CourtID),
	}, s.toggleDeps())
	if err != nil {
		s.fail(w, r, "", "", nil, err)
		return
	}
	redirectOrJSON(w, r, "/dashboard", http.StatusOK, result)
}

// handleKioskToggle handles POST /api/kiosk/toggle: staff toggle a player by QR code.
func (s *Server) handleKioskToggle(w http.ResponseWriter, r *http.Request) {
	var req kioskToggleRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := orchestrators.ExecuteToggleByQR(r.Context(), orchestrators.ToggleByQRInput{
		OperatorRole: sessionFrom(r).Role,
		QRToken:      strings.TrimSpace(req.QRToken),
		CourtID:      strings.TrimSpace(req.CourtID),
	}, orchestrators.ToggleByQRDeps{
		ProfileStore: s.stores.ProfileStore,
		Toggle:       s.toggleDeps(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCourts handles GET /courts
func (s *Server) handleCourts(w http.ResponseWriter, r *http.Request) {
	courts, err := projections.QueryListCourts(r.Context(), projections.ListCourtsDeps{CourtStore: s.stores.CourtStore})
	if err != nil {
		s.fail(w, r, "", "", nil, err)
		return
	}
	s.respond(w, r, "courts.html", "Courts", courts)
}

// handleCourt handles GET /court?id=
func (s *Server) handleCourt(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		s.fail(w, r, "", "", nil, validation.New("id", "id is required"))
		return
	}
	status, err := projections.QueryGetCourtStatus(r.Context(), projections.GetCourtStatusQuery{CourtID: id}, projections.GetCourtStatusDeps{
		CourtStore:   s.stores.CourtStore,
		SessionStore: s.stores.SessionStore,
	})
	if err != nil {
		s.fail(w, r, "", "", nil, err)
		return
	}
	s.respond(w, r, "court.html", status.Name, status)
}

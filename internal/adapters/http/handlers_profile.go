package web

import (
	"net/http"
	"time"

	"cutrackit/internal/application/orchestrators"
	"cutrackit/internal/application/projections"
	domainProfile "cutrackit/internal/domain/profile"
)

// profileView is the JSON shape of a saved profile.
type profileView struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	QRToken   string    `json:"qr_token"`
	Since     time.Time `json:"since"`
}

func toProfileView(p domainProfile.Profile) profileView {
	return profileView{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		QRToken:   p.QRToken,
		Since:     p.CreatedAt,
	}
}

func (s *Server) queryProfile(r *http.Request) (projections.ProfileResult, error) {
	return projections.QueryGetProfile(r.Context(), projections.GetProfileQuery{UserID: sessionFrom(r).AccountID}, projections.GetProfileDeps{
		ProfileStore: s.stores.ProfileStore,
		CourtStore:   s.stores.CourtStore,
		SessionStore: s.stores.SessionStore,
		TeamStore:    s.stores.TeamStore,
		Now:          s.now,
	})
}

// handleDashboard handles GET /dashboard
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	result, err := projections.QueryGetDashboard(r.Context(), projections.GetDashboardQuery{
		UserID: sess.AccountID,
		Role:   sess.Role,
	}, projections.GetDashboardDeps{
		CourtStore:   s.stores.CourtStore,
		SessionStore: s.stores.SessionStore,
		MatchStore:   s.stores.MatchStore,
		Now:          s.now,
		Location:     s.cfg.Location,
	})
	if err != nil {
		s.fail(w, r, "", "", nil, err)
		return
	}
	s.respond(w, r, "dashboard.html", "Dashboard", result)
}

// handleAccountPage handles GET /account
func (s *Server) handleAccountPage(w http.ResponseWriter, r *http.Request) {
	result, err := s.queryProfile(r)
	if err != nil {
		s.fail(w, r, "", "", nil, err)
		return
	}
	s.respond(w, r, "account.html", "Account", result)
}

// handleAPIProfile handles GET /api/profile
func (s *Server) handleAPIProfile(w http.ResponseWriter, r *http.Request) {
	result, err := s.queryProfile(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAccountUpdate handles POST /account
func (s *Server) handleAccountUpdate(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.UpdateProfileInput
	if isJSONBody(r) {
		if err := strictDecode(w, r, &input); err != nil {
			writeError(w, r, err)
			return
		}
	} else {
		if err := parseForm(w, r); err != nil {
			s.fail(w, r, "", "", nil, err)
			return
		}
		input = orchestrators.UpdateProfileInput{
			FirstName:       r.PostFormValue("first_name"),
			LastName:        r.PostFormValue("last_name"),
			Email:           r.PostFormValue("email"),
			NewPassword:     r.PostFormValue("new_password"),
			ConfirmPassword: r.PostFormValue("confirm_password"),
		}
	}
	sess := sessionFrom(r)
	input.UserID = sess.AccountID

	p, err := orchestrators.ExecuteUpdateProfile(r.Context(), input, orchestrators.UpdateProfileDeps{
		ProfileStore: s.stores.ProfileStore,
		AccountStore: s.stores.AccountStore,
	})
	if err != nil {
		if current, qerr := s.queryProfile(r); qerr == nil {
			s.fail(w, r, "account.html", "Account", current, err)
			return
		}
		s.fail(w, r, "", "", nil, err)
		return
	}
	s.sessions.UpdateEmail(sess.AccountID, p.Email)
	redirectOrJSON(w, r, "/account", http.StatusOK, toProfileView(p))
}

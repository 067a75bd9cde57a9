package web

import (
	"net/http"
	"strings"

	"cutrackit/internal/adapters/http/middleware"
	domainAccount "cutrackit/internal/domain/account"
)

// registerRoutes wires every route and returns the distinct paths for the
// metrics label set.
func (s *Server) registerRoutes(mux *http.ServeMux) []string {
	authed := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }
	staff := middleware.RequireRole(domainAccount.RoleStaff, domainAccount.RoleAdmin)
	admin := middleware.RequireRole(domainAccount.RoleAdmin)

	routes := []struct {
		pattern string
		handler http.Handler
	}{
		{"GET /{$}", http.RedirectHandler("/dashboard", http.StatusSeeOther)},
		{"GET /healthz", http.HandlerFunc(s.handleHealthz)},
		{"GET /metrics", s.metrics.Handler()},

		// Auth
		{"GET /login", http.HandlerFunc(s.handleLoginPage)},
		{"POST /login", http.HandlerFunc(s.handleLogin)},
		{"POST /logout", http.HandlerFunc(s.handleLogout)},
		{"GET /signup", http.HandlerFunc(s.handleSignupPage)},
		{"POST /signup", http.HandlerFunc(s.handleSignup)},
		{"POST /api/token", http.HandlerFunc(s.handleIssueToken)},

		// Profile
		{"GET /dashboard", authed(s.handleDashboard)},
		{"GET /account", authed(s.handleAccountPage)},
		{"POST /account", authed(s.handleAccountUpdate)},
		{"GET /api/profile", authed(s.handleAPIProfile)},

		// Courts
		{"GET /courts", authed(s.handleCourts)},
		{"GET /court", authed(s.handleCourt)},
		{"POST /api/toggle", authed(s.handleToggle)},
		{"POST /api/kiosk/toggle", staff(http.HandlerFunc(s.handleKioskToggle))},

		// Teams and matches
		{"GET /teams", authed(s.handleTeams)},
		{"POST /teams", authed(s.handleCreateTeam)},
		{"GET /teams/roster", authed(s.handleTeamRoster)},
		{"POST /teams/join", authed(s.handleJoinTeam)},
		{"GET /matches", authed(s.handleMatches)},
		{"POST /matches", authed(s.handlePublishMatch)},

		// Stats
		{"GET /leaderboard", authed(s.handleLeaderboard)},
		{"GET /traffic", authed(s.handleTraffic)},

		// Admin
		{"GET /admin/perf", admin(http.HandlerFunc(s.handlePerf))},
	}

	seen := make(map[string]bool, len(routes))
	var paths []string
	for _, rt := range routes {
		mux.Handle(rt.pattern, rt.handler)
		path := rt.pattern[strings.IndexByte(rt.pattern, ' ')+1:]
		path = strings.TrimSuffix(path, "{$}")
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}
	return paths
}

package web

import (
	"net/http"
	"strings"

	"cutrackit/internal/application/listutil"
	"cutrackit/internal/application/projections"
)

type leaderboardPage struct {
	Rows   []projections.LeaderRow
	Search string
	Top    int
	Tops   []int
}

// handleLeaderboard handles GET /leaderboard?q=&top=
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.TrimSpace(q.Get("q"))
	top := listutil.ParseTop(q)
	rows, err := projections.QueryGetLeaderboard(r.Context(), projections.GetLeaderboardQuery{Search: search, Top: top},
		projections.GetLeaderboardDeps{SessionStore: s.stores.SessionStore})
	if err != nil {
		s.fail(w, r, "", "", nil, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, rows)
		return
	}
	s.render(w, r, http.StatusOK, "leaderboard.html", pageData{
		Title: "Leaderboard",
		Data:  leaderboardPage{Rows: rows, Search: search, Top: top, Tops: projections.LeaderboardTops},
	})
}

// handleTraffic handles GET /traffic?weeks=
func (s *Server) handleTraffic(w http.ResponseWriter, r *http.Request) {
	weeks, allTime := listutil.ParseWeeks(r.URL.Query())
	result, err := projections.QueryGetTraffic(r.Context(), projections.GetTrafficQuery{Weeks: weeks, AllTime: allTime},
		projections.GetTrafficDeps{SessionStore: s.stores.SessionStore, Now: s.now, Location: s.cfg.Location})
	if err != nil {
		s.fail(w, r, "", "", nil, err)
		return
	}
	s.respond(w, r, "traffic.html", "Traffic", result)
}

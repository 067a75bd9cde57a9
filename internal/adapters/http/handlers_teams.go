package web

import (
	"net/http"
	"strings"
	"time"

	"cutrackit/internal/application/listutil"
	"cutrackit/internal/application/orchestrators"
	"cutrackit/internal/application/projections"
	"cutrackit/internal/application/validation"
	domainMatch "cutrackit/internal/domain/match"
	domainTeam "cutrackit/internal/domain/team"
)

// scheduledAtLayout is what an HTML datetime-local input submits.
const scheduledAtLayout = "2006-01-02T15:04"

var teamSorts = []string{projections.SortName, projections.SortMembers}

// teamView is the JSON shape of a saved team.
type teamView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Size        string    `json:"size"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	CoachID     string    `json:"coach_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func toTeamView(t domainTeam.Team) teamView {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return teamView{ID: t.ID, Name: t.Name, Size: t.Size, Description: t.Description, Tags: tags, CoachID: t.CoachID, CreatedAt: t.CreatedAt}
}

// matchView is the JSON shape of a posted match.
type matchView struct {
	ID          string    `json:"id"`
	TeamID      string    `json:"team_id"`
	MatchType   string    `json:"match_type"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Notes       string    `json:"notes"`
}

func toMatchView(m domainMatch.Match) matchView {
	return matchView{ID: m.ID, TeamID: m.TeamID, MatchType: m.MatchType, ScheduledAt: m.ScheduledAt, Notes: m.Notes}
}

type teamsPage struct {
	Teams  []projections.TeamCard
	Search string
	Size   string
	Sort   string
	Sizes  []string
	Form   orchestrators.CreateTeamInput
}

type matchesPage struct {
	Matches []projections.MatchView
	Teams   []domainTeam.Team
	Form    map[string]string
}

func (s *Server) listTeams(r *http.Request) (teamsPage, error) {
	lp := listutil.ParseListParams(r.URL.Query(), teamSorts, projections.SortDefault, []string{"size"})
	size := lp.Filters["size"]
	if size == "" {
		size = projections.SizeAll
	}
	teams, err := projections.QueryListTeams(r.Context(), projections.ListTeamsQuery{
		Search: lp.Search,
		Size:   size,
		Sort:   lp.Sort,
	}, projections.ListTeamsDeps{TeamStore: s.stores.TeamStore})
	if err != nil {
		return teamsPage{}, err
	}
	return teamsPage{Teams: teams, Search: lp.Search, Size: size, Sort: lp.Sort, Sizes: projections.TeamSizes()}, nil
}

// handleTeams handles GET /teams?q=&size=&sort=
func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	page, err := s.listTeams(r)
	if err != nil {
		s.fail(w, r, "", "", nil, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, page.Teams)
		return
	}
	s.render(w, r, http.StatusOK, "teams.html", pageData{Title: "Teams", Data: page})
}

// handleCreateTeam handles POST /teams. The creator becomes coach and first member.
func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.CreateTeamInput
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
		input = orchestrators.CreateTeamInput{
			Name:        r.PostFormValue("name"),
			Size:        r.PostFormValue("size"),
			Description: r.PostFormValue("description"),
			Tags:        r.PostFormValue("tags"),
		}
	}
	input.CoachID = sessionFrom(r).AccountID

	t, err := orchestrators.ExecuteCreateTeam(r.Context(), input, orchestrators.CreateTeamDeps{
		TeamStore: s.stores.TeamStore,
		Now:       s.now,
	})
	if err != nil {
		if page, lerr := s.listTeams(r); lerr == nil {
			page.Form = input
			s.fail(w, r, "teams.html", "Teams", page, err)
			return
		}
		s.fail(w, r, "", "", nil, err)
		return
	}
	redirectOrJSON(w, r, "/teams/roster?id="+t.ID, http.StatusCreated, toTeamView(t))
}

// handleTeamRoster handles GET /teams/roster?id=
func (s *Server) handleTeamRoster(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		s.fail(w, r, "", "", nil, validation.New("id", "id is required"))
		return
	}
	roster, err := projections.QueryGetTeamRoster(r.Context(), projections.GetTeamRosterQuery{
		TeamID:   id,
		ViewerID: sessionFrom(r).AccountID,
	}, projections.GetTeamRosterDeps{TeamStore: s.stores.TeamStore})
	if err != nil {
		s.fail(w, r, "", "", nil, err)
		return
	}
	s.respond(w, r, "roster.html", roster.Name, roster)
}

// handleJoinTeam handles POST /teams/join
func (s *Server) handleJoinTeam(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.JoinTeamInput
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
		input.TeamID = r.PostFormValue("team_id")
	}
	input.UserID = sessionFrom(r).AccountID

	t, err := orchestrators.ExecuteJoinTeam(r.Context(), input, orchestrators.JoinTeamDeps{
		TeamStore: s.stores.TeamStore,
		Now:       s.now,
	})
	if err != nil {
		s.fail(w, r, "", "", nil, err)
		return
	}
	redirectOrJSON(w, r, "/teams/roster?id="+t.ID, http.StatusOK, toTeamView(t))
}

func (s *Server) listMatches(r *http.Request) (matchesPage, error) {
	matches, err := projections.QueryListMatches(r.Context(), projections.ListMatchesQuery{}, projections.ListMatchesDeps{
		MatchStore: s.stores.MatchStore,
		Now:        s.now,
	})
	if err != nil {
		return matchesPage{}, err
	}
	teams, err := s.stores.TeamStore.ListByUser(r.Context(), sessionFrom(r).AccountID)
	if err != nil {
		return matchesPage{}, err
	}
	return matchesPage{Matches: matches, Teams: teams}, nil
}

// handleMatches handles GET /matches
func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	page, err := s.listMatches(r)
	if err != nil {
		s.fail(w, r, "", "", nil, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, page.Matches)
		return
	}
	s.render(w, r, http.StatusOK, "matches.html", pageData{Title: "Matches", Data: page})
}

// handlePublishMatch handles POST /matches. Form times are read as UTC.
func (s *Server) handlePublishMatch(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.PublishMatchInput
	form := map[string]string{}
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
		for _, k := range []string{"team_id", "match_type", "scheduled_at", "notes"} {
			form[k] = r.PostFormValue(k)
		}
		input.TeamID = form["team_id"]
		input.MatchType = form["match_type"]
		input.Notes = form["notes"]
		if raw := strings.TrimSpace(form["scheduled_at"]); raw != "" {
			at, err := time.ParseInLocation(scheduledAtLayout, raw, s.cfg.Location)
			if err != nil {
				s.failMatches(w, r, form, validation.New("scheduled_at", "scheduled_at must look like 2026-05-01T18:30"))
				return
			}
			input.ScheduledAt = at
		}
	}
	input.UserID = sessionFrom(r).AccountID

	m, err := orchestrators.ExecutePublishMatch(r.Context(), input, orchestrators.PublishMatchDeps{
		MatchStore: s.stores.MatchStore,
		TeamStore:  s.stores.TeamStore,
		Sender:     s.sender,
		Now:        s.now,
	})
	if err != nil {
		s.failMatches(w, r, form, err)
		return
	}
	redirectOrJSON(w, r, "/matches", http.StatusCreated, toMatchView(m))
}

func (s *Server) failMatches(w http.ResponseWriter, r *http.Request, form map[string]string, err error) {
	if page, lerr := s.listMatches(r); lerr == nil {
		page.Form = form
		s.fail(w, r, "matches.html", "Matches", page, err)
		return
	}
	s.fail(w, r, "", "", nil, err)
}

package projections

import (
	"context"
	"time"
)

// DashboardMatchCount is how many upcoming matches the dashboard shows.
const DashboardMatchCount = 3

// GetDashboardQuery carries query parameters.
type GetDashboardQuery struct {
	UserID string
	Role   string
}

// GetDashboardDeps holds dependencies for GetDashboard.
type GetDashboardDeps struct {
	CourtStore   CourtStore
	SessionStore SessionStore
	MatchStore   MatchStore
	Now          func() time.Time
	Location     *time.Location // optional, see GetTrafficDeps
}

// DashboardResult carries the output of the dashboard projection.
type DashboardResult struct {
	Role        string           `json:"role"`
	Courts      []CourtView      `json:"courts"`
	OpenSession *OpenSessionView `json:"open_session,omitempty"`
	Traffic     TrafficResult    `json:"traffic"`
	Matches     []MatchView      `json:"matches"`
}

// QueryGetDashboard aggregates the dashboard. Courts are required; the
// other panels are left empty when their query fails.
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (DashboardResult, error) {
	result := DashboardResult{Role: query.Role, Matches: []MatchView{}}
	now := nowFunc(deps.Now)
	fixed := func() time.Time { return now }

	courts, err := QueryListCourts(ctx, ListCourtsDeps{CourtStore: deps.CourtStore})
	if err != nil {
		return DashboardResult{}, err
	}
	result.Courts = courts

	if query.UserID != "" {
		s, err := deps.SessionStore.GetOpenByUser(ctx, query.UserID)
		if err == nil {
			view := &OpenSessionView{SessionID: s.ID, CourtID: s.CourtID, OpenedAt: s.OpenedAt, Minutes: int(s.Duration(now).Minutes())}
			for _, c := range courts {
				if c.ID == s.CourtID {
					view.CourtName = c.Name
				}
			}
			result.OpenSession = view
		}
	}

	traffic, err := QueryGetTraffic(ctx, GetTrafficQuery{}, GetTrafficDeps{SessionStore: deps.SessionStore, Now: fixed, Location: deps.Location})
	if err == nil {
		result.Traffic = traffic
	} else {
		result.Traffic = BuildTraffic(nil)
	}

	matches, err := QueryListMatches(ctx, ListMatchesQuery{Limit: DashboardMatchCount}, ListMatchesDeps{MatchStore: deps.MatchStore, Now: fixed})
	if err == nil {
		result.Matches = matches
	}
	return result, nil
}

package projections

import (
	"context"
	"time"
)

// DefaultMatchLimit caps the match board.
const DefaultMatchLimit = 50

// MatchView is one match board entry.
type MatchView struct {
	ID          string    `json:"id"`
	TeamID      string    `json:"team_id"`
	TeamName    string    `json:"team_name"`
	MatchType   string    `json:"match_type"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Notes       string    `json:"notes"`
}

// ListMatchesQuery carries query parameters.
type ListMatchesQuery struct {
	Limit int
}

// ListMatchesDeps holds dependencies for ListMatches.
type ListMatchesDeps struct {
	MatchStore MatchStore
	Now        func() time.Time
}

// QueryListMatches returns upcoming matches, soonest first.
func QueryListMatches(ctx context.Context, query ListMatchesQuery, deps ListMatchesDeps) ([]MatchView, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultMatchLimit
	}
	listings, err := deps.MatchStore.ListUpcoming(ctx, nowFunc(deps.Now), limit)
	if err != nil {
		return nil, err
	}
	views := make([]MatchView, 0, len(listings))
	for _, l := range listings {
		views = append(views, MatchView{
			ID:          l.Match.ID,
			TeamID:      l.Match.TeamID,
			TeamName:    l.TeamName,
			MatchType:   l.Match.MatchType,
			ScheduledAt: l.Match.ScheduledAt,
			Notes:       l.Match.Notes,
		})
	}
	return views, nil
}

package projections

import (
	"context"
	"sort"
	"strings"
)

// Leaderboard page sizes offered in the UI. Zero means all.
var LeaderboardTops = []int{10, 25, 0}

// LeaderRow is one leaderboard line.
type LeaderRow struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Games  int    `json:"games"`
}

// GetLeaderboardQuery carries query parameters.
type GetLeaderboardQuery struct {
	Search string
	Top    int
}

// GetLeaderboardDeps holds dependencies for GetLeaderboard.
type GetLeaderboardDeps struct {
	SessionStore SessionHistoryStore
}

// QueryGetLeaderboard ranks players by sessions played.
func QueryGetLeaderboard(ctx context.Context, query GetLeaderboardQuery, deps GetLeaderboardDeps) ([]LeaderRow, error) {
	games, err := deps.SessionStore.GamesByUser(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]LeaderRow, 0, len(games))
	for _, g := range games {
		rows = append(rows, LeaderRow{
			UserID: g.UserID,
			Name:   strings.TrimSpace(g.FirstName + " " + g.LastName),
			Games:  g.Games,
		})
	}
	return RankPlayers(rows, query.Search, query.Top), nil
}

// RankPlayers filters rows by a case-insensitive name substring, sorts by
// games descending then name, keeps the first top rows (0 keeps all) and
// numbers them from 1.
func RankPlayers(rows []LeaderRow, search string, top int) []LeaderRow {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]LeaderRow, 0, len(rows))
	for _, r := range rows {
		if needle == "" || strings.Contains(strings.ToLower(r.Name), needle) {
			out = append(out, r)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Games != out[j].Games {
			return out[i].Games > out[j].Games
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})

	if top > 0 && len(out) > top {
		out = out[:top]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

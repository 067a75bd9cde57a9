package projections

import (
	"context"
	"time"

	domainTraffic "cutrackit/internal/domain/traffic"
)

// Traffic chart constants.
const (
	DefaultTrafficWeeks = 8
	barMaxHeight        = 160
	barMinHeight        = 20
	noTrafficLabel      = "No traffic recorded."
)

// TrafficDay is one bar of the chart.
type TrafficDay struct {
	Day     string `json:"day"`
	Count   int    `json:"count"`
	Height  int    `json:"height"`
	Busiest bool   `json:"busiest"`
}

// TrafficResult carries the chart.
type TrafficResult struct {
	Days    []TrafficDay `json:"days"`
	Busiest string       `json:"busiest,omitempty"`
	Label   string       `json:"label"`
	Weeks   int          `json:"weeks"`
}

// GetTrafficQuery carries query parameters. Weeks <= 0 uses the default
// window unless AllTime is set.
type GetTrafficQuery struct {
	Weeks   int
	AllTime bool
}

// GetTrafficDeps holds dependencies for GetTraffic.
type GetTrafficDeps struct {
	SessionStore SessionHistoryStore
	Now          func() time.Time
	Location     *time.Location // day boundaries; nil means UTC
}

// QueryGetTraffic counts check-ins per local weekday.
func QueryGetTraffic(ctx context.Context, query GetTrafficQuery, deps GetTrafficDeps) (TrafficResult, error) {
	var since time.Time
	weeks := 0
	if !query.AllTime {
		weeks = query.Weeks
		if weeks <= 0 {
			weeks = DefaultTrafficWeeks
		}
		since = nowFunc(deps.Now).AddDate(0, 0, -7*weeks)
	}

	sessions, err := deps.SessionStore.ListSince(ctx, since)
	if err != nil {
		return TrafficResult{}, err
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	counts := make(map[time.Weekday]int, 7)
	for _, s := range sessions {
		counts[s.OpenedAt.In(loc).Weekday()]++
	}
	res := BuildTraffic(counts)
	res.Weeks = weeks
	return res, nil
}

// BuildTraffic lays out the seven days Monday first. Bars scale to the
// busiest day; with no traffic every bar has the minimum height.
func BuildTraffic(counts map[time.Weekday]int) TrafficResult {
	top := domainTraffic.Max(counts)
	busiest, ok := domainTraffic.Busiest(counts)

	res := TrafficResult{Days: make([]TrafficDay, 0, len(domainTraffic.Weekdays)), Label: noTrafficLabel}
	for _, d := range domainTraffic.Weekdays {
		n := counts[d]
		h := barMinHeight
		if top > 0 {
			h = n*barMaxHeight/top + barMinHeight
		}
		res.Days = append(res.Days, TrafficDay{Day: d.String(), Count: n, Height: h, Busiest: ok && d == busiest})
	}
	if ok {
		res.Busiest = busiest.String()
		res.Label = busiest.String() + " is the busiest day"
	}
	return res
}

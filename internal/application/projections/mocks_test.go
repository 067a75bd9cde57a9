package projections

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	matchstore "cutrackit/internal/adapters/storage/match"
	sessionstore "cutrackit/internal/adapters/storage/session"
	teamstore "cutrackit/internal/adapters/storage/team"
	"cutrackit/internal/domain/court"
	"cutrackit/internal/domain/profile"
	"cutrackit/internal/domain/session"
	"cutrackit/internal/domain/team"
)

var projTime = time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC) // a Wednesday

func projNow() time.Time { return projTime }

type mockProfileStore struct{ profiles map[string]profile.Profile }

func (m *mockProfileStore) GetByID(_ context.Context, id string) (profile.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return profile.Profile{}, fmt.Errorf("profile not found: %w", sql.ErrNoRows)
	}
	return p, nil
}

type mockCourtStore struct{ courts []court.Court }

func (m *mockCourtStore) GetByID(_ context.Context, id string) (court.Court, error) {
	for _, c := range m.courts {
		if c.ID == id {
			return c, nil
		}
	}
	return court.Court{}, fmt.Errorf("court not found: %w", sql.ErrNoRows)
}

func (m *mockCourtStore) List(context.Context) ([]court.Court, error) { return m.courts, nil }

type mockSessionStore struct {
	sessions []session.Session
	players  map[string]profile.Profile
	err      error
}

func (m *mockSessionStore) GetOpenByUser(_ context.Context, userID string) (session.Session, error) {
	for _, s := range m.sessions {
		if s.UserID == userID && s.IsOpen() {
			return s, nil
		}
	}
	return session.Session{}, fmt.Errorf("open session not found: %w", sql.ErrNoRows)
}

func (m *mockSessionStore) ListOpenByCourt(_ context.Context, courtID string) ([]sessionstore.OpenPlayer, error) {
	var out []sessionstore.OpenPlayer
	for _, s := range m.sessions {
		if s.CourtID == courtID && s.IsOpen() {
			p := m.players[s.UserID]
			out = append(out, sessionstore.OpenPlayer{SessionID: s.ID, UserID: s.UserID, FirstName: p.FirstName, LastName: p.LastName, OpenedAt: s.OpenedAt})
		}
	}
	return out, nil
}

func (m *mockSessionStore) ListByUser(_ context.Context, userID string) ([]session.Session, error) {
	var out []session.Session
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSessionStore) ListSince(_ context.Context, since time.Time) ([]session.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []session.Session
	for _, s := range m.sessions {
		if !s.OpenedAt.Before(since) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSessionStore) GamesByUser(context.Context) ([]sessionstore.PlayerGames, error) {
	counts := map[string]int{}
	for _, s := range m.sessions {
		counts[s.UserID]++
	}
	var out []sessionstore.PlayerGames
	for id, n := range counts {
		p := m.players[id]
		out = append(out, sessionstore.PlayerGames{UserID: id, FirstName: p.FirstName, LastName: p.LastName, Games: n})
	}
	return out, nil
}

type mockTeamStore struct {
	teams   []teamstore.Summary
	members map[string][]teamstore.Member
}

func (m *mockTeamStore) GetByID(_ context.Context, id string) (team.Team, error) {
	for _, s := range m.teams {
		if s.Team.ID == id {
			return s.Team, nil
		}
	}
	return team.Team{}, team.ErrTeamNotFound
}

func (m *mockTeamStore) List(context.Context) ([]teamstore.Summary, error) { return m.teams, nil }

func (m *mockTeamStore) ListMembers(_ context.Context, teamID string) ([]teamstore.Member, error) {
	return m.members[teamID], nil
}

func (m *mockTeamStore) ListByUser(_ context.Context, userID string) ([]team.Team, error) {
	var out []team.Team
	for _, s := range m.teams {
		for _, mem := range m.members[s.Team.ID] {
			if mem.UserID == userID {
				out = append(out, s.Team)
			}
		}
	}
	return out, nil
}

type mockMatchStore struct {
	listings []matchstore.Listing
	limit    int
}

func (m *mockMatchStore) ListUpcoming(_ context.Context, now time.Time, limit int) ([]matchstore.Listing, error) {
	m.limit = limit
	var out []matchstore.Listing
	for _, l := range m.listings {
		if l.Match.ScheduledAt.After(now) && len(out) < limit {
			out = append(out, l)
		}
	}
	return out, nil
}

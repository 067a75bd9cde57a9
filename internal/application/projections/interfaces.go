package projections

import (
	"context"
	"time"

	matchstore "cutrackit/internal/adapters/storage/match"
	sessionstore "cutrackit/internal/adapters/storage/session"
	teamstore "cutrackit/internal/adapters/storage/team"
	domainCourt "cutrackit/internal/domain/court"
	domainProfile "cutrackit/internal/domain/profile"
	domainSession "cutrackit/internal/domain/session"
	domainTeam "cutrackit/internal/domain/team"
)

// ProfileStore interface for profile queries.
type ProfileStore interface {
	GetByID(ctx context.Context, id string) (domainProfile.Profile, error)
}

// CourtStore interface for court queries.
type CourtStore interface {
	GetByID(ctx context.Context, id string) (domainCourt.Court, error)
	List(ctx context.Context) ([]domainCourt.Court, error)
}

// OpenSessionStore interface for presence queries.
type OpenSessionStore interface {
	GetOpenByUser(ctx context.Context, userID string) (domainSession.Session, error)
	ListOpenByCourt(ctx context.Context, courtID string) ([]sessionstore.OpenPlayer, error)
}

// SessionHistoryStore interface for history queries.
type SessionHistoryStore interface {
	ListByUser(ctx context.Context, userID string) ([]domainSession.Session, error)
	ListSince(ctx context.Context, since time.Time) ([]domainSession.Session, error)
	GamesByUser(ctx context.Context) ([]sessionstore.PlayerGames, error)
}

// SessionStore combines presence and history queries.
type SessionStore interface {
	OpenSessionStore
	SessionHistoryStore
}

// TeamStore interface for team queries.
type TeamStore interface {
	GetByID(ctx context.Context, id string) (domainTeam.Team, error)
	List(ctx context.Context) ([]teamstore.Summary, error)
	ListMembers(ctx context.Context, teamID string) ([]teamstore.Member, error)
	ListByUser(ctx context.Context, userID string) ([]domainTeam.Team, error)
}

// MatchStore interface for match board queries.
type MatchStore interface {
	ListUpcoming(ctx context.Context, now time.Time, limit int) ([]matchstore.Listing, error)
}

func nowFunc(now func() time.Time) time.Time {
	if now != nil {
		return now()
	}
	return time.Now()
}

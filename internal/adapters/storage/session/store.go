package session

import (
	"context"
	"time"

	courtdomain "cutrackit/internal/domain/court"
	domain "cutrackit/internal/domain/session"
)

// Store persists court sessions and keeps court occupancy in step with them.
type Store interface {
	Toggle(ctx context.Context, params ToggleParams) (ToggleResult, error)
	GetOpenByUser(ctx context.Context, userID string) (domain.Session, error)
	ListOpenByCourt(ctx context.Context, courtID string) ([]OpenPlayer, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Session, error)
	ListSince(ctx context.Context, since time.Time) ([]domain.Session, error)
	GamesByUser(ctx context.Context) ([]PlayerGames, error)
	ExpireOlderThan(ctx context.Context, cutoff, now time.Time) (int, error)
	CountOpen(ctx context.Context) (int, error)
}

// ToggleParams carries one toggle request.
type ToggleParams struct {
	UserID       string
	CourtID      string // ignored on check-out
	NewSessionID string // used on check-in
	Now          time.Time
	// StaleAfter closes an open session older than this before toggling, so
	// the toggle checks in. Zero disables it.
	StaleAfter time.Duration
}

// ToggleResult describes what a toggle did. Court is read after the counter
// update and is the court actually joined or left.
type ToggleResult struct {
	Outcome domain.ToggleOutcome
	Session domain.Session
	Court   courtdomain.Court
	Expired *domain.Session // stale session closed by this toggle, if any
}

// OpenPlayer is a player currently on a court.
type OpenPlayer struct {
	SessionID string
	UserID    string
	FirstName string
	LastName  string
	OpenedAt  time.Time
}

// PlayerGames is one leaderboard input row.
type PlayerGames struct {
	UserID    string
	FirstName string
	LastName  string
	Games     int
}

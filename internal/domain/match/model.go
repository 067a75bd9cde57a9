package match

import (
	"errors"
	"time"

	"cutrackit/internal/domain/team"
)

// Domain errors
var (
	ErrEmptyTeam     = errors.New("match must belong to a team")
	ErrInvalidType   = errors.New("match type must be one of: 1v1, 3v3, 5v5")
	ErrNoScheduledAt = errors.New("scheduled time is required")
	ErrNotTeamMember = errors.New("only team members can post matches for a team")
)

// Match is a posting on the match board.
type Match struct {
	ID          string
	TeamID      string
	MatchType   string
	ScheduledAt time.Time
	Notes       string
	CreatedBy   string
	CreatedAt   time.Time
}

// Validate checks if the Match has valid data.
// PRE: Match struct is populated
// POST: Returns nil if valid, error otherwise
func (m *Match) Validate() error {
	if m.TeamID == "" {
		return ErrEmptyTeam
	}
	if !team.IsValidSize(m.MatchType) {
		return ErrInvalidType
	}
	if m.ScheduledAt.IsZero() {
		return ErrNoScheduledAt
	}
	return nil
}

// IsUpcoming reports whether the match has not started yet.
func (m *Match) IsUpcoming(now time.Time) bool {
	return m.ScheduledAt.After(now)
}

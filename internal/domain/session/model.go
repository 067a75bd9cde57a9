// Package session models a player's presence on a court.
package session

import (
	"errors"
	"time"
)

// ToggleOutcome is the result of a toggle request.
type ToggleOutcome string

// Toggle outcomes
const (
	CheckedIn  ToggleOutcome = "checked_in"
	CheckedOut ToggleOutcome = "checked_out"
)

// Domain errors
var (
	ErrCourtNotFound    = errors.New("court not found")
	ErrCourtFull        = errors.New("court is full")
	ErrUnauthenticated  = errors.New("authentication required")
	ErrToggleConflict   = errors.New("another toggle for this user is in progress")
	ErrEmptyUser        = errors.New("session must belong to a user")
	ErrEmptyCourt       = errors.New("session must belong to a court")
	ErrNotOpened        = errors.New("opened-at time must be set")
	ErrClosedBeforeOpen = errors.New("closed-at cannot be before opened-at")
	ErrAlreadyClosed    = errors.New("session is already closed")
)

// Session is one stay of a user on a court. A zero ClosedAt means open.
type Session struct {
	ID       string
	UserID   string
	CourtID  string
	OpenedAt time.Time
	ClosedAt time.Time
}

// Validate checks if the Session has valid data.
// PRE: Session struct is populated
// POST: Returns nil if valid, error otherwise
// INVARIANT: UserID and CourtID are set, ClosedAt is not before OpenedAt
func (s *Session) Validate() error {
	if s.UserID == "" {
		return ErrEmptyUser
	}
	if s.CourtID == "" {
		return ErrEmptyCourt
	}
	if s.OpenedAt.IsZero() {
		return ErrNotOpened
	}
	if !s.ClosedAt.IsZero() && s.ClosedAt.Before(s.OpenedAt) {
		return ErrClosedBeforeOpen
	}
	return nil
}

// IsOpen reports whether the session has not been closed.
func (s *Session) IsOpen() bool {
	return s.ClosedAt.IsZero()
}

// Close stamps ClosedAt.
// PRE: session is open
// POST: ClosedAt == now
func (s *Session) Close(now time.Time) error {
	if !s.IsOpen() {
		return ErrAlreadyClosed
	}
	if now.Before(s.OpenedAt) {
		return ErrClosedBeforeOpen
	}
	s.ClosedAt = now
	return nil
}

// Duration returns the session length, measured to now while still open.
func (s *Session) Duration(now time.Time) time.Duration {
	if !s.IsOpen() {
		return s.ClosedAt.Sub(s.OpenedAt)
	}
	return now.Sub(s.OpenedAt)
}

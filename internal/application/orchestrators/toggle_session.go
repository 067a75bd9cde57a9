package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sessionstore "cutrackit/internal/adapters/storage/session"
	"cutrackit/internal/application/validation"
	"cutrackit/internal/domain/account"
	"cutrackit/internal/domain/profile"
	"cutrackit/internal/domain/session"
	"cutrackit/internal/metrics"

	"github.com/google/uuid"
)

// SessionToggler is the store operation behind ToggleSession.
type SessionToggler interface {
	Toggle(ctx context.Context, params sessionstore.ToggleParams) (sessionstore.ToggleResult, error)
}

// ToggleRecorder receives one call per toggle attempt.
type ToggleRecorder interface {
	RecordToggle(outcome string)
}

// ToggleSessionInput carries input for the toggle orchestrator.
// UserID comes from the authenticated session, never from the request body.
type ToggleSessionInput struct {
	UserID  string
	CourtID string
}

// ToggleSessionResult describes the court after the toggle.
// On check-out CourtID names the court that was left.
type ToggleSessionResult struct {
	Outcome     session.ToggleOutcome `json:"outcome"`
	SessionID   string                `json:"session_id"`
	CourtID     string                `json:"court_id"`
	CourtName   string                `json:"court_name"`
	Occupancy   int                   `json:"occupancy"`
	MaxCapacity int                   `json:"max_capacity"`
	Status      string                `json:"status"`
	At          time.Time             `json:"at"`
}

// ToggleSessionDeps holds dependencies for ToggleSession.
type ToggleSessionDeps struct {
	SessionStore SessionToggler
	Metrics      ToggleRecorder // optional
	GenerateID   func() string
	Now          func() time.Time
	StaleAfter   time.Duration // sessions older than this are expired, not toggled off; 0 disables
}

// ExecuteToggleSession checks the user in to CourtID, or checks them out of
// whatever court they are on.
// PRE: UserID is the authenticated caller
// POST: the user has exactly one open session after check-in and none after check-out
// INVARIANT: the court occupancy counter changes in the same transaction as the session row
func ExecuteToggleSession(ctx context.Context, input ToggleSessionInput, deps ToggleSessionDeps) (ToggleSessionResult, error) {
	if input.UserID == "" {
		recordToggle(deps.Metrics, metrics.OutcomeRejected)
		return ToggleSessionResult{}, session.ErrUnauthenticated
	}
	courtID := strings.TrimSpace(input.CourtID)
	if courtID == "" {
		recordToggle(deps.Metrics, metrics.OutcomeRejected)
		return ToggleSessionResult{}, validation.New("court_id", "court_id is required")
	}

	genID := deps.GenerateID
	if genID == nil {
		genID = func() string { return uuid.New().String() }
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	res, err := deps.SessionStore.Toggle(ctx, sessionstore.ToggleParams{
		UserID:       input.UserID,
		CourtID:      courtID,
		NewSessionID: genID(),
		Now:          now(),
		StaleAfter:   deps.StaleAfter,
	})
	if err != nil {
		recordToggle(deps.Metrics, metrics.OutcomeRejected)
		reason := "store_error"
		switch {
		case errors.Is(err, session.ErrCourtNotFound):
			reason = "court_not_found"
		case errors.Is(err, session.ErrCourtFull):
			reason = "court_full"
		case errors.Is(err, session.ErrToggleConflict):
			reason = "conflict"
		}
		slog.Info("checkin_event", "event", "toggle_rejected", "user_id", input.UserID, "court_id", courtID, "reason", reason)
		return ToggleSessionResult{}, err
	}

	if res.Expired != nil {
		slog.Info("checkin_event", "event", "session_expired", "user_id", input.UserID, "court_id", res.Expired.CourtID, "session_id", res.Expired.ID)
	}
	at := res.Session.OpenedAt
	if res.Outcome == session.CheckedOut {
		at = res.Session.ClosedAt
	}
	recordToggle(deps.Metrics, string(res.Outcome))
	slog.Info("checkin_event", "event", string(res.Outcome), "user_id", input.UserID, "court_id", res.Court.ID, "occupancy", res.Court.Occupancy)

	return ToggleSessionResult{
		Outcome:     res.Outcome,
		SessionID:   res.Session.ID,
		CourtID:     res.Court.ID,
		CourtName:   res.Court.Name,
		Occupancy:   res.Court.Occupancy,
		MaxCapacity: res.Court.MaxCapacity,
		Status:      res.Court.Status(),
		At:          at,
	}, nil
}

func recordToggle(r ToggleRecorder, outcome string) {
	if r != nil {
		r.RecordToggle(outcome)
	}
}

// ProfileByQR resolves kiosk scans.
type ProfileByQR interface {
	GetByQRToken(ctx context.Context, token string) (profile.Profile, error)
}

// ToggleByQRInput carries input for a kiosk scan.
type ToggleByQRInput struct {
	OperatorRole string
	QRToken      string
	CourtID      string
}

// ToggleByQRDeps holds dependencies for ToggleByQR.
type ToggleByQRDeps struct {
	ProfileStore ProfileByQR
	Toggle       ToggleSessionDeps
}

// ErrForbidden is returned when the caller lacks the required role.
var ErrForbidden = errors.New("you do not have permission to do that")

// ErrUnknownQRToken is returned when no profile carries the scanned token.
var ErrUnknownQRToken = errors.New("unknown QR code")

// ExecuteToggleByQR toggles the player identified by a scanned QR token.
// PRE: the operator is staff or admin
// POST: same as ExecuteToggleSession for the resolved player
func ExecuteToggleByQR(ctx context.Context, input ToggleByQRInput, deps ToggleByQRDeps) (ToggleSessionResult, error) {
	operator := account.Account{Role: input.OperatorRole}
	if !operator.IsStaffOrAdmin() {
		return ToggleSessionResult{}, ErrForbidden
	}
	token := strings.TrimSpace(input.QRToken)
	if token == "" {
		return ToggleSessionResult{}, validation.New("qr_token", "qr_token is required")
	}

	p, err := deps.ProfileStore.GetByQRToken(ctx, token)
	if errors.Is(err, sql.ErrNoRows) {
		slog.Info("checkin_event", "event", "qr_unknown", "court_id", input.CourtID)
		return ToggleSessionResult{}, ErrUnknownQRToken
	}
	if err != nil {
		return ToggleSessionResult{}, fmt.Errorf("look up qr token: %w", err)
	}

	return ExecuteToggleSession(ctx, ToggleSessionInput{UserID: p.ID, CourtID: input.CourtID}, deps.Toggle)
}

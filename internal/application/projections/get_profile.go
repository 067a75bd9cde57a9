package projections

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	domainProfile "cutrackit/internal/domain/profile"
)

// GetProfileQuery carries query parameters.
type GetProfileQuery struct {
	UserID string
}

// OpenSessionView describes where a player is right now.
type OpenSessionView struct {
	SessionID string    `json:"session_id"`
	CourtID   string    `json:"court_id"`
	CourtName string    `json:"court_name"`
	OpenedAt  time.Time `json:"opened_at"`
	Minutes   int       `json:"minutes"`
}

// TeamRef is a short team reference.
type TeamRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size string `json:"size"`
}

// ProfileResult carries the profile page.
type ProfileResult struct {
	ID          string           `json:"id"`
	FirstName   string           `json:"first_name"`
	LastName    string           `json:"last_name"`
	Email       string           `json:"email"`
	QRToken     string           `json:"qr_token"`
	Since       time.Time        `json:"since"`
	OpenSession *OpenSessionView `json:"open_session,omitempty"`
	GamesPlayed int              `json:"games_played"`
	TotalHours  float64          `json:"total_hours"`
	Teams       []TeamRef        `json:"teams"`
}

// GetProfileDeps holds dependencies for GetProfile.
type GetProfileDeps struct {
	ProfileStore ProfileStore
	CourtStore   CourtStore
	SessionStore SessionStore
	TeamStore TeamStore
	Now       func() time.Time
}

// QueryGetProfile builds the profile page for one user.
// PRE: UserID is non-empty
// POST: TotalHours counts open sessions up to now, rounded to one decimal
func QueryGetProfile(ctx context.Context, query GetProfileQuery, deps GetProfileDeps) (ProfileResult, error) {
	p, err := deps.ProfileStore.GetByID(ctx, query.UserID)
	if err != nil {
		return ProfileResult{}, err
	}
	now := nowFunc(deps.Now)

	res := ProfileResult{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		QRToken:   p.QRToken,
		Since:     p.CreatedAt,
		Teams:     []TeamRef{},
	}

	open, err := currentSession(ctx, p, deps.SessionStore, deps.CourtStore, now)
	if err != nil {
		return ProfileResult{}, err
	}
	res.OpenSession = open

	history, err := deps.SessionStore.ListByUser(ctx, p.ID)
	if err != nil {
		return ProfileResult{}, err
	}
	var total time.Duration
	for _, s := range history {
		total += s.Duration(now)
	}
	res.GamesPlayed = len(history)
	res.TotalHours = math.Round(total.Hours()*10) / 10

	teams, err := deps.TeamStore.ListByUser(ctx, p.ID)
	if err != nil {
		return ProfileResult{}, err
	}
	for _, t := range teams {
		res.Teams = append(res.Teams, TeamRef{ID: t.ID, Name: t.Name, Size: t.Size})
	}
	return res, nil
}

func currentSession(ctx context.Context, p domainProfile.Profile, sessions OpenSessionStore, courts CourtStore, now time.Time) (*OpenSessionView, error) {
	s, err := sessions.GetOpenByUser(ctx, p.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	view := &OpenSessionView{
		SessionID: s.ID,
		CourtID:   s.CourtID,
		OpenedAt:  s.OpenedAt,
		Minutes:   int(s.Duration(now).Minutes()),
	}
	if c, err := courts.GetByID(ctx, s.CourtID); err == nil {
		view.CourtName = c.Name
	}
	return view, nil
}

package projections

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	domainCourt "cutrackit/internal/domain/court"
	domainSession "cutrackit/internal/domain/session"
)

// CourtView is one court card.
type CourtView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	MaxCapacity int    `json:"max_capacity"`
	Occupancy   int    `json:"occupancy"`
}

// PlayerView is one player on a court.
type PlayerView struct {
	UserID    string    `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Since     time.Time `json:"since"`
}

// Name joins first and last name.
func (p PlayerView) Name() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// CourtStatusView is a court plus who is on it.
type CourtStatusView struct {
	CourtView
	Players []PlayerView `json:"players"`
}

// ListCourtsDeps holds dependencies for ListCourts.
type ListCourtsDeps struct {
	CourtStore CourtStore
}

func toCourtView(c domainCourt.Court) CourtView {
	return CourtView{ID: c.ID, Name: c.Name, Status: c.Status(), MaxCapacity: c.MaxCapacity, Occupancy: c.Occupancy}
}

// QueryListCourts returns every court ordered by name.
func QueryListCourts(ctx context.Context, deps ListCourtsDeps) ([]CourtView, error) {
	courts, err := deps.CourtStore.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]CourtView, 0, len(courts))
	for _, c := range courts {
		views = append(views, toCourtView(c))
	}
	return views, nil
}

// GetCourtStatusQuery carries query parameters.
type GetCourtStatusQuery struct {
	CourtID string
}

// GetCourtStatusDeps holds dependencies for GetCourtStatus.
type GetCourtStatusDeps struct {
	CourtStore   CourtStore
	SessionStore OpenSessionStore
}

// QueryGetCourtStatus returns one court and the players currently on it.
// PRE: CourtID is non-empty
// POST: Returns domainSession.ErrCourtNotFound for unknown courts
func QueryGetCourtStatus(ctx context.Context, query GetCourtStatusQuery, deps GetCourtStatusDeps) (CourtStatusView, error) {
	if query.CourtID == "" {
		return CourtStatusView{}, domainSession.ErrCourtNotFound
	}
	c, err := deps.CourtStore.GetByID(ctx, query.CourtID)
	if errors.Is(err, sql.ErrNoRows) {
		return CourtStatusView{}, fmt.Errorf("%w: %s", domainSession.ErrCourtNotFound, query.CourtID)
	}
	if err != nil {
		return CourtStatusView{}, err
	}

	open, err := deps.SessionStore.ListOpenByCourt(ctx, c.ID)
	if err != nil {
		return CourtStatusView{}, err
	}
	players := make([]PlayerView, 0, len(open))
	for _, p := range open {
		players = append(players, PlayerView{UserID: p.UserID, FirstName: p.FirstName, LastName: p.LastName, Since: p.OpenedAt})
	}
	return CourtStatusView{CourtView: toCourtView(c), Players: players}, nil
}

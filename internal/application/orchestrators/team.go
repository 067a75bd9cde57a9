package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cutrackit/internal/application/validation"
	"cutrackit/internal/domain/team"

	"github.com/google/uuid"
)

// TeamStoreForCreate defines the store interface needed by CreateTeam.
type TeamStoreForCreate interface {
	Create(ctx context.Context, t team.Team) error
}

// CreateTeamInput carries the create-team form.
type CreateTeamInput struct {
	CoachID     string `json:"-"`
	Name        string `json:"name" validate:"notblank,max=80"`
	Size        string `json:"size" validate:"oneof=1v1 3v3 5v5"`
	Description string `json:"description" validate:"max=2000"`
	Tags        string `json:"tags"`
}

// CreateTeamDeps holds dependencies for CreateTeam.
type CreateTeamDeps struct {
	TeamStore  TeamStoreForCreate
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteCreateTeam creates a team with the caller as coach and first member.
// PRE: CoachID is the authenticated caller
// POST: team and coach membership exist
// INVARIANT: team names are unique ignoring case
func ExecuteCreateTeam(ctx context.Context, input CreateTeamInput, deps CreateTeamDeps) (team.Team, error) {
	if input.CoachID == "" {
		return team.Team{}, ErrForbidden
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	if err := validation.Struct(input); err != nil {
		return team.Team{}, err
	}

	genID := deps.GenerateID
	if genID == nil {
		genID = func() string { return uuid.New().String() }
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	t := team.Team{
		ID:          genID(),
		Name:        input.Name,
		Size:        input.Size,
		Description: input.Description,
		Tags:        team.ParseTags(input.Tags),
		CoachID:     input.CoachID,
		CreatedAt:   now(),
	}
	if err := t.Validate(); err != nil {
		return team.Team{}, validation.New("name", err.Error())
	}
	if err := deps.TeamStore.Create(ctx, t); err != nil {
		return team.Team{}, err
	}

	slog.Info("team_event", "event", "team_created", "team_id", t.ID, "name", t.Name, "coach_id", t.CoachID)
	return t, nil
}

// TeamStoreForJoin defines the store interface needed by JoinTeam.
type TeamStoreForJoin interface {
	GetByID(ctx context.Context, id string) (team.Team, error)
	AddMember(ctx context.Context, m team.Membership) error
}

// JoinTeamInput carries input for JoinTeam.
type JoinTeamInput struct {
	UserID string `json:"-"`
	TeamID string `json:"team_id"`
}

// JoinTeamDeps holds dependencies for JoinTeam.
type JoinTeamDeps struct {
	TeamStore TeamStoreForJoin
	Now       func() time.Time
}

// ExecuteJoinTeam adds the caller to a team.
// PRE: UserID is the authenticated caller
// POST: membership exists, or ErrAlreadyMember / ErrTeamNotFound
func ExecuteJoinTeam(ctx context.Context, input JoinTeamInput, deps JoinTeamDeps) (team.Team, error) {
	if input.UserID == "" {
		return team.Team{}, ErrForbidden
	}
	teamID := strings.TrimSpace(input.TeamID)
	if teamID == "" {
		return team.Team{}, validation.New("team_id", "team_id is required")
	}

	t, err := deps.TeamStore.GetByID(ctx, teamID)
	if err != nil {
		return team.Team{}, err
	}

	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	if err := deps.TeamStore.AddMember(ctx, team.Membership{TeamID: t.ID, UserID: input.UserID, JoinedAt: now()}); err != nil {
		return team.Team{}, fmt.Errorf("join %s: %w", t.Name, err)
	}

	slog.Info("team_event", "event", "team_joined", "team_id", t.ID, "user_id", input.UserID)
	return t, nil
}

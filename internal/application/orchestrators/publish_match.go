package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cutrackit/internal/adapters/email"
	teamstore "cutrackit/internal/adapters/storage/team"
	"cutrackit/internal/application/validation"
	"cutrackit/internal/domain/match"
	"cutrackit/internal/domain/team"

	"github.com/google/uuid"
)

// MatchStoreForPublish defines the store interface needed by PublishMatch.
type MatchStoreForPublish interface {
	Save(ctx context.Context, m match.Match) error
}

// TeamStoreForPublish defines the team lookups needed by PublishMatch.
type TeamStoreForPublish interface {
	GetByID(ctx context.Context, id string) (team.Team, error)
	IsMember(ctx context.Context, teamID, userID string) (bool, error)
	ListMembers(ctx context.Context, teamID string) ([]teamstore.Member, error)
}

// PublishMatchInput carries the match board form.
type PublishMatchInput struct {
	UserID      string    `json:"-"`
	TeamID      string    `json:"team_id" validate:"notblank"`
	MatchType   string    `json:"match_type" validate:"oneof=1v1 3v3 5v5"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Notes       string    `json:"notes" validate:"max=500"`
}

// PublishMatchDeps holds dependencies for PublishMatch.
type PublishMatchDeps struct {
	MatchStore MatchStoreForPublish
	TeamStore  TeamStoreForPublish
	Sender     email.Sender // optional: notifies the other members
	GenerateID func() string
	Now        func() time.Time
}

// ExecutePublishMatch posts a match for one of the caller's teams.
// PRE: UserID is a member of TeamID
// POST: match saved; teammates notified best-effort
func ExecutePublishMatch(ctx context.Context, input PublishMatchInput, deps PublishMatchDeps) (match.Match, error) {
	if input.UserID == "" {
		return match.Match{}, ErrForbidden
	}
	input.TeamID = strings.TrimSpace(input.TeamID)
	input.Notes = strings.TrimSpace(input.Notes)
	if err := validation.Struct(input); err != nil {
		return match.Match{}, err
	}

	t, err := deps.TeamStore.GetByID(ctx, input.TeamID)
	if err != nil {
		return match.Match{}, err
	}
	ok, err := deps.TeamStore.IsMember(ctx, t.ID, input.UserID)
	if err != nil {
		return match.Match{}, err
	}
	if !ok {
		return match.Match{}, match.ErrNotTeamMember
	}

	genID := deps.GenerateID
	if genID == nil {
		genID = func() string { return uuid.New().String() }
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	m := match.Match{
		ID:          genID(),
		TeamID:      t.ID,
		MatchType:   input.MatchType,
		ScheduledAt: input.ScheduledAt,
		Notes:       input.Notes,
		CreatedBy:   input.UserID,
		CreatedAt:   now(),
	}
	if err := m.Validate(); err != nil {
		return match.Match{}, validation.New("scheduled_at", err.Error())
	}
	if err := deps.MatchStore.Save(ctx, m); err != nil {
		return match.Match{}, err
	}

	slog.Info("team_event", "event", "match_published", "match_id", m.ID, "team_id", t.ID, "scheduled_at", m.ScheduledAt)

	if deps.Sender != nil {
		notifyTeam(ctx, deps, t, m)
	}
	return m, nil
}

const matchBody = `**%s** posted a %s match for **%s**.

- When: %s
- Notes: %s`

func notifyTeam(ctx context.Context, deps PublishMatchDeps, t team.Team, m match.Match) {
	members, err := deps.TeamStore.ListMembers(ctx, t.ID)
	if err != nil {
		slog.Warn("email_event", "event", "match_notify_failed", "match_id", m.ID, "error", err)
		return
	}

	poster := "A teammate"
	var reqs []email.SendRequest
	for _, mem := range members {
		if mem.UserID == m.CreatedBy {
			if mem.FirstName != "" {
				poster = mem.FirstName
			}
			continue
		}
		if mem.Email == "" {
			continue
		}
		reqs = append(reqs, email.SendRequest{To: []string{mem.Email}})
	}
	if len(reqs) == 0 {
		return
	}

	notes := m.Notes
	if notes == "" {
		notes = "none"
	}
	body, err := email.Compose(nil, "New match: "+t.Name, fmt.Sprintf(matchBody, poster, m.MatchType, t.Name, m.ScheduledAt.UTC().Format("Mon 2 Jan 15:04 MST"), notes))
	if err != nil {
		slog.Warn("email_event", "event", "match_notify_failed", "match_id", m.ID, "error", err)
		return
	}
	for i := range reqs {
		reqs[i].Subject = body.Subject
		reqs[i].HTML = body.HTML
	}
	if _, err := deps.Sender.SendBatch(ctx, reqs); err != nil {
		slog.Warn("email_event", "event", "match_notify_failed", "match_id", m.ID, "error", err)
		return
	}
	slog.Info("email_event", "event", "match_notified", "match_id", m.ID, "recipients", len(reqs))
}

package projections

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"time"

	domainTeam "cutrackit/internal/domain/team"

	"github.com/yuin/goldmark"
)

// GetTeamRosterQuery carries query parameters.
type GetTeamRosterQuery struct {
	TeamID   string
	ViewerID string
}

// RosterMember is one player on the roster.
type RosterMember struct {
	UserID   string    `json:"user_id"`
	Name     string    `json:"name"`
	IsCoach  bool      `json:"is_coach"`
	JoinedAt time.Time `json:"joined_at"`
}

// TeamRosterResult carries the roster page.
type TeamRosterResult struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Size            string         `json:"size"`
	Description     string         `json:"description"`
	DescriptionHTML string         `json:"description_html"`
	Tags            []string       `json:"tags"`
	Members         []RosterMember `json:"members"`
	IsMember        bool           `json:"is_member"`
}

// GetTeamRosterDeps holds dependencies for GetTeamRoster.
type GetTeamRosterDeps struct {
	TeamStore TeamStore
}

// QueryGetTeamRoster returns a team with members sorted by name.
// PRE: TeamID is non-empty
// POST: DescriptionHTML is goldmark output with raw HTML omitted
func QueryGetTeamRoster(ctx context.Context, query GetTeamRosterQuery, deps GetTeamRosterDeps) (TeamRosterResult, error) {
	if query.TeamID == "" {
		return TeamRosterResult{}, domainTeam.ErrTeamNotFound
	}
	t, err := deps.TeamStore.GetByID(ctx, query.TeamID)
	if err != nil {
		return TeamRosterResult{}, err
	}
	members, err := deps.TeamStore.ListMembers(ctx, t.ID)
	if err != nil {
		return TeamRosterResult{}, err
	}

	res := TeamRosterResult{
		ID:          t.ID,
		Name:        t.Name,
		Size:        t.Size,
		Description: t.Description,
		Tags:        t.Tags,
		Members:     make([]RosterMember, 0, len(members)),
	}
	if res.Tags == nil {
		res.Tags = []string{}
	}
	if res.DescriptionHTML, err = RenderMarkdown(t.Description); err != nil {
		return TeamRosterResult{}, err
	}
	if res.DescriptionHTML == "" {
		res.DescriptionHTML = "<p>" + domainTeam.NoDescription + "</p>"
	}

	for _, m := range members {
		name := strings.TrimSpace(m.FirstName + " " + m.LastName)
		if name == "" {
			name = "Unknown player"
		}
		res.Members = append(res.Members, RosterMember{UserID: m.UserID, Name: name, IsCoach: m.UserID == t.CoachID, JoinedAt: m.JoinedAt})
		if m.UserID == query.ViewerID {
			res.IsMember = true
		}
	}
	sort.SliceStable(res.Members, func(i, j int) bool {
		return strings.ToLower(res.Members[i].Name) < strings.ToLower(res.Members[j].Name)
	})
	return res, nil
}

// RenderMarkdown converts user-written markdown to HTML. goldmark's default
// renderer drops raw HTML, so the output is safe to embed.
func RenderMarkdown(src string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

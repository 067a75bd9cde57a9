package projections

import (
	"context"
	"sort"
	"strings"
	"time"

	domainTeam "cutrackit/internal/domain/team"
)

// Team list sort keys.
const (
	SortDefault = "default"
	SortName    = "name"
	SortMembers = "members"
)

// SizeAll disables the size filter.
const SizeAll = "all"

// TeamCard is one team in the list.
type TeamCard struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Size             string    `json:"size"`
	ShortDescription string    `json:"short_description"`
	Tags             []string  `json:"tags"`
	MemberCount      int       `json:"member_count"`
	CreatedAt        time.Time `json:"created_at"`
}

// ListTeamsQuery carries query parameters.
type ListTeamsQuery struct {
	Search string
	Size   string
	Sort   string
}

// ListTeamsDeps holds dependencies for ListTeams.
type ListTeamsDeps struct {
	TeamStore TeamStore
}

// QueryListTeams returns filtered and sorted team cards.
func QueryListTeams(ctx context.Context, query ListTeamsQuery, deps ListTeamsDeps) ([]TeamCard, error) {
	summaries, err := deps.TeamStore.List(ctx)
	if err != nil {
		return nil, err
	}
	cards := make([]TeamCard, 0, len(summaries))
	for _, s := range summaries {
		t := s.Team
		tags := t.Tags
		if tags == nil {
			tags = []string{}
		}
		cards = append(cards, TeamCard{
			ID:               t.ID,
			Name:             t.Name,
			Size:             t.Size,
			ShortDescription: t.ShortDescription(),
			Tags:             tags,
			MemberCount:      s.MemberCount,
			CreatedAt:        t.CreatedAt,
		})
	}
	return FilterTeams(cards, query.Search, query.Size, query.Sort), nil
}

// FilterTeams applies the name search, the size filter and the sort.
// Unknown sizes match nothing; unknown sort keys fall back to default.
func FilterTeams(cards []TeamCard, search, size, sortBy string) []TeamCard {
	needle := strings.ToLower(strings.TrimSpace(search))
	size = strings.TrimSpace(size)
	out := make([]TeamCard, 0, len(cards))
	for _, c := range cards {
		if needle != "" && !strings.Contains(strings.ToLower(c.Name), needle) {
			continue
		}
		if size != "" && size != SizeAll && c.Size != size {
			continue
		}
		out = append(out, c)
	}

	switch sortBy {
	case SortName:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	case SortMembers:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].MemberCount > out[j].MemberCount
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	}
	return out
}

// TeamSizes lists the size filter options.
func TeamSizes() []string {
	return append([]string{SizeAll}, domainTeam.ValidSizes...)
}

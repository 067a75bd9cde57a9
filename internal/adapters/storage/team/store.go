package team

import (
	"context"
	"time"

	domain "cutrackit/internal/domain/team"
)

// Store persists teams and their memberships.
type Store interface {
	Create(ctx context.Context, t domain.Team) error
	GetByID(ctx context.Context, id string) (domain.Team, error)
	List(ctx context.Context) ([]Summary, error)
	AddMember(ctx context.Context, m domain.Membership) error
	IsMember(ctx context.Context, teamID, userID string) (bool, error)
	ListMembers(ctx context.Context, teamID string) ([]Member, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Team, error)
}

// Summary is a team with its member count.
type Summary struct {
	Team        domain.Team
	MemberCount int
}

// Member is a roster row.
type Member struct {
	UserID    string
	FirstName string
	LastName  string
	Email     string
	JoinedAt  time.Time
}

package match

import (
	"context"
	"time"

	domain "cutrackit/internal/domain/match"
)

// Store persists match board postings.
type Store interface {
	Save(ctx context.Context, m domain.Match) error
	ListUpcoming(ctx context.Context, now time.Time, limit int) ([]Listing, error)
}

// Listing is a match with the posting team's name.
type Listing struct {
	Match    domain.Match
	TeamName string
}

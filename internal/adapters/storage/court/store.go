package court

import (
	"context"

	domain "cutrackit/internal/domain/court"
)

// Store persists Court state. Occupancy is written only by the session store.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Court, error)
	List(ctx context.Context) ([]domain.Court, error)
	Save(ctx context.Context, value domain.Court) error
	Count(ctx context.Context) (int, error)
}

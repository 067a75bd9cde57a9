package profile

import (
	"context"

	accountdomain "cutrackit/internal/domain/account"
	domain "cutrackit/internal/domain/profile"
)

// Store persists Profile state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Profile, error)
	GetByQRToken(ctx context.Context, token string) (domain.Profile, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Profile, error)
	SaveWithAccount(ctx context.Context, p domain.Profile, a accountdomain.Account) error
}

package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"cutrackit/internal/domain/court"

	"github.com/google/uuid"
)

// CourtStoreForSeed defines the store interface needed by SeedCourts.
type CourtStoreForSeed interface {
	Count(ctx context.Context) (int, error)
	Save(ctx context.Context, c court.Court) error
}

// SeedCourtsInput carries the configured default courts.
type SeedCourtsInput struct {
	Names    []string
	Capacity int
}

// SeedCourtsDeps holds dependencies for SeedCourts.
type SeedCourtsDeps struct {
	CourtStore CourtStoreForSeed
	GenerateID func() string
}

// ExecuteSeedCourts creates the default courts when none exist.
// PRE: none
// POST: at least one court exists if Names is non-empty
// INVARIANT: existing courts are never modified
func ExecuteSeedCourts(ctx context.Context, input SeedCourtsInput, deps SeedCourtsDeps) (int, error) {
	n, err := deps.CourtStore.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	genID := deps.GenerateID
	if genID == nil {
		genID = func() string { return uuid.New().String() }
	}

	created := 0
	for _, name := range input.Names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		c := court.Court{ID: genID(), Name: name, MaxCapacity: input.Capacity}
		if err := c.Validate(); err != nil {
			return created, err
		}
		if err := deps.CourtStore.Save(ctx, c); err != nil {
			return created, err
		}
		created++
	}
	if created > 0 {
		slog.Info("court_event", "event", "courts_seeded", "count", created)
	}
	return created, nil
}

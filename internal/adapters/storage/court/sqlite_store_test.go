package court_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"cutrackit/internal/adapters/storage/court"
	"cutrackit/internal/adapters/storage/storagetest"
	domain "cutrackit/internal/domain/court"
)

// TestSQLiteStore_SaveListGet verifies ordering and that Save keeps occupancy.
func TestSQLiteStore_SaveListGet(t *testing.T) {
	db := storagetest.OpenDB(t)
	store := court.NewSQLiteStore(db)
	ctx := context.Background()

	for _, c := range []domain.Court{{ID: "c2", Name: "Court B", MaxCapacity: 4}, {ID: "c1", Name: "Court A"}} {
		if err := store.Save(ctx, c); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	if _, err := db.Exec("UPDATE court SET occupancy = 3 WHERE id = 'c2'"); err != nil {
		t.Fatalf("set occupancy: %v", err)
	}
	if err := store.Save(ctx, domain.Court{ID: "c2", Name: "Court B", MaxCapacity: 3}); err != nil {
		t.Fatalf("Save update: %v", err)
	}

	got, err := store.GetByID(ctx, "c2")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Occupancy != 3 || got.MaxCapacity != 3 || got.Status() != domain.StatusFull {
		t.Errorf("GetByID = %+v", got)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Court A" {
		t.Errorf("List = %+v", list)
	}
	if n, _ := store.Count(ctx); n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}

	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("missing err = %v", err)
	}
}

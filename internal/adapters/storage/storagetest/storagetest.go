// Package storagetest opens migrated SQLite databases for store tests.
package storagetest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"cutrackit/internal/adapters/storage"
)

// OpenDB returns a migrated database in a temp directory. A file database is
// used so concurrent tests get real cross-connection locking.
func OpenDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.OpenSQLite(path)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db, path); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// InsertPlayer adds an account and matching profile row.
func InsertPlayer(t *testing.T, db *sql.DB, id, first, last string) {
	t.Helper()
	email := id + "@test.local"
	if _, err := db.Exec(`INSERT INTO account (id, email, role, created_at) VALUES (?, ?, 'player', '2026-01-01T00:00:00.000000000Z')`, id, email); err != nil {
		t.Fatalf("insert account %s: %v", id, err)
	}
	if _, err := db.Exec(`INSERT INTO profile (id, first_name, last_name, email, qr_token, created_at) VALUES (?, ?, ?, ?, ?, '2026-01-01T00:00:00.000000000Z')`,
		id, first, last, email, "QR-"+id); err != nil {
		t.Fatalf("insert profile %s: %v", id, err)
	}
}

// InsertCourt adds a court row.
func InsertCourt(t *testing.T, db *sql.DB, id, name string, capacity int) {
	t.Helper()
	if _, err := db.Exec(`INSERT INTO court (id, name, max_capacity, occupancy) VALUES (?, ?, ?, 0)`, id, name, capacity); err != nil {
		t.Fatalf("insert court %s: %v", id, err)
	}
}

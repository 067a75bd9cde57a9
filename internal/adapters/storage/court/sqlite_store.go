package court

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cutrackit/internal/adapters/storage"
	domain "cutrackit/internal/domain/court"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new court store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Court by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping sql.ErrNoRows
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Court, error) {
	var c domain.Court
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, max_capacity, occupancy FROM court WHERE id = ?", id,
	).Scan(&c.ID, &c.Name, &c.MaxCapacity, &c.Occupancy)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Court{}, fmt.Errorf("court not found: %w", err)
	}
	return c, err
}

// List returns all courts ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Court, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, max_capacity, occupancy FROM court ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Court
	for rows.Next() {
		var c domain.Court
		if err := rows.Scan(&c.ID, &c.Name, &c.MaxCapacity, &c.Occupancy); err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

// Save inserts a court or updates its name and capacity. The occupancy of an
// existing court is left alone.
// PRE: value has been validated
func (s *SQLiteStore) Save(ctx context.Context, value domain.Court) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO court (id, name, max_capacity, occupancy) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, max_capacity=excluded.max_capacity`,
		value.ID, value.Name, value.MaxCapacity, value.Occupancy)
	return err
}

// Count returns the number of courts.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM court").Scan(&n)
	return n, err
}

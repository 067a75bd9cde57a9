package match

import (
	"context"
	"time"

	"cutrackit/internal/adapters/storage"
	domain "cutrackit/internal/domain/match"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new match store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save inserts or replaces a match posting.
// PRE: m has been validated
func (s *SQLiteStore) Save(ctx context.Context, m domain.Match) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO match_post (id, team_id, match_type, scheduled_at, notes, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			match_type=excluded.match_type,
			scheduled_at=excluded.scheduled_at,
			notes=excluded.notes`,
		m.ID, m.TeamID, m.MatchType, storage.FormatTime(m.ScheduledAt), m.Notes, m.CreatedBy, storage.FormatTime(m.CreatedAt))
	return err
}

// ListUpcoming returns matches scheduled after now, soonest first. A
// non-positive limit returns all of them.
func (s *SQLiteStore) ListUpcoming(ctx context.Context, now time.Time, limit int) ([]Listing, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.team_id, m.match_type, m.scheduled_at, m.notes, m.created_by, m.created_at, t.name
		FROM match_post m
		JOIN team t ON t.id = m.team_id
		WHERE m.scheduled_at > ?
		ORDER BY m.scheduled_at, t.name
		LIMIT ?`, storage.FormatTime(now), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Listing
	for rows.Next() {
		var l Listing
		var scheduledAt, createdAt string
		if err := rows.Scan(&l.Match.ID, &l.Match.TeamID, &l.Match.MatchType, &scheduledAt,
			&l.Match.Notes, &l.Match.CreatedBy, &createdAt, &l.TeamName); err != nil {
			return nil, err
		}
		if l.Match.ScheduledAt, err = storage.ParseTime(scheduledAt); err != nil {
			return nil, err
		}
		if l.Match.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
			return nil, err
		}
		results = append(results, l)
	}
	return results, rows.Err()
}

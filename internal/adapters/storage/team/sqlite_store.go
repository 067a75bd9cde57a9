package team

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cutrackit/internal/adapters/storage"
	domain "cutrackit/internal/domain/team"
)

const teamColumns = "t.id, t.name, t.size, t.description, t.tags, t.coach_id, t.created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new team store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Create inserts a team and enrolls its coach as the first member.
// PRE: t has been validated, t.CoachID is an existing account
// POST: team and coach membership exist, or neither on error
func (s *SQLiteStore) Create(ctx context.Context, t domain.Team) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO team (id, name, size, description, tags, coach_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		t.ID, strings.TrimSpace(t.Name), t.Size, t.Description, strings.Join(t.Tags, ","), t.CoachID, storage.FormatTime(t.CreatedAt))
	if err != nil {
		if storage.IsUniqueViolation(err) && strings.Contains(err.Error(), "team.name") {
			return domain.ErrTeamNameTaken
		}
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO membership (team_id, user_id, joined_at) VALUES (?, ?, ?)",
		t.ID, t.CoachID, storage.FormatTime(t.CreatedAt)); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID retrieves a team.
// POST: Returns an error wrapping domain.ErrTeamNotFound when missing
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Team, error) {
	t, err := scanTeam(s.db.QueryRowContext(ctx, "SELECT "+teamColumns+" FROM team t WHERE t.id = ?", id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Team{}, fmt.Errorf("%w: %s", domain.ErrTeamNotFound, id)
	}
	return t, err
}

// List returns every team with its member count, oldest first.
func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+teamColumns+`, COUNT(m.user_id)
		FROM team t
		LEFT JOIN membership m ON m.team_id = t.id
		GROUP BY t.id
		ORDER BY t.created_at, t.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Summary
	for rows.Next() {
		var sum Summary
		var count int
		t, err := scanTeam(func(dest ...any) error {
			return rows.Scan(append(dest, &count)...)
		})
		if err != nil {
			return nil, err
		}
		sum.Team, sum.MemberCount = t, count
		results = append(results, sum)
	}
	return results, rows.Err()
}

// AddMember enrolls a user.
// POST: Returns domain.ErrAlreadyMember if the membership exists
func (s *SQLiteStore) AddMember(ctx context.Context, m domain.Membership) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO membership (team_id, user_id, joined_at) VALUES (?, ?, ?)",
		m.TeamID, m.UserID, storage.FormatTime(m.JoinedAt))
	if err != nil && storage.IsUniqueViolation(err) {
		return domain.ErrAlreadyMember
	}
	return err
}

// IsMember reports whether userID belongs to teamID.
func (s *SQLiteStore) IsMember(ctx context.Context, teamID, userID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM membership WHERE team_id = ? AND user_id = ?", teamID, userID).Scan(&n)
	return n > 0, err
}

// ListMembers returns the roster ordered by name.
func (s *SQLiteStore) ListMembers(ctx context.Context, teamID string) ([]Member, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.user_id, COALESCE(p.first_name, ''), COALESCE(p.last_name, ''), COALESCE(p.email, ''), m.joined_at
		FROM membership m
		LEFT JOIN profile p ON p.id = m.user_id
		WHERE m.team_id = ?
		ORDER BY p.first_name, p.last_name`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Member
	for rows.Next() {
		var m Member
		var joinedAt string
		if err := rows.Scan(&m.UserID, &m.FirstName, &m.LastName, &m.Email, &joinedAt); err != nil {
			return nil, err
		}
		if m.JoinedAt, err = storage.ParseTime(joinedAt); err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

// ListByUser returns the teams a user belongs to, by name.
func (s *SQLiteStore) ListByUser(ctx context.Context, userID string) ([]domain.Team, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+teamColumns+`
		FROM team t
		JOIN membership m ON m.team_id = t.id
		WHERE m.user_id = ?
		ORDER BY t.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Team
	for rows.Next() {
		t, err := scanTeam(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, rows.Err()
}

// scanTeam extracts a Team from a row scanner function.
func scanTeam(scan func(dest ...any) error) (domain.Team, error) {
	var t domain.Team
	var tags, createdAt string
	if err := scan(&t.ID, &t.Name, &t.Size, &t.Description, &tags, &t.CoachID, &createdAt); err != nil {
		return domain.Team{}, err
	}
	t.Tags = domain.ParseTags(tags)
	var err error
	t.CreatedAt, err = storage.ParseTime(createdAt)
	return t, err
}

package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cutrackit/internal/adapters/storage"
	"cutrackit/internal/adapters/storage/account"
	accountdomain "cutrackit/internal/domain/account"
	domain "cutrackit/internal/domain/profile"
)

// ErrQRTokenTaken is returned when another profile already holds the token.
var ErrQRTokenTaken = errors.New("qr token already in use")

const profileColumns = "id, first_name, last_name, email, qr_token, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new profile store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Profile by its ID, which is also the account ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Profile, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM profile WHERE id = ?", id)
	entity, err := scanProfile(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, fmt.Errorf("profile not found: %w", err)
	}
	return entity, err
}

// GetByQRToken retrieves the Profile a kiosk badge belongs to.
func (s *SQLiteStore) GetByQRToken(ctx context.Context, token string) (domain.Profile, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM profile WHERE qr_token = ?", strings.TrimSpace(token))
	entity, err := scanProfile(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, fmt.Errorf("profile not found: %w", err)
	}
	return entity, err
}

// ListByIDs returns the profiles for ids, ordered by name. Unknown IDs are skipped.
func (s *SQLiteStore) ListByIDs(ctx context.Context, ids []string) ([]domain.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf("SELECT %s FROM profile WHERE id IN (%s) ORDER BY first_name, last_name",
		profileColumns, strings.Join(placeholders, ", "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Profile
	for rows.Next() {
		entity, err := scanProfile(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// SaveWithAccount upserts the account and its profile in one transaction so
// the two emails never diverge.
// PRE: p.ID == a.ID, both validated
// POST: both rows persisted, or neither
func (s *SQLiteStore) SaveWithAccount(ctx context.Context, p domain.Profile, a accountdomain.Account) error {
	if p.ID != a.ID {
		return fmt.Errorf("profile %s does not belong to account %s", p.ID, a.ID)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := account.UpsertTx(ctx, tx, a); err != nil {
		return err
	}

	query := `INSERT INTO profile (` + profileColumns + `) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			first_name=excluded.first_name,
			last_name=excluded.last_name,
			email=excluded.email,
			qr_token=excluded.qr_token`
	_, err = tx.ExecContext(ctx, query,
		p.ID,
		strings.TrimSpace(p.FirstName),
		strings.TrimSpace(p.LastName),
		strings.TrimSpace(p.Email),
		p.QRToken,
		storage.FormatTime(p.CreatedAt),
	)
	if err != nil && storage.IsUniqueViolation(err) && strings.Contains(err.Error(), "profile.qr_token") {
		return ErrQRTokenTaken
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}

// scanProfile extracts a Profile from a row scanner function.
func scanProfile(scan func(dest ...any) error) (domain.Profile, error) {
	var entity domain.Profile
	var createdAt string
	err := scan(
		&entity.ID,
		&entity.FirstName,
		&entity.LastName,
		&entity.Email,
		&entity.QRToken,
		&createdAt,
	)
	if err != nil {
		return domain.Profile{}, err
	}
	entity.CreatedAt, err = storage.ParseTime(createdAt)
	return entity, err
}

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cutrackit/internal/adapters/storage"
	courtdomain "cutrackit/internal/domain/court"
	domain "cutrackit/internal/domain/session"
)

const sessionColumns = "id, user_id, court_id, opened_at, closed_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new session store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Toggle checks the user out of their open session, or checks them in to
// params.CourtID when they have none. The session write and the occupancy
// update commit together.
// PRE: params.UserID, params.NewSessionID non-empty; params.Now set
// POST: the user has exactly one open session (CheckedIn) or none (CheckedOut)
// INVARIANT: court.occupancy equals its open session count
func (s *SQLiteStore) Toggle(ctx context.Context, params ToggleParams) (ToggleResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ToggleResult{}, mapToggleErr(err)
	}
	defer tx.Rollback()

	open, err := scanSession(tx.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM court_session WHERE user_id = ? AND closed_at IS NULL", params.UserID).Scan)
	switch {
	case err == nil && params.StaleAfter > 0 && open.OpenedAt.Before(params.Now.Add(-params.StaleAfter)):
		if err := s.expire(ctx, tx, &open, params.Now); err != nil {
			return ToggleResult{}, err
		}
		res, err := s.checkIn(ctx, tx, params)
		if err != nil {
			return ToggleResult{}, err
		}
		res.Expired = &open
		return res, nil
	case err == nil:
		return s.checkOut(ctx, tx, open, params.Now)
	case errors.Is(err, sql.ErrNoRows):
		return s.checkIn(ctx, tx, params)
	default:
		return ToggleResult{}, mapToggleErr(err)
	}
}

// expire closes a stale session inside tx without committing, the same way
// ExpireOlderThan does.
func (s *SQLiteStore) expire(ctx context.Context, tx *sql.Tx, open *domain.Session, now time.Time) error {
	if err := open.Close(now); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		"UPDATE court_session SET closed_at = ? WHERE id = ? AND closed_at IS NULL",
		storage.FormatTime(open.ClosedAt), open.ID)
	if err != nil {
		return mapToggleErr(err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return domain.ErrToggleConflict
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE court SET occupancy = MAX(occupancy - 1, 0) WHERE id = ?", open.CourtID)
	return mapToggleErr(err)
}

func (s *SQLiteStore) checkOut(ctx context.Context, tx *sql.Tx, open domain.Session, now time.Time) (ToggleResult, error) {
	if now.Before(open.OpenedAt) {
		now = open.OpenedAt
	}
	if err := open.Close(now); err != nil {
		return ToggleResult{}, err
	}
	res, err := tx.ExecContext(ctx,
		"UPDATE court_session SET closed_at = ? WHERE id = ? AND closed_at IS NULL",
		storage.FormatTime(open.ClosedAt), open.ID)
	if err != nil {
		return ToggleResult{}, mapToggleErr(err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return ToggleResult{}, domain.ErrToggleConflict
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE court SET occupancy = MAX(occupancy - 1, 0) WHERE id = ?", open.CourtID); err != nil {
		return ToggleResult{}, mapToggleErr(err)
	}
	c, err := getCourt(ctx, tx, open.CourtID)
	if err != nil {
		return ToggleResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return ToggleResult{}, mapToggleErr(err)
	}
	return ToggleResult{Outcome: domain.CheckedOut, Session: open, Court: c}, nil
}

func (s *SQLiteStore) checkIn(ctx context.Context, tx *sql.Tx, params ToggleParams) (ToggleResult, error) {
	c, err := getCourt(ctx, tx, params.CourtID)
	if err != nil {
		return ToggleResult{}, err
	}
	if !c.HasRoom() {
		return ToggleResult{}, domain.ErrCourtFull
	}

	sess := domain.Session{
		ID:       params.NewSessionID,
		UserID:   params.UserID,
		CourtID:  c.ID,
		OpenedAt: params.Now,
	}
	if err := sess.Validate(); err != nil {
		return ToggleResult{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO court_session (id, user_id, court_id, opened_at) VALUES (?, ?, ?, ?)",
		sess.ID, sess.UserID, sess.CourtID, storage.FormatTime(sess.OpenedAt)); err != nil {
		return ToggleResult{}, mapToggleErr(err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE court SET occupancy = occupancy + 1 WHERE id = ?", c.ID); err != nil {
		return ToggleResult{}, mapToggleErr(err)
	}
	c.Occupancy++
	if err := tx.Commit(); err != nil {
		return ToggleResult{}, mapToggleErr(err)
	}
	return ToggleResult{Outcome: domain.CheckedIn, Session: sess, Court: c}, nil
}

func getCourt(ctx context.Context, tx *sql.Tx, id string) (courtdomain.Court, error) {
	var c courtdomain.Court
	err := tx.QueryRowContext(ctx,
		"SELECT id, name, max_capacity, occupancy FROM court WHERE id = ?", id,
	).Scan(&c.ID, &c.Name, &c.MaxCapacity, &c.Occupancy)
	if errors.Is(err, sql.ErrNoRows) {
		return courtdomain.Court{}, fmt.Errorf("%w: %s", domain.ErrCourtNotFound, id)
	}
	if err != nil {
		return courtdomain.Court{}, mapToggleErr(err)
	}
	return c, nil
}

// mapToggleErr turns lost races into ErrToggleConflict. A unique violation
// means another transaction opened a session for this user first; a busy
// error means the write lock could not be taken in time.
func mapToggleErr(err error) error {
	if storage.IsUniqueViolation(err) || storage.IsBusy(err) {
		return fmt.Errorf("%w: %v", domain.ErrToggleConflict, err)
	}
	return err
}

// GetOpenByUser returns the user's open session.
// POST: Returns an error wrapping sql.ErrNoRows when the user is not on a court
func (s *SQLiteStore) GetOpenByUser(ctx context.Context, userID string) (domain.Session, error) {
	sess, err := scanSession(s.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM court_session WHERE user_id = ? AND closed_at IS NULL", userID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, fmt.Errorf("open session not found: %w", err)
	}
	return sess, err
}

// ListOpenByCourt returns the players currently on a court, earliest first.
func (s *SQLiteStore) ListOpenByCourt(ctx context.Context, courtID string) ([]OpenPlayer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.user_id, COALESCE(p.first_name, ''), COALESCE(p.last_name, ''), s.opened_at
		FROM court_session s
		LEFT JOIN profile p ON p.id = s.user_id
		WHERE s.court_id = ? AND s.closed_at IS NULL
		ORDER BY s.opened_at`, courtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []OpenPlayer
	for rows.Next() {
		var p OpenPlayer
		var openedAt string
		if err := rows.Scan(&p.SessionID, &p.UserID, &p.FirstName, &p.LastName, &openedAt); err != nil {
			return nil, err
		}
		if p.OpenedAt, err = storage.ParseTime(openedAt); err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

// CountByUser returns how many sessions the user has ever opened.
func (s *SQLiteStore) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM court_session WHERE user_id = ?", userID).Scan(&n)
	return n, err
}

// ListByUser returns the user's sessions, newest first.
func (s *SQLiteStore) ListByUser(ctx context.Context, userID string) ([]domain.Session, error) {
	return s.list(ctx, "SELECT "+sessionColumns+" FROM court_session WHERE user_id = ? ORDER BY opened_at DESC", userID)
}

// ListSince returns sessions opened at or after since. A zero since returns all.
func (s *SQLiteStore) ListSince(ctx context.Context, since time.Time) ([]domain.Session, error) {
	if since.IsZero() {
		return s.list(ctx, "SELECT "+sessionColumns+" FROM court_session ORDER BY opened_at")
	}
	return s.list(ctx, "SELECT "+sessionColumns+" FROM court_session WHERE opened_at >= ? ORDER BY opened_at",
		storage.FormatTime(since))
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...any) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Session
	for rows.Next() {
		sess, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, sess)
	}
	return results, rows.Err()
}

// GamesByUser returns every player with their session count, including
// players who never played.
func (s *SQLiteStore) GamesByUser(ctx context.Context) ([]PlayerGames, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.first_name, p.last_name, COUNT(s.id)
		FROM profile p
		LEFT JOIN court_session s ON s.user_id = p.id
		GROUP BY p.id, p.first_name, p.last_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []PlayerGames
	for rows.Next() {
		var g PlayerGames
		if err := rows.Scan(&g.UserID, &g.FirstName, &g.LastName, &g.Games); err != nil {
			return nil, err
		}
		results = append(results, g)
	}
	return results, rows.Err()
}

// ExpireOlderThan closes sessions opened before cutoff and then recomputes
// every court's occupancy from its open sessions.
// POST: no open session has opened_at < cutoff; occupancy matches open rows
func (s *SQLiteStore) ExpireOlderThan(ctx context.Context, cutoff, now time.Time) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE court_session SET closed_at = ? WHERE closed_at IS NULL AND opened_at < ?",
		storage.FormatTime(now), storage.FormatTime(cutoff))
	if err != nil {
		return 0, err
	}
	closed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE court SET occupancy = (
			SELECT COUNT(*) FROM court_session s
			WHERE s.court_id = court.id AND s.closed_at IS NULL
		)`); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(closed), nil
}

// CountOpen returns the number of open sessions across all courts.
func (s *SQLiteStore) CountOpen(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM court_session WHERE closed_at IS NULL").Scan(&n)
	return n, err
}

// scanSession extracts a Session from a row scanner function.
func scanSession(scan func(dest ...any) error) (domain.Session, error) {
	var sess domain.Session
	var openedAt string
	var closedAt sql.NullString
	if err := scan(&sess.ID, &sess.UserID, &sess.CourtID, &openedAt, &closedAt); err != nil {
		return domain.Session{}, err
	}
	var err error
	if sess.OpenedAt, err = storage.ParseTime(openedAt); err != nil {
		return domain.Session{}, err
	}
	if sess.ClosedAt, err = storage.ParseNullTime(closedAt); err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}

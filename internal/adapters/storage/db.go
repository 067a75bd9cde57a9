package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// OpenSQLite opens a SQLite database with the pragmas the stores rely on.
// Transactions begin IMMEDIATE so concurrent toggles serialize on the write
// lock instead of failing on lock upgrade.
// PRE: path is a file path or ":memory:"
// POST: Returns a pinged connection pool
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

type migration struct {
	version int
	name    string
	stmts   []string
}

// migrations is the append-only schema history. Never edit an applied entry;
// add a new one.
var migrations = []migration{
	{
		version: 1,
		name:    "baseline",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS account (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL UNIQUE COLLATE NOCASE,
				password_hash TEXT NOT NULL DEFAULT '',
				role TEXT NOT NULL,
				created_at TEXT NOT NULL,
				failed_logins INTEGER NOT NULL DEFAULT 0,
				locked_until TEXT
			)`,
			`CREATE TABLE IF NOT EXISTS profile (
				id TEXT PRIMARY KEY REFERENCES account(id),
				first_name TEXT NOT NULL,
				last_name TEXT NOT NULL DEFAULT '',
				email TEXT NOT NULL,
				qr_token TEXT NOT NULL UNIQUE,
				created_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS court (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL UNIQUE,
				max_capacity INTEGER NOT NULL DEFAULT 0 CHECK (max_capacity >= 0),
				occupancy INTEGER NOT NULL DEFAULT 0 CHECK (occupancy >= 0)
			)`,
			`CREATE TABLE IF NOT EXISTS court_session (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES account(id),
				court_id TEXT NOT NULL REFERENCES court(id),
				opened_at TEXT NOT NULL,
				closed_at TEXT
			)`,
			// At most one open session per user, across all courts.
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_court_session_one_open
				ON court_session(user_id) WHERE closed_at IS NULL`,
			`CREATE INDEX IF NOT EXISTS idx_court_session_open_court
				ON court_session(court_id) WHERE closed_at IS NULL`,
			`CREATE INDEX IF NOT EXISTS idx_court_session_opened_at ON court_session(opened_at)`,
		},
	},
	{
		version: 2,
		name:    "teams",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS team (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL UNIQUE COLLATE NOCASE,
				size TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				tags TEXT NOT NULL DEFAULT '',
				coach_id TEXT NOT NULL REFERENCES account(id),
				created_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS membership (
				team_id TEXT NOT NULL REFERENCES team(id),
				user_id TEXT NOT NULL REFERENCES account(id),
				joined_at TEXT NOT NULL,
				PRIMARY KEY (team_id, user_id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_membership_user ON membership(user_id)`,
		},
	},
	{
		version: 3,
		name:    "match_board",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS match_post (
				id TEXT PRIMARY KEY,
				team_id TEXT NOT NULL REFERENCES team(id),
				match_type TEXT NOT NULL,
				scheduled_at TEXT NOT NULL,
				notes TEXT NOT NULL DEFAULT '',
				created_by TEXT NOT NULL REFERENCES account(id),
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_match_post_scheduled_at ON match_post(scheduled_at)`,
		},
	},
}

// LatestSchemaVersion returns the version the migration chain ends at.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the applied schema version, 0 for an untracked database.
func SchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'`).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("check schema_version table: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}
	var version sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(version.Int64), nil
}

// MigrateDB applies every pending migration, each in its own transaction.
// A file-backed database that already holds data is copied to
// "<dbPath>.pre-v<N>.bak" before the first pending migration runs.
// PRE: db is a valid database connection
// POST: SchemaVersion(db) == LatestSchemaVersion()
func MigrateDB(db *sql.DB, dbPath string) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	if current >= LatestSchemaVersion() {
		return nil
	}

	if current > 0 && dbPath != "" && !strings.HasPrefix(dbPath, ":memory:") {
		backup := fmt.Sprintf("%s.pre-v%d.bak", dbPath, LatestSchemaVersion())
		if _, err := db.Exec(`VACUUM INTO ?`, backup); err != nil {
			return fmt.Errorf("backup before migration: %w", err)
		}
		slog.Info("schema_backup", "path", backup, "from_version", current)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return err
		}
		slog.Info("schema_migrated", "version", m.version, "name", m.name)
	}
	return nil
}

func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migration %d: begin: %w", m.version, err)
	}
	defer tx.Rollback()

	for _, stmt := range m.stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO schema_version (version, name, applied_at) VALUES (?, ?, ?)`,
		m.version, m.name, FormatTime(time.Now())); err != nil {
		return fmt.Errorf("migration %d: record version: %w", m.version, err)
	}
	return tx.Commit()
}

package store

import (
	"database/sql"
	"fmt"
)

// A migration is one ordered, idempotent schema change. Versions are recorded
// in the schema_version table so re-running the runner on an already-migrated
// database is a no-op.
type migration struct {
	version int
	name    string
	apply   func(tx *sql.Tx) error
}

var migrations = []migration{
	{1, "base schema", migrateBaseSchema},
	{2, "category columns", migrateCategoryColumns},
	{3, "priority and archived columns", migratePriorityColumns},
	{4, "access tracking columns", migrateAccessColumns},
	{5, "session workspace dimension", migrateSessionWorkspace},
}

// migrate applies all pending migrations in order. A failed migration is
// logged and skipped without recording its version; later migrations still
// run, since each one is independent and re-runnable.
func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(
		`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	applied, err := s.appliedVersions()
	if err != nil {
		return fmt.Errorf("read schema_version: %w", err)
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		if err := s.applyMigration(m); err != nil {
			s.log.Warn("migration failed", "version", m.version, "name", m.name, "error", err)
			continue
		}
		s.log.Debug("migration applied", "version", m.version, "name", m.name)
	}
	return nil
}

func (s *SQLiteStore) appliedVersions() (map[int]bool, error) {
	rows, err := s.db.Query(`SELECT version FROM schema_version`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func (s *SQLiteStore) applyMigration(m migration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := m.apply(tx); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, m.version); err != nil {
		return err
	}
	return tx.Commit()
}

func migrateBaseSchema(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE IF NOT EXISTS decisions (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		project     TEXT NOT NULL,
		date        TEXT NOT NULL,
		decision    TEXT NOT NULL,
		rationale   TEXT,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_decisions_project ON decisions(project);

	CREATE TABLE IF NOT EXISTS errors (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		project       TEXT NOT NULL,
		error_pattern TEXT NOT NULL,
		solution      TEXT NOT NULL,
		context       TEXT,
		created_at    TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_errors_project ON errors(project);

	CREATE TABLE IF NOT EXISTS context (
		project    TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (project, key)
	);

	CREATE TABLE IF NOT EXISTS learnings (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		project    TEXT,
		category   TEXT NOT NULL,
		content    TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_learnings_project ON learnings(project);

	CREATE TABLE IF NOT EXISTS sessions (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		project    TEXT NOT NULL UNIQUE,
		task       TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'in-progress',
		notes      TEXT,
		updated_at TEXT NOT NULL
	);
	`)
	return err
}

func migrateCategoryColumns(tx *sql.Tx) error {
	for _, table := range []string{"decisions", "errors"} {
		if err := addColumn(tx, table, "category", "TEXT"); err != nil {
			return err
		}
	}
	return nil
}

func migratePriorityColumns(tx *sql.Tx) error {
	for _, table := range []string{"decisions", "errors", "learnings"} {
		if err := addColumn(tx, table, "priority", "INTEGER NOT NULL DEFAULT 0"); err != nil {
			return err
		}
		if err := addColumn(tx, table, "archived", "INTEGER NOT NULL DEFAULT 0"); err != nil {
			return err
		}
	}
	return nil
}

func migrateAccessColumns(tx *sql.Tx) error {
	for _, table := range []string{"decisions", "errors", "learnings"} {
		if err := addColumn(tx, table, "access_count", "INTEGER NOT NULL DEFAULT 0"); err != nil {
			return err
		}
		if err := addColumn(tx, table, "last_accessed", "TEXT"); err != nil {
			return err
		}
	}
	return nil
}

// migrateSessionWorkspace widens the sessions uniqueness key from (project)
// to (project, workspace). SQLite cannot alter a unique constraint in place,
// so the table is rebuilt: existing rows land in the default workspace ''.
func migrateSessionWorkspace(tx *sql.Tx) error {
	exists, err := columnExists(tx, "sessions", "workspace")
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return rebuildTable(tx, "sessions",
		`CREATE TABLE sessions__new (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			project    TEXT NOT NULL,
			workspace  TEXT NOT NULL DEFAULT '',
			task       TEXT NOT NULL,
			status     TEXT NOT NULL DEFAULT 'in-progress',
			notes      TEXT,
			updated_at TEXT NOT NULL,
			UNIQUE (project, workspace)
		)`,
		`INSERT INTO sessions__new (id, project, workspace, task, status, notes, updated_at)
		 SELECT id, project, '', task, status, notes, updated_at FROM sessions`)
}

// addColumn adds a column if it does not already exist, making additive
// migrations safe to re-run in any order.
func addColumn(tx *sql.Tx, table, column, decl string) error {
	exists, err := columnExists(tx, table, column)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = tx.Exec(fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, column, decl))
	return err
}

func columnExists(tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.Query(fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// rebuildTable is the reusable "shadow table, copy, swap" primitive for
// constraint changes that SQLite cannot express as an ALTER. The shadow
// table must be named <table>__new.
func rebuildTable(tx *sql.Tx, table, createShadow, copyRows string) error {
	if _, err := tx.Exec(createShadow); err != nil {
		return fmt.Errorf("create shadow table: %w", err)
	}
	if _, err := tx.Exec(copyRows); err != nil {
		return fmt.Errorf("copy rows: %w", err)
	}
	if _, err := tx.Exec(fmt.Sprintf(`DROP TABLE %s`, table)); err != nil {
		return fmt.Errorf("drop old table: %w", err)
	}
	if _, err := tx.Exec(fmt.Sprintf(`ALTER TABLE %s__new RENAME TO %s`, table, table)); err != nil {
		return fmt.Errorf("rename shadow table: %w", err)
	}
	return nil
}

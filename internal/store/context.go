package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rcliao/membank/internal/model"
)

// UpsertContext inserts or overwrites the value for (project, key) and
// refreshes its timestamp. A natural-key collision is the intended merge
// path, not an error.
func (s *SQLiteStore) UpsertContext(ctx context.Context, project, key, value string) (*model.ContextEntry, error) {
	if project == "" {
		return nil, invalidf("project is required")
	}
	if key == "" {
		return nil, invalidf("key is required")
	}

	now := nowUTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO context (project, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (project, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		project, key, value, fmtTime(now))
	if err != nil {
		return nil, fmt.Errorf("upsert context: %w", err)
	}

	return &model.ContextEntry{Project: project, Key: key, Value: value, UpdatedAt: now}, nil
}

// ContextEntry returns the entry for (project, key), or nil when absent.
func (s *SQLiteStore) ContextEntry(ctx context.Context, project, key string) (*model.ContextEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT project, key, value, updated_at FROM context WHERE project = ? AND key = ?`,
		project, key)

	var e model.ContextEntry
	var updatedAt string
	if err := row.Scan(&e.Project, &e.Key, &e.Value, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("query context entry: %w", err)
	}
	e.UpdatedAt = parseTime(updatedAt)
	return &e, nil
}

// ContextEntries lists all entries for a project ordered by key. An optional
// substring filter matches key or value.
func (s *SQLiteStore) ContextEntries(ctx context.Context, project, search string) ([]model.ContextEntry, error) {
	query := `SELECT project, key, value, updated_at FROM context WHERE project = ?`
	args := []interface{}{project}
	if search != "" {
		query += ` AND (key LIKE ? OR value LIKE ?)`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY key`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query context entries: %w", err)
	}
	defer rows.Close()

	var out []model.ContextEntry
	for rows.Next() {
		var e model.ContextEntry
		var updatedAt string
		if err := rows.Scan(&e.Project, &e.Key, &e.Value, &updatedAt); err != nil {
			return nil, err
		}
		e.UpdatedAt = parseTime(updatedAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteContext removes the entry for (project, key) and reports whether a
// row was removed. Deleting a missing key is not an error.
func (s *SQLiteStore) DeleteContext(ctx context.Context, project, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM context WHERE project = ? AND key = ?`, project, key)
	if err != nil {
		return false, fmt.Errorf("delete context: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

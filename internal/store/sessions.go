package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rcliao/membank/internal/model"
)

// UpsertSession inserts or overwrites the session for (project, workspace)
// and refreshes its timestamp. At most one session exists per pair.
func (s *SQLiteStore) UpsertSession(ctx context.Context, p SessionParams) (*model.Session, error) {
	if p.Project == "" {
		return nil, invalidf("project is required")
	}
	if p.Task == "" {
		return nil, invalidf("task is required")
	}
	status := p.Status
	if status == "" {
		status = model.DefaultSessionStatus
	}

	now := nowUTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (project, workspace, task, status, notes, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (project, workspace) DO UPDATE SET
		   task = excluded.task, status = excluded.status,
		   notes = excluded.notes, updated_at = excluded.updated_at`,
		p.Project, p.Workspace, p.Task, status, nullStr(p.Notes), fmtTime(now))
	if err != nil {
		return nil, fmt.Errorf("upsert session: %w", err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT id FROM sessions WHERE project = ? AND workspace = ?`,
		p.Project, p.Workspace).Scan(&id); err != nil {
		return nil, fmt.Errorf("read session id: %w", err)
	}

	return &model.Session{
		ID:        id,
		Project:   p.Project,
		Workspace: p.Workspace,
		Task:      p.Task,
		Status:    status,
		Notes:     p.Notes,
		UpdatedAt: now,
	}, nil
}

// Sessions lists all sessions for a project across workspaces, most recently
// updated first.
func (s *SQLiteStore) Sessions(ctx context.Context, project string) ([]model.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project, workspace, task, status, notes, updated_at
		 FROM sessions WHERE project = ? ORDER BY updated_at DESC, id DESC`, project)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []model.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// SessionByWorkspace returns the session for (project, workspace), or nil
// when absent.
func (s *SQLiteStore) SessionByWorkspace(ctx context.Context, project, workspace string) (*model.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, project, workspace, task, status, notes, updated_at
		 FROM sessions WHERE project = ? AND workspace = ?`, project, workspace)

	sess, err := scanSession(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("query session: %w", err)
	}
	return &sess, nil
}

// ClearSession removes the session for (project, workspace) and reports
// whether a row was removed.
func (s *SQLiteStore) ClearSession(ctx context.Context, project, workspace string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE project = ? AND workspace = ?`, project, workspace)
	if err != nil {
		return false, fmt.Errorf("clear session: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func scanSession(row scanner) (model.Session, error) {
	var (
		sess      model.Session
		notes     sql.NullString
		updatedAt string
	)
	err := row.Scan(&sess.ID, &sess.Project, &sess.Workspace, &sess.Task,
		&sess.Status, &notes, &updatedAt)
	if err != nil {
		return sess, err
	}
	sess.Notes = strOr(notes)
	sess.UpdatedAt = parseTime(updatedAt)
	return sess, nil
}

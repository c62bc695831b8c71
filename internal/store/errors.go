package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rcliao/membank/internal/model"
)

const errorCols = `id, project, error_pattern, solution, context, category,
	priority, archived, access_count, last_accessed, created_at`

// InsertError stores a new error solution and returns it with its assigned id.
func (s *SQLiteStore) InsertError(ctx context.Context, p ErrorParams) (*model.ErrorSolution, error) {
	if p.Project == "" {
		return nil, invalidf("project is required")
	}
	if p.ErrorPattern == "" || p.Solution == "" {
		return nil, invalidf("error_pattern and solution are required")
	}
	if !model.ValidPriority(p.Priority) {
		return nil, invalidf("invalid priority %d (expected 0-2)", p.Priority)
	}

	now := nowUTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO errors (project, error_pattern, solution, context, category, priority, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Project, p.ErrorPattern, p.Solution, nullStr(p.Context), nullStr(p.Category), p.Priority, fmtTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert error solution: %w", err)
	}
	id, _ := res.LastInsertId()

	return &model.ErrorSolution{
		ID:           id,
		Project:      p.Project,
		ErrorPattern: p.ErrorPattern,
		Solution:     p.Solution,
		Context:      p.Context,
		Category:     p.Category,
		Priority:     p.Priority,
		CreatedAt:    now,
	}, nil
}

// Errors lists error solutions for a project, ordered by priority descending
// then created_at descending. The substring filter matches error_pattern.
func (s *SQLiteStore) Errors(ctx context.Context, p QueryParams) ([]model.ErrorSolution, error) {
	where := []string{"project = ?"}
	args := []interface{}{p.Project}

	if !p.IncludeArchived {
		where = append(where, "archived = 0")
	}
	if p.Category != "" {
		where = append(where, "category = ?")
		args = append(args, p.Category)
	} else if p.Search != "" {
		where = append(where, "error_pattern LIKE ?")
		args = append(args, "%"+p.Search+"%")
	}

	query := fmt.Sprintf(`SELECT %s FROM errors WHERE %s
		ORDER BY priority DESC, created_at DESC, id DESC LIMIT ?`,
		errorCols, strings.Join(where, " AND "))
	args = append(args, clampLimit(p.Limit, 10))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query errors: %w", err)
	}
	defer rows.Close()

	var out []model.ErrorSolution
	for rows.Next() {
		e, err := scanError(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanError(row scanner) (model.ErrorSolution, error) {
	var (
		e                              model.ErrorSolution
		errCtx, category, lastAccessed sql.NullString
		archived                       int
		createdAt                      string
	)
	err := row.Scan(&e.ID, &e.Project, &e.ErrorPattern, &e.Solution, &errCtx, &category,
		&e.Priority, &archived, &e.AccessCount, &lastAccessed, &createdAt)
	if err != nil {
		return e, err
	}
	e.Context = strOr(errCtx)
	e.Category = strOr(category)
	e.Archived = archived != 0
	e.LastAccessed = parseTimePtr(lastAccessed)
	e.CreatedAt = parseTime(createdAt)
	return e, nil
}

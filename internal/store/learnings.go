package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rcliao/membank/internal/model"
)

const learningCols = `id, project, category, content, priority, archived,
	access_count, last_accessed, created_at`

// InsertLearning stores a new learning. An empty Project stores it with a
// null project, making it global.
func (s *SQLiteStore) InsertLearning(ctx context.Context, p LearningParams) (*model.Learning, error) {
	if p.Category == "" || p.Content == "" {
		return nil, invalidf("category and content are required")
	}
	if !model.ValidPriority(p.Priority) {
		return nil, invalidf("invalid priority %d (expected 0-2)", p.Priority)
	}

	now := nowUTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO learnings (project, category, content, priority, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		nullStr(p.Project), p.Category, p.Content, p.Priority, fmtTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert learning: %w", err)
	}
	id, _ := res.LastInsertId()

	return &model.Learning{
		ID:        id,
		Project:   p.Project,
		Category:  p.Category,
		Content:   p.Content,
		Priority:  p.Priority,
		CreatedAt: now,
	}, nil
}

// Learnings lists learnings ordered by priority descending then created_at
// descending. With p.IncludeGlobal, null-project rows are unioned in beside
// the project-scoped ones.
func (s *SQLiteStore) Learnings(ctx context.Context, p QueryParams) ([]model.Learning, error) {
	var where []string
	var args []interface{}

	if p.IncludeGlobal {
		where = append(where, "(project = ? OR project IS NULL)")
		args = append(args, p.Project)
	} else if p.Project != "" {
		where = append(where, "project = ?")
		args = append(args, p.Project)
	} else {
		where = append(where, "project IS NULL")
	}

	if !p.IncludeArchived {
		where = append(where, "archived = 0")
	}
	if p.Category != "" {
		where = append(where, "category = ?")
		args = append(args, p.Category)
	} else if p.Search != "" {
		where = append(where, "content LIKE ?")
		args = append(args, "%"+p.Search+"%")
	}

	query := fmt.Sprintf(`SELECT %s FROM learnings WHERE %s
		ORDER BY priority DESC, created_at DESC, id DESC LIMIT ?`,
		learningCols, strings.Join(where, " AND "))
	args = append(args, clampLimit(p.Limit, 10))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query learnings: %w", err)
	}
	defer rows.Close()

	var out []model.Learning
	for rows.Next() {
		l, err := scanLearning(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanLearning(row scanner) (model.Learning, error) {
	var (
		l                     model.Learning
		project, lastAccessed sql.NullString
		archived              int
		createdAt             string
	)
	err := row.Scan(&l.ID, &project, &l.Category, &l.Content,
		&l.Priority, &archived, &l.AccessCount, &lastAccessed, &createdAt)
	if err != nil {
		return l, err
	}
	l.Project = strOr(project)
	l.Archived = archived != 0
	l.LastAccessed = parseTimePtr(lastAccessed)
	l.CreatedAt = parseTime(createdAt)
	return l, nil
}

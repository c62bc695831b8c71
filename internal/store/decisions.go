package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rcliao/membank/internal/model"
)

const decisionCols = `id, project, date, decision, rationale, category,
	priority, archived, access_count, last_accessed, created_at`

// InsertDecision stores a new decision and returns it with its assigned id.
func (s *SQLiteStore) InsertDecision(ctx context.Context, p DecisionParams) (*model.Decision, error) {
	if p.Project == "" {
		return nil, invalidf("project is required")
	}
	if p.Decision == "" {
		return nil, invalidf("decision is required")
	}
	if !model.ValidPriority(p.Priority) {
		return nil, invalidf("invalid priority %d (expected 0-2)", p.Priority)
	}

	now := nowUTC()
	date := p.Date
	if date == "" {
		date = now.Format("2006-01-02")
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO decisions (project, date, decision, rationale, category, priority, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Project, date, p.Decision, nullStr(p.Rationale), nullStr(p.Category), p.Priority, fmtTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert decision: %w", err)
	}
	id, _ := res.LastInsertId()

	return &model.Decision{
		ID:        id,
		Project:   p.Project,
		Date:      date,
		Decision:  p.Decision,
		Rationale: p.Rationale,
		Category:  p.Category,
		Priority:  p.Priority,
		CreatedAt: now,
	}, nil
}

// Decisions lists decisions for a project, ordered by priority descending
// then date descending. Category and substring filters come from p; archived
// rows are excluded unless p.IncludeArchived.
func (s *SQLiteStore) Decisions(ctx context.Context, p QueryParams) ([]model.Decision, error) {
	where := []string{"project = ?"}
	args := []interface{}{p.Project}

	if !p.IncludeArchived {
		where = append(where, "archived = 0")
	}
	if p.Category != "" {
		where = append(where, "category = ?")
		args = append(args, p.Category)
	} else if p.Search != "" {
		where = append(where, "(decision LIKE ? OR rationale LIKE ?)")
		pattern := "%" + p.Search + "%"
		args = append(args, pattern, pattern)
	}

	query := fmt.Sprintf(`SELECT %s FROM decisions WHERE %s
		ORDER BY priority DESC, date DESC, id DESC LIMIT ?`,
		decisionCols, strings.Join(where, " AND "))
	args = append(args, clampLimit(p.Limit, 10))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var out []model.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanDecision(row scanner) (model.Decision, error) {
	var (
		d                                 model.Decision
		rationale, category, lastAccessed sql.NullString
		archived                          int
		createdAt                         string
	)
	err := row.Scan(&d.ID, &d.Project, &d.Date, &d.Decision, &rationale, &category,
		&d.Priority, &archived, &d.AccessCount, &lastAccessed, &createdAt)
	if err != nil {
		return d, err
	}
	d.Rationale = strOr(rationale)
	d.Category = strOr(category)
	d.Archived = archived != 0
	d.LastAccessed = parseTimePtr(lastAccessed)
	d.CreatedAt = parseTime(createdAt)
	return d, nil
}

package store

import (
	"context"
	"fmt"
	"strings"
)

var archivableTables = []string{"decisions", "errors", "learnings"}

// Prune permanently deletes archived rows older than the age cutoff, scoped
// to one project unless project is empty. Returns the number of rows removed.
func (s *SQLiteStore) Prune(ctx context.Context, project string, days int) (int64, error) {
	return s.Cleanup(ctx, CleanupParams{Project: project, Days: days, ArchivedOnly: true})
}

// Cleanup generalizes pruning: same age cutoff, optional kind restriction,
// and an ArchivedOnly switch. With ArchivedOnly false it deletes matching
// live rows too — callers are responsible for warning about that.
func (s *SQLiteStore) Cleanup(ctx context.Context, p CleanupParams) (int64, error) {
	if p.Days < 0 {
		return 0, invalidf("days must not be negative")
	}
	tables := archivableTables
	if p.Kind != "" {
		if !p.Kind.Archivable() {
			return 0, invalidf("kind %q cannot be cleaned up", p.Kind)
		}
		tables = []string{tableFor(p.Kind)}
	}

	cutoff := fmtTime(nowUTC().AddDate(0, 0, -p.Days))

	var total int64
	for _, table := range tables {
		where := []string{"created_at < ?"}
		args := []interface{}{cutoff}
		if p.ArchivedOnly {
			where = append(where, "archived = 1")
		}
		if p.Project != "" {
			where = append(where, "project = ?")
			args = append(args, p.Project)
		}
		res, err := s.db.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE %s`, table, strings.Join(where, " AND ")), args...)
		if err != nil {
			return total, fmt.Errorf("cleanup %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

// Projects returns the distinct project names present across all tables.
func (s *SQLiteStore) Projects(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT project FROM (
			SELECT project FROM decisions
			UNION SELECT project FROM errors
			UNION SELECT project FROM context
			UNION SELECT project FROM learnings WHERE project IS NOT NULL
			UNION SELECT project FROM sessions
		) ORDER BY project`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Counts holds live (non-archived) row counts per kind for one project.
type Counts struct {
	Decisions int `json:"decisions"`
	Errors    int `json:"errors"`
	Learnings int `json:"learnings"`
	Context   int `json:"context"`
	Sessions  int `json:"sessions"`
}

// LiveCounts returns per-kind counts for a project with archived rows
// excluded. Global learnings are not counted against any project.
func (s *SQLiteStore) LiveCounts(ctx context.Context, project string) (Counts, error) {
	var c Counts
	queries := []struct {
		dest  *int
		query string
	}{
		{&c.Decisions, `SELECT COUNT(*) FROM decisions WHERE project = ? AND archived = 0`},
		{&c.Errors, `SELECT COUNT(*) FROM errors WHERE project = ? AND archived = 0`},
		{&c.Learnings, `SELECT COUNT(*) FROM learnings WHERE project = ? AND archived = 0`},
		{&c.Context, `SELECT COUNT(*) FROM context WHERE project = ?`},
		{&c.Sessions, `SELECT COUNT(*) FROM sessions WHERE project = ?`},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query, project).Scan(q.dest); err != nil {
			return c, fmt.Errorf("count rows: %w", err)
		}
	}
	return c, nil
}

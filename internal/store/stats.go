package store

import (
	"context"
	"fmt"
	"os"
)

// ProjectStats holds total row counts (archived included) for one project.
type ProjectStats struct {
	Project   string `json:"project"`
	Decisions int    `json:"decisions"`
	Errors    int    `json:"errors"`
	Learnings int    `json:"learnings"`
	Context   int    `json:"context"`
	Sessions  int    `json:"sessions"`
	Archived  int    `json:"archived"`
}

// Stats holds database statistics. Projects carries one entry when scoped to
// a single project, or the full cross-project breakdown otherwise.
type Stats struct {
	DBPath        string         `json:"db_path"`
	DBSizeBytes   int64          `json:"db_size_bytes"`
	TotalArchived int            `json:"total_archived"`
	Projects      []ProjectStats `json:"projects"`
}

// Stats returns row counts per project, archived counts, and the database
// file's on-disk size. With project empty, every project is included.
func (s *SQLiteStore) Stats(ctx context.Context, project string) (*Stats, error) {
	st := &Stats{DBPath: s.path}
	if info, err := os.Stat(s.path); err == nil {
		st.DBSizeBytes = info.Size()
	}

	projects := []string{project}
	if project == "" {
		var err error
		projects, err = s.Projects(ctx)
		if err != nil {
			return nil, err
		}
	}

	for _, p := range projects {
		ps, err := s.projectStats(ctx, p)
		if err != nil {
			return nil, err
		}
		st.Projects = append(st.Projects, ps)
		st.TotalArchived += ps.Archived
	}
	return st, nil
}

func (s *SQLiteStore) projectStats(ctx context.Context, project string) (ProjectStats, error) {
	ps := ProjectStats{Project: project}
	queries := []struct {
		dest  *int
		query string
	}{
		{&ps.Decisions, `SELECT COUNT(*) FROM decisions WHERE project = ?`},
		{&ps.Errors, `SELECT COUNT(*) FROM errors WHERE project = ?`},
		{&ps.Learnings, `SELECT COUNT(*) FROM learnings WHERE project = ?`},
		{&ps.Context, `SELECT COUNT(*) FROM context WHERE project = ?`},
		{&ps.Sessions, `SELECT COUNT(*) FROM sessions WHERE project = ?`},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query, project).Scan(q.dest); err != nil {
			return ps, fmt.Errorf("project stats: %w", err)
		}
	}

	archivedQuery := `
		SELECT (SELECT COUNT(*) FROM decisions WHERE project = ? AND archived = 1)
		     + (SELECT COUNT(*) FROM errors WHERE project = ? AND archived = 1)
		     + (SELECT COUNT(*) FROM learnings WHERE project = ? AND archived = 1)`
	if err := s.db.QueryRowContext(ctx, archivedQuery, project, project, project).Scan(&ps.Archived); err != nil {
		return ps, fmt.Errorf("archived count: %w", err)
	}
	return ps, nil
}

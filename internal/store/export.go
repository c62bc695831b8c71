package store

import (
	"context"

	"github.com/rcliao/membank/internal/model"
)

// ExportProject serializes all of a project's rows across the five kinds
// into one document. Archived rows are included only when includeArchived
// is set. Global learnings belong to no project and are not exported.
func (s *SQLiteStore) ExportProject(ctx context.Context, project string, includeArchived bool) (*model.Export, error) {
	if project == "" {
		return nil, invalidf("project is required")
	}

	const exportLimit = 100000 // effectively unlimited

	q := QueryParams{Project: project, Limit: exportLimit, IncludeArchived: includeArchived}

	decisions, err := s.Decisions(ctx, q)
	if err != nil {
		return nil, err
	}
	errs, err := s.Errors(ctx, q)
	if err != nil {
		return nil, err
	}
	learnings, err := s.Learnings(ctx, q)
	if err != nil {
		return nil, err
	}
	entries, err := s.ContextEntries(ctx, project, "")
	if err != nil {
		return nil, err
	}
	sessions, err := s.Sessions(ctx, project)
	if err != nil {
		return nil, err
	}

	return &model.Export{
		Project:    project,
		ExportedAt: nowUTC(),
		Decisions:  decisions,
		Errors:     errs,
		Context:    entries,
		Learnings:  learnings,
		Sessions:   sessions,
	}, nil
}

package engine

import (
	"context"

	"github.com/rcliao/membank/internal/model"
	"github.com/rcliao/membank/internal/store"
)

// ImportResult reports per-kind import counts. Skipped counts rows whose
// insert failed; a bad row never aborts the rest of the import.
type ImportResult struct {
	Decisions int `json:"decisions"`
	Errors    int `json:"errors"`
	Learnings int `json:"learnings"`
	Context   int `json:"context"`
	Sessions  int `json:"sessions"`
	Skipped   int `json:"skipped"`
}

// Total returns the number of rows imported.
func (r ImportResult) Total() int {
	return r.Decisions + r.Errors + r.Learnings + r.Context + r.Sessions
}

// Export serializes one project's memory into a single document.
func (e *Engine) Export(ctx context.Context, project string, includeArchived bool) (*model.Export, error) {
	return e.store.ExportProject(ctx, project, includeArchived)
}

// Import walks an export document and re-inserts its rows. Decisions, error
// solutions, and learnings are append-only: they have no natural key, so
// re-importing the same export duplicates them rather than merging. Context
// entries and sessions upsert on their natural keys. Each row's failure is
// isolated and counted, never fatal.
func (e *Engine) Import(ctx context.Context, exp *model.Export) (ImportResult, error) {
	var res ImportResult
	if exp == nil || exp.Project == "" {
		return res, &store.ValidationError{Msg: "export document has no project"}
	}

	for _, d := range exp.Decisions {
		created, err := e.store.InsertDecision(ctx, store.DecisionParams{
			Project:   exp.Project,
			Date:      d.Date,
			Decision:  d.Decision,
			Rationale: d.Rationale,
			Category:  d.Category,
			Priority:  d.Priority,
		})
		if err != nil {
			res.Skipped++
			e.log.Warn("import: decision skipped", "error", err)
			continue
		}
		res.Decisions++
		e.restoreArchived(ctx, model.KindDecision, created.ID, d.Archived)
	}

	for _, row := range exp.Errors {
		created, err := e.store.InsertError(ctx, store.ErrorParams{
			Project:      exp.Project,
			ErrorPattern: row.ErrorPattern,
			Solution:     row.Solution,
			Context:      row.Context,
			Category:     row.Category,
			Priority:     row.Priority,
		})
		if err != nil {
			res.Skipped++
			e.log.Warn("import: error solution skipped", "error", err)
			continue
		}
		res.Errors++
		e.restoreArchived(ctx, model.KindError, created.ID, row.Archived)
	}

	for _, l := range exp.Learnings {
		created, err := e.store.InsertLearning(ctx, store.LearningParams{
			Project:  exp.Project,
			Category: l.Category,
			Content:  l.Content,
			Priority: l.Priority,
		})
		if err != nil {
			res.Skipped++
			e.log.Warn("import: learning skipped", "error", err)
			continue
		}
		res.Learnings++
		e.restoreArchived(ctx, model.KindLearning, created.ID, l.Archived)
	}

	for _, c := range exp.Context {
		if _, err := e.store.UpsertContext(ctx, exp.Project, c.Key, c.Value); err != nil {
			res.Skipped++
			e.log.Warn("import: context entry skipped", "key", c.Key, "error", err)
			continue
		}
		res.Context++
	}

	for _, s := range exp.Sessions {
		_, err := e.store.UpsertSession(ctx, store.SessionParams{
			Project:   exp.Project,
			Workspace: s.Workspace,
			Task:      s.Task,
			Status:    s.Status,
			Notes:     s.Notes,
		})
		if err != nil {
			res.Skipped++
			e.log.Warn("import: session skipped", "workspace", s.Workspace, "error", err)
			continue
		}
		res.Sessions++
	}

	return res, nil
}

func (e *Engine) restoreArchived(ctx context.Context, kind model.Kind, id int64, archived bool) {
	if !archived {
		return
	}
	if _, err := e.store.SetArchived(ctx, kind, id, true); err != nil {
		e.log.Warn("import: restore archived flag failed", "kind", kind, "id", id, "error", err)
	}
}

package engine

import (
	"context"

	"github.com/rcliao/membank/internal/model"
	"github.com/rcliao/membank/internal/store"
)

// Snapshot is the aggregate view returned by memory_status and
// load_comprehensive_memory: active sessions, context entries, and the top
// records per kind under the standard ordering, plus live counts.
type Snapshot struct {
	Project   string                `json:"project"`
	Sessions  []model.Session       `json:"sessions"`
	Context   []model.ContextEntry  `json:"context"`
	Decisions []model.Decision      `json:"decisions"`
	Learnings []model.Learning      `json:"learnings"`
	Errors    []model.ErrorSolution `json:"errors"`
	Counts    store.Counts          `json:"counts"`
}

const (
	statusTopN        = 5
	comprehensiveTopN = 20
)

// Status returns a compact snapshot of one project's memory.
func (e *Engine) Status(ctx context.Context, project string) (*Snapshot, error) {
	return e.snapshot(ctx, project, statusTopN, false)
}

// ComprehensiveLoad returns the same shape as Status with a higher record
// budget. With includeGlobal, global learnings and the reserved "global"
// project's context entries are unioned in.
func (e *Engine) ComprehensiveLoad(ctx context.Context, project string, includeGlobal bool) (*Snapshot, error) {
	return e.snapshot(ctx, project, comprehensiveTopN, includeGlobal)
}

func (e *Engine) snapshot(ctx context.Context, project string, topN int, includeGlobal bool) (*Snapshot, error) {
	if project == "" {
		return nil, &store.ValidationError{Msg: "project is required"}
	}

	snap := &Snapshot{Project: project}

	sessions, err := e.store.Sessions(ctx, project)
	if err != nil {
		return nil, err
	}
	snap.Sessions = sessions

	entries, err := e.store.ContextEntries(ctx, project, "")
	if err != nil {
		return nil, err
	}
	if includeGlobal && project != "global" {
		globals, err := e.store.ContextEntries(ctx, "global", "")
		if err != nil {
			return nil, err
		}
		entries = append(entries, globals...)
	}
	snap.Context = entries

	q := store.QueryParams{Project: project, Limit: topN}

	snap.Decisions, err = e.store.Decisions(ctx, q)
	if err != nil {
		return nil, err
	}

	lq := q
	lq.IncludeGlobal = includeGlobal
	learnings, err := e.store.Learnings(ctx, lq)
	if err != nil {
		return nil, err
	}
	snap.Learnings = dedupLearnings(learnings)

	snap.Errors, err = e.store.Errors(ctx, q)
	if err != nil {
		return nil, err
	}

	snap.Counts, err = e.store.LiveCounts(ctx, project)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func dedupLearnings(in []model.Learning) []model.Learning {
	seen := make(map[int64]bool, len(in))
	out := in[:0]
	for _, l := range in {
		if seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		out = append(out, l)
	}
	return out
}

// SearchAllResult groups substring matches per kind, each preserving its own
// ordering rule. Empty groups are simply absent.
type SearchAllResult struct {
	Decisions []model.Decision      `json:"decisions,omitempty"`
	Errors    []model.ErrorSolution `json:"errors,omitempty"`
	Learnings []model.Learning      `json:"learnings,omitempty"`
	Context   []model.ContextEntry  `json:"context,omitempty"`
}

// Empty reports whether no kind matched.
func (r *SearchAllResult) Empty() bool {
	return len(r.Decisions) == 0 && len(r.Errors) == 0 &&
		len(r.Learnings) == 0 && len(r.Context) == 0
}

// SearchAll runs the substring search independently across decisions, error
// solutions, learnings, and context entries for one project.
func (e *Engine) SearchAll(ctx context.Context, project, query string, limit int) (*SearchAllResult, error) {
	if query == "" {
		return nil, &store.ValidationError{Msg: "query is required"}
	}

	q := store.QueryParams{Project: project, Search: query, Limit: limit}
	res := &SearchAllResult{}

	var err error
	if res.Decisions, err = e.store.Decisions(ctx, q); err != nil {
		return nil, err
	}
	if res.Errors, err = e.store.Errors(ctx, q); err != nil {
		return nil, err
	}
	lq := q
	lq.IncludeGlobal = true
	if res.Learnings, err = e.store.Learnings(ctx, lq); err != nil {
		return nil, err
	}
	if res.Context, err = e.store.ContextEntries(ctx, project, query); err != nil {
		return nil, err
	}
	return res, nil
}

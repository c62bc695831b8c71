// Package engine implements the query and update policies layered on the
// record store: ordering, archival, priority, access tiering, pruning,
// aggregation, cross-kind search, export/import, and cloud sync
// orchestration. Every operation maps to one store call or a fixed sequence
// of per-row operations whose successes and failures are isolated.
package engine

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/rcliao/membank/internal/mirror"
	"github.com/rcliao/membank/internal/model"
	"github.com/rcliao/membank/internal/store"
)

// Engine coordinates the record store and the optional cloud mirror. A nil
// mirror means the cloud capability is absent for this process lifetime.
type Engine struct {
	store  *store.SQLiteStore
	mirror *mirror.Mirror
	log    *slog.Logger
}

// New creates an Engine. mir may be nil.
func New(s *store.SQLiteStore, mir *mirror.Mirror, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: s, mirror: mir, log: logger}
}

// CloudEnabled reports whether the cloud mirror capability is present.
func (e *Engine) CloudEnabled() bool { return e.mirror != nil }

// push mirrors one local write. Transport failures are logged and swallowed:
// local storage is authoritative and sync is advisory.
func (e *Engine) push(ctx context.Context, project string, kind model.Kind, docID string, fields map[string]interface{}) {
	if e.mirror == nil {
		return
	}
	if err := e.mirror.Push(ctx, project, kind, docID, fields); err != nil {
		e.log.Warn("cloud push failed", "kind", kind, "project", project, "error", err)
	}
}

// remove mirrors one local delete, same best-effort contract as push.
func (e *Engine) remove(ctx context.Context, project string, kind model.Kind, docID string) {
	if e.mirror == nil {
		return
	}
	if err := e.mirror.Remove(ctx, project, kind, docID); err != nil {
		e.log.Warn("cloud remove failed", "kind", kind, "project", project, "error", err)
	}
}

// RememberDecision stores a decision and mirrors it.
func (e *Engine) RememberDecision(ctx context.Context, p store.DecisionParams) (*model.Decision, error) {
	d, err := e.store.InsertDecision(ctx, p)
	if err != nil {
		return nil, err
	}
	e.push(ctx, d.Project, model.KindDecision, formatID(d.ID), decisionDoc(d))
	return d, nil
}

// RecallDecisions is the recall-style read for decisions: results are
// ordered by priority then date, and each returned record's access counters
// are bumped.
func (e *Engine) RecallDecisions(ctx context.Context, q store.QueryParams) ([]model.Decision, error) {
	ds, err := e.store.Decisions(ctx, q)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(ds))
	for i, d := range ds {
		ids[i] = d.ID
	}
	if err := e.store.TrackAccess(ctx, model.KindDecision, ids); err != nil {
		e.log.Warn("access tracking failed", "kind", "decision", "error", err)
	}
	return ds, nil
}

// RememberError stores an error solution and mirrors it.
func (e *Engine) RememberError(ctx context.Context, p store.ErrorParams) (*model.ErrorSolution, error) {
	es, err := e.store.InsertError(ctx, p)
	if err != nil {
		return nil, err
	}
	e.push(ctx, es.Project, model.KindError, formatID(es.ID), errorDoc(es))
	return es, nil
}

// FindSolution is the recall-style substring search over error patterns.
func (e *Engine) FindSolution(ctx context.Context, project, errorText string, limit int) ([]model.ErrorSolution, error) {
	es, err := e.store.Errors(ctx, store.QueryParams{Project: project, Search: errorText, Limit: limit})
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(es))
	for i, row := range es {
		ids[i] = row.ID
	}
	if err := e.store.TrackAccess(ctx, model.KindError, ids); err != nil {
		e.log.Warn("access tracking failed", "kind", "error", "error", err)
	}
	return es, nil
}

// ListErrors is the list-style read for error solutions. It does not touch
// access counters.
func (e *Engine) ListErrors(ctx context.Context, q store.QueryParams) ([]model.ErrorSolution, error) {
	return e.store.Errors(ctx, q)
}

// SetContext upserts a context entry and mirrors it.
func (e *Engine) SetContext(ctx context.Context, project, key, value string) (*model.ContextEntry, error) {
	entry, err := e.store.UpsertContext(ctx, project, key, value)
	if err != nil {
		return nil, err
	}
	e.push(ctx, project, model.KindContext, key, contextDoc(entry))
	return entry, nil
}

// GetContext returns one entry when key is given, or all of the project's
// entries otherwise. The single-entry miss is (nil, nil).
func (e *Engine) GetContext(ctx context.Context, project, key string) ([]model.ContextEntry, error) {
	if key != "" {
		entry, err := e.store.ContextEntry(ctx, project, key)
		if err != nil || entry == nil {
			return nil, err
		}
		return []model.ContextEntry{*entry}, nil
	}
	return e.store.ContextEntries(ctx, project, "")
}

// DeleteContext removes a context entry locally and from the mirror.
func (e *Engine) DeleteContext(ctx context.Context, project, key string) (bool, error) {
	removed, err := e.store.DeleteContext(ctx, project, key)
	if err != nil {
		return false, err
	}
	if removed {
		e.remove(ctx, project, model.KindContext, key)
	}
	return removed, nil
}

// RememberLearning stores a learning and mirrors it. An empty project makes
// the learning global.
func (e *Engine) RememberLearning(ctx context.Context, p store.LearningParams) (*model.Learning, error) {
	l, err := e.store.InsertLearning(ctx, p)
	if err != nil {
		return nil, err
	}
	e.push(ctx, learningProject(l.Project), model.KindLearning, formatID(l.ID), learningDoc(l))
	return l, nil
}

// RecallLearnings is the recall-style read for learnings. Global learnings
// are always unioned in with the project-scoped ones.
func (e *Engine) RecallLearnings(ctx context.Context, q store.QueryParams) ([]model.Learning, error) {
	q.IncludeGlobal = true
	ls, err := e.store.Learnings(ctx, q)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(ls))
	for i, l := range ls {
		ids[i] = l.ID
	}
	if err := e.store.TrackAccess(ctx, model.KindLearning, ids); err != nil {
		e.log.Warn("access tracking failed", "kind", "learning", "error", err)
	}
	return ls, nil
}

// SaveSession upserts the session for (project, workspace) and mirrors it.
func (e *Engine) SaveSession(ctx context.Context, p store.SessionParams) (*model.Session, error) {
	sess, err := e.store.UpsertSession(ctx, p)
	if err != nil {
		return nil, err
	}
	e.push(ctx, sess.Project, model.KindSession, sessionDocID(sess.Workspace), sessionDoc(sess))
	return sess, nil
}

// GetSession returns the session for one workspace, or all of a project's
// sessions when workspace is empty and allWorkspaces is set.
func (e *Engine) GetSession(ctx context.Context, project, workspace string, allWorkspaces bool) ([]model.Session, error) {
	if allWorkspaces && workspace == "" {
		return e.store.Sessions(ctx, project)
	}
	sess, err := e.store.SessionByWorkspace(ctx, project, workspace)
	if err != nil || sess == nil {
		return nil, err
	}
	return []model.Session{*sess}, nil
}

// ClearSession removes the session for (project, workspace) locally and from
// the mirror.
func (e *Engine) ClearSession(ctx context.Context, project, workspace string) (bool, error) {
	removed, err := e.store.ClearSession(ctx, project, workspace)
	if err != nil {
		return false, err
	}
	if removed {
		e.remove(ctx, project, model.KindSession, sessionDocID(workspace))
	}
	return removed, nil
}

// Archive soft-deletes one record. Archived rows disappear from every read
// path except archived export and pruning; the public contract offers no
// un-archive.
func (e *Engine) Archive(ctx context.Context, kindName string, id int64) (bool, error) {
	kind, ok := model.ParseKind(kindName)
	if !ok || !kind.Archivable() {
		return false, &store.ValidationError{Msg: "invalid type '" + kindName + "' (expected decision, error, or learning)"}
	}
	return e.store.SetArchived(ctx, kind, id, true)
}

// SetPriority changes one record's priority level after validating it.
func (e *Engine) SetPriority(ctx context.Context, kindName string, id int64, level int) (bool, error) {
	kind, ok := model.ParseKind(kindName)
	if !ok || !kind.Archivable() {
		return false, &store.ValidationError{Msg: "invalid type '" + kindName + "' (expected decision, error, or learning)"}
	}
	return e.store.SetPriority(ctx, kind, id, level)
}

// Prune permanently deletes archived rows older than the cutoff. Project
// "all" (or empty) prunes every project.
func (e *Engine) Prune(ctx context.Context, project string, days int) (int64, error) {
	return e.store.Prune(ctx, allToEmpty(project), days)
}

// BulkCleanup generalizes pruning with a kind filter and the archivedOnly
// switch. With archivedOnly false, live rows matching the cutoff are deleted
// too.
func (e *Engine) BulkCleanup(ctx context.Context, project, kindName string, days int, archivedOnly bool) (int64, error) {
	var kind model.Kind
	if kindName != "" && kindName != "all" {
		k, ok := model.ParseKind(kindName)
		if !ok || !k.Archivable() {
			return 0, &store.ValidationError{Msg: "invalid type '" + kindName + "' (expected decision, error, learning, or all)"}
		}
		kind = k
	}
	return e.store.Cleanup(ctx, store.CleanupParams{
		Project:      allToEmpty(project),
		Kind:         kind,
		Days:         days,
		ArchivedOnly: archivedOnly,
	})
}

// Stats returns row counts and database size, cross-project when project is
// empty.
func (e *Engine) Stats(ctx context.Context, project string) (*store.Stats, error) {
	return e.store.Stats(ctx, project)
}

func allToEmpty(project string) string {
	if project == "all" {
		return ""
	}
	return project
}

func formatID(id int64) string { return strconv.FormatInt(id, 10) }

// learningProject is the mirror namespace for a learning; global learnings
// live under the reserved "global" project.
func learningProject(project string) string {
	if project == "" {
		return "global"
	}
	return project
}

// sessionDocID is the mirror document id for a session; the default
// workspace gets a stable name.
func sessionDocID(workspace string) string {
	if workspace == "" {
		return "default"
	}
	return workspace
}

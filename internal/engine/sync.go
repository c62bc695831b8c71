package engine

import (
	"context"
	"strconv"

	"github.com/rcliao/membank/internal/model"
	"github.com/rcliao/membank/internal/store"
)

// PullResult reports a bulk pull: rows merged locally and rows skipped due
// to per-row failures.
type PullResult struct {
	Pulled  int `json:"pulled"`
	Skipped int `json:"skipped"`
}

// SyncToCloud pushes every row of a project (or of all projects, with
// "all") to the mirror and returns the number of documents pushed. Archived
// rows are included so the mirror stays a full copy. Transport failures are
// logged and skipped; the count reflects successful pushes only.
func (e *Engine) SyncToCloud(ctx context.Context, project string) (int, error) {
	if e.mirror == nil {
		return 0, &store.ValidationError{Msg: "cloud sync is not configured"}
	}

	projects := []string{project}
	if project == "all" || project == "" {
		var err error
		projects, err = e.store.Projects(ctx)
		if err != nil {
			return 0, err
		}
	}

	total := 0
	for _, p := range projects {
		n, err := e.syncProject(ctx, p)
		total += n
		if err != nil {
			return total, err
		}
	}

	// Global learnings belong to no project; mirror them under "global".
	if project == "all" || project == "" {
		globals, err := e.store.Learnings(ctx, store.QueryParams{Limit: 100000, IncludeArchived: true})
		if err != nil {
			return total, err
		}
		for _, l := range globals {
			total += e.pushCounted(ctx, "global", model.KindLearning, formatID(l.ID), learningDoc(&l))
		}
	}
	return total, nil
}

// pushCounted pushes one document and returns 1 on success, 0 on a logged
// and swallowed transport failure.
func (e *Engine) pushCounted(ctx context.Context, project string, kind model.Kind, docID string, fields map[string]interface{}) int {
	if err := e.mirror.Push(ctx, project, kind, docID, fields); err != nil {
		e.log.Warn("cloud push failed", "kind", kind, "project", project, "doc", docID, "error", err)
		return 0
	}
	return 1
}

func (e *Engine) syncProject(ctx context.Context, project string) (int, error) {
	exp, err := e.store.ExportProject(ctx, project, true)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, d := range exp.Decisions {
		n += e.pushCounted(ctx, project, model.KindDecision, formatID(d.ID), decisionDoc(&d))
	}
	for _, row := range exp.Errors {
		n += e.pushCounted(ctx, project, model.KindError, formatID(row.ID), errorDoc(&row))
	}
	for _, l := range exp.Learnings {
		n += e.pushCounted(ctx, project, model.KindLearning, formatID(l.ID), learningDoc(&l))
	}
	for _, c := range exp.Context {
		n += e.pushCounted(ctx, project, model.KindContext, c.Key, contextDoc(&c))
	}
	for _, sess := range exp.Sessions {
		n += e.pushCounted(ctx, project, model.KindSession, sessionDocID(sess.Workspace), sessionDoc(&sess))
	}
	return n, nil
}

// PullFromCloud fetches every remote document for a project and merges each
// one through the normal insert or upsert path. Decisions, error solutions,
// and learnings append (same rule as import); context and sessions upsert.
// Per-row failures are counted as skipped; a failed fetch for one kind is
// logged and the remaining kinds still pull.
func (e *Engine) PullFromCloud(ctx context.Context, project string) (PullResult, error) {
	var res PullResult
	if e.mirror == nil {
		return res, &store.ValidationError{Msg: "cloud sync is not configured"}
	}
	if project == "" {
		return res, &store.ValidationError{Msg: "project is required"}
	}

	for _, doc := range e.pullDocs(ctx, project, model.KindDecision) {
		_, err := e.store.InsertDecision(ctx, store.DecisionParams{
			Project:   project,
			Date:      doc["date"],
			Decision:  doc["decision"],
			Rationale: doc["rationale"],
			Category:  doc["category"],
			Priority:  docInt(doc, "priority"),
		})
		countRow(&res, err)
	}

	for _, doc := range e.pullDocs(ctx, project, model.KindError) {
		_, err := e.store.InsertError(ctx, store.ErrorParams{
			Project:      project,
			ErrorPattern: doc["error_pattern"],
			Solution:     doc["solution"],
			Context:      doc["context"],
			Category:     doc["category"],
			Priority:     docInt(doc, "priority"),
		})
		countRow(&res, err)
	}

	for _, doc := range e.pullDocs(ctx, project, model.KindLearning) {
		_, err := e.store.InsertLearning(ctx, store.LearningParams{
			Project:  storedLearningProject(project),
			Category: doc["category"],
			Content:  doc["content"],
			Priority: docInt(doc, "priority"),
		})
		countRow(&res, err)
	}

	for _, doc := range e.pullDocs(ctx, project, model.KindContext) {
		_, err := e.store.UpsertContext(ctx, project, doc["key"], doc["value"])
		countRow(&res, err)
	}

	for _, doc := range e.pullDocs(ctx, project, model.KindSession) {
		_, err := e.store.UpsertSession(ctx, store.SessionParams{
			Project:   project,
			Workspace: doc["workspace"],
			Task:      doc["task"],
			Status:    doc["status"],
			Notes:     doc["notes"],
		})
		countRow(&res, err)
	}

	return res, nil
}

func (e *Engine) pullDocs(ctx context.Context, project string, kind model.Kind) []map[string]string {
	docs, err := e.mirror.Pull(ctx, project, kind)
	if err != nil {
		e.log.Warn("cloud pull failed", "kind", kind, "project", project, "error", err)
	}
	return docs
}

// storedLearningProject inverts learningProject: documents pulled from the
// reserved "global" namespace re-insert as null-project learnings, keeping
// them visible to every project's queries.
func storedLearningProject(project string) string {
	if project == "global" {
		return ""
	}
	return project
}

func countRow(res *PullResult, err error) {
	if err != nil {
		res.Skipped++
		return
	}
	res.Pulled++
}

func docInt(doc map[string]string, field string) int {
	n, _ := strconv.Atoi(doc[field])
	return n
}

// Document builders. Mirror documents are flat string-keyed field maps;
// HSET merges them into any existing remote document.

func decisionDoc(d *model.Decision) map[string]interface{} {
	return map[string]interface{}{
		"id":        d.ID,
		"date":      d.Date,
		"decision":  d.Decision,
		"rationale": d.Rationale,
		"category":  d.Category,
		"priority":  d.Priority,
		"archived":  boolField(d.Archived),
	}
}

func errorDoc(e *model.ErrorSolution) map[string]interface{} {
	return map[string]interface{}{
		"id":            e.ID,
		"error_pattern": e.ErrorPattern,
		"solution":      e.Solution,
		"context":       e.Context,
		"category":      e.Category,
		"priority":      e.Priority,
		"archived":      boolField(e.Archived),
	}
}

func learningDoc(l *model.Learning) map[string]interface{} {
	return map[string]interface{}{
		"id":       l.ID,
		"category": l.Category,
		"content":  l.Content,
		"priority": l.Priority,
		"archived": boolField(l.Archived),
	}
}

func contextDoc(c *model.ContextEntry) map[string]interface{} {
	return map[string]interface{}{
		"key":   c.Key,
		"value": c.Value,
	}
}

func sessionDoc(s *model.Session) map[string]interface{} {
	return map[string]interface{}{
		"workspace": s.Workspace,
		"task":      s.Task,
		"status":    s.Status,
		"notes":     s.Notes,
	}
}

func boolField(b bool) int {
	if b {
		return 1
	}
	return 0
}

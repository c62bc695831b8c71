package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/rcliao/membank/internal/engine"
	"github.com/rcliao/membank/internal/store"
)

// CoreOps returns the operations always offered at the boundary.
func CoreOps() []Operation {
	ops := []Operation{
		{
			Name: "remember_decision",
			Desc: "Store a project decision with optional rationale, category, and priority",
			Args: []ArgSpec{
				{Name: "project", Type: TypeString, Desc: "Project namespace", Required: true},
				{Name: "decision", Type: TypeString, Desc: "The decision text", Required: true},
				{Name: "rationale", Type: TypeString, Desc: "Why the decision was made"},
				{Name: "category", Type: TypeString, Desc: "Free-form category"},
				{Name: "date", Type: TypeString, Desc: "ISO date, defaults to today"},
				{Name: "priority", Type: TypeNumber, Desc: "0 normal, 1 high, 2 critical"},
			},
			Handler: func(ctx context.Context, e *engine.Engine, args Args) (string, error) {
				d, err := e.RememberDecision(ctx, store.DecisionParams{
					Project:   args.String("project"),
					Date:      args.String("date"),
					Decision:  args.String("decision"),
					Rationale: args.String("rationale"),
					Category:  args.String("category"),
					Priority:  args.Int("priority", 0),
				})
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Remembered decision #%d for project '%s'", d.ID, d.Project), nil
			},
		},
		{
			Name: "recall_decisions",
			Desc: "Recall decisions for a project, priority first then most recent",
			Args: []ArgSpec{
				{Name: "project", Type: TypeString, Desc: "Project namespace", Required: true},
				{Name: "category", Type: TypeString, Desc: "Exact category filter"},
				{Name: "search", Type: TypeString, Desc: "Substring filter on decision and rationale"},
				{Name: "limit", Type: TypeNumber, Desc: "Max results, default 10"},
			},
			Handler: func(ctx context.Context, e *engine.Engine, args Args) (string, error) {
				ds, err := e.RecallDecisions(ctx, store.QueryParams{
					Project:  args.String("project"),
					Category: args.String("category"),
					Search:   args.String("search"),
					Limit:    args.Int("limit", 10),
				})
				if err != nil {
					return "", err
				}
				if len(ds) == 0 {
					return "No decisions found.", nil
				}
				return formatDecisions(ds, time.Now().UTC()), nil
			},
		},
		{
			Name: "remember_error",
			Desc: "Store an error pattern together with the solution that worked",
			Args: []ArgSpec{
				{Name: "project", Type: TypeString, Desc: "Project namespace", Required: true},
				{Name: "error_pattern", Type: TypeString, Desc: "The error text or pattern", Required: true},
				{Name: "solution", Type: TypeString, Desc: "The fix that worked", Required: true},
				{Name: "context", Type: TypeString, Desc: "Where or when the error occurs"},
				{Name: "category", Type: TypeString, Desc: "Free-form category"},
				{Name: "priority", Type: TypeNumber, Desc: "0 normal, 1 high, 2 critical"},
			},
			Handler: func(ctx context.Context, e *engine.Engine, args Args) (string, error) {
				es, err := e.RememberError(ctx, store.ErrorParams{
					Project:      args.String("project"),
					ErrorPattern: args.String("error_pattern"),
					Solution:     args.String("solution"),
					Context:      args.String("context"),
					Category:     args.String("category"),
					Priority:     args.Int("priority", 0),
				})
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Remembered error solution #%d for project '%s'", es.ID, es.Project), nil
			},
		},
		{
			Name: "find_solution",
			Desc: "Find stored solutions whose error pattern matches a substring",
			Args: []ArgSpec{
				{Name: "project", Type: TypeString, Desc: "Project namespace", Required: true},
				{Name: "error", Type: TypeString, Desc: "Substring of the error", Required: true},
				{Name: "limit", Type: TypeNumber, Desc: "Max results, default 10"},
			},
			Handler: func(ctx context.Context, e *engine.Engine, args Args) (string, error) {
				es, err := e.FindSolution(ctx, args.String("project"), args.String("error"), args.Int("limit", 10))
				if err != nil {
					return "", err
				}
				if len(es) == 0 {
					return "No matching solutions found.", nil
				}
				return formatErrors(es, time.Now().UTC()), nil
			},
		},
		{
			Name: "list_errors",
			Desc: "List error solutions for a project",
			Args: []ArgSpec{
				{Name: "project", Type: TypeString, Desc: "Project namespace", Required: true},
				{Name: "category", Type: TypeString, Desc: "Exact category filter"},
				{Name: "limit", Type: TypeNumber, Desc: "Max results, default 10"},
			},
			Handler: func(ctx context.Context, e *engine.Engine, args Args) (string, error) {
				es, err := e.ListErrors(ctx, store.QueryParams{
					Project:  args.String("project"),
					Category: args.String("category"),
					Limit:    args.Int("limit", 10),
				})
				if err != nil {
					return "", err
				}
				if len(es) == 0 {
					return "No error solutions found.", nil
				}
				return formatErrors(es, time.Now().UTC()), nil
			},
		},
		{
			Name: "set_context",
			Desc: "Set a key-value context entry for a project (insert or overwrite)",
			Args: []ArgSpec{
				{Name: "project", Type: TypeString, Desc: "Project namespace", Required: true},
				{Name: "key", Type: TypeString, Desc: "Context key", Required: true},
				{Name: "value", Type: TypeString, Desc: "Context value", Required: true},
			},
			Handler: func(ctx context.Context, e *engine.Engine, args Args) (string, error) {
				entry, err := e.SetContext(ctx, args.String("project"), args.String("key"), args.String("value"))
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Context '%s' set for project '%s'", entry.Key, entry.Project), nil
			},
		},
		{
			Name: "get_context",
			Desc: "Get one context entry by key, or all entries for a project",
			Args: []ArgSpec{
				{Name: "project", Type: TypeString, Desc: "Project namespace", Required: true},
				{Name: "key", Type: TypeString, Desc: "Context key; omit for all entries"},
			},
			Handler: func(ctx context.Context, e *engine.Engine, args Args) (string, error) {
				key := args.String("key")
				entries, err := e.GetContext(ctx, args.String("project"), key)
				if err != nil {
					return "", err
				}
				if len(entries) == 0 {
					if key != "" {
						return fmt.Sprintf("No context entry for '%s'.", key), nil
					}
					return "No context entries found.", nil
				}
				return formatContextEntries(entries), nil
			},
		},
		{
			Name: "delete_context",
			Desc: "Delete a context entry by key",
			Args: []ArgSpec{
				{Name: "project", Type: TypeString, Desc: "Project namespace", Required: true},
				{Name: "key", Type: TypeString, Desc: "Context key", Required: true},
			},
			Handler: func(ctx context.Context, e *engine.Engine, args Args) (string, error) {
				removed, err := e.DeleteContext(ctx, args.String("project"), args.String("key"))
				if err != nil {
					return "", err
				}
				if !removed {
					return fmt.Sprintf("No context entry for '%s' (0 changes).", args.String("key")), nil
				}
				return fmt.Sprintf("Deleted context '%s'", args.String("key")), nil
			},
		},
		{
			Name: "remember_learning",
			Desc: "Store a learning; omit project to make it global",
			Args: []ArgSpec{
				{Name: "category", Type: TypeString, Desc: "Learning category", Required: true},
				{Name: "content", Type: TypeString, Desc: "The learning itself", Required: true},
				{Name: "project", Type: TypeString, Desc: "Project namespace; empty means global"},
				{Name: "priority", Type: TypeNumber, Desc: "0 normal, 1 high, 2 critical"},
			},
			Handler: func(ctx context.Context, e *engine.Engine, args Args) (string, error) {
				l, err := e.RememberLearning(ctx, store.LearningParams{
					Project:  args.String("project"),
					Category: args.String("category"),
					Content:  args.String("content"),
					Priority: args.Int("priority", 0),
				})
				if err != nil {
					return "", err
				}
				scope := l.Project
				if scope == "" {
					scope = "global"
				}
				return fmt.Sprintf("Remembered learning #%d (%s)", l.ID, scope), nil
			},
		},
		{
			Name: "recall_learnings",
			Desc: "Recall learnings for a project, global learnings included",
			Args: []ArgSpec{
				{Name: "project", Type: TypeString, Desc: "Project namespace", Required: true},
				{Name: "category", Type: TypeString, Desc: "Exact category filter"},
				{Name: "search", Type: TypeString, Desc: "Substring filter on content"},
				{Name: "limit", Type: TypeNumber, Desc: "Max results, default 10"},
			},
			Handler: func(ctx context.Context, e *engine.Engine, args Args) (string, error) {
				ls, err := e.RecallLearnings(ctx, store.QueryParams{
					Project:  args.String("project"),
					Category: args.String("category"),
					Search:   args.String("search"),
					Limit:    args.Int("limit", 10),
				})
				if err != nil {
					return "", err
				}
				if len(ls) == 0 {
					return "No learnings found.", nil
				}
				return formatLearnings(ls, time.Now().UTC()), nil
			},
		},
		{
			Name: "search_all",
			Desc: "Search decisions, errors, learnings, and context in one pass",
			Args: []ArgSpec{
				{Name: "project", Type: TypeString, Desc: "Project namespace", Required: true},
				{Name: "query", Type: TypeString, Desc: "Substring to search for", Required: true},
				{Name: "limit", Type: TypeNumber, Desc: "Max results per kind, default 10"},
			},
			Handler: func(ctx context.Context, e *engine.Engine, args Args) (string, error) {
				res, err := e.SearchAll(ctx, args.String("project"), args.String("query"), args.Int("limit", 10))
				if err != nil {
					return "", err
				}
				if res.Empty() {
					return "No matches found.", nil
				}
				now := time.Now().UTC()
				var sections []string
				if len(res.Decisions) > 0 {
					sections = append(sections, "== Decisions ==\n"+formatDecisions(res.Decisions, now))
				}
				if len(res.Errors) > 0 {
					sections = append(sections, "== Errors ==\n"+formatErrors(res.Errors, now))
				}
				if len(res.Learnings) > 0 {
					sections = append(sections, "== Learnings ==\n"+formatLearnings(res.Learnings, now))
				}
				if len(res.Context) > 0 {
					sections = append(sections, "== Context ==\n"+formatContextEntries(res.Context))
				}
				return joinBlocks(sections), nil
			},
		},
		{
			Name: "save_session",
			Desc: "Save the in-flight task for a project workspace (insert or overwrite)",
			Args: []ArgSpec{
				{Name: "project", Type: TypeString, Desc: "Project namespace", Required: true},
				{Name: "task", Type: TypeString, Desc: "What is being worked on", Required: true},
				{Name: "workspace", Type: TypeString, Desc: "Workspace; empty is the default workspace"},
				{Name: "status", Type: TypeString, Desc: "Session status, default in-progress"},
				{Name: "notes", Type: TypeString, Desc: "Free-form notes"},
			},
			Handler: func(ctx context.Context, e *engine.Engine, args Args) (string, error) {
				sess, err := e.SaveSession(ctx, store.SessionParams{
					Project:   args.String("project"),
					Workspace: args.String("workspace"),
					Task:      args.String("task"),
					Status:    args.String("status"),
					Notes:     args.String("notes"),
				})
				if err != nil {
					return "", err
				}
				ws := sess.Workspace
				if ws == "" {
					ws = "default"
				}
				return fmt.Sprintf("Session saved for project '%s', workspace '%s'", sess.Project, ws), nil
			},
		},
		{
			Name: "get_session",
			Desc: "Get the session for a workspace, or all workspaces when omitted",
			Args: []ArgSpec{
				{Name: "project", Type: TypeString, Desc: "Project namespace", Required: true},
				{Name: "workspace", Type: TypeString, Desc: "Workspace; omit for all workspaces"},
			},
			Handler: func(ctx context.Context, e *engine.Engine, args Args) (string, error) {
				workspace := args.String("workspace")
				sessions, err := e.GetSession(ctx, args.String("project"), workspace, !args.Has("workspace"))
				if err != nil {
					return "", err
				}
				if len(sessions) == 0 {
					return "No active session found.", nil
				}
				return formatSessions(sessions), nil
			},
		},
		{
			Name: "clear_session",
			Desc: "Clear the session for one workspace",
			Args: []ArgSpec{
				{Name: "project", Type: TypeString, Desc: "Project namespace", Required: true},
				{Name: "workspace", Type: TypeString, Desc: "Workspace; empty is the default workspace"},
			},
			Handler: func(ctx context.Context, e *engine.Engine, args Args) (string, error) {
				removed, err := e.ClearSession(ctx, args.String("project"), args.String("workspace"))
				if err != nil {
					return "", err
				}
				if !removed {
					return "No active session found (0 changes).", nil
				}
				return "Session cleared.", nil
			},
		},
		{
			Name: "memory_status",
			Desc: "Compact snapshot: sessions, context, and top records per kind",
			Args: []ArgSpec{
				{Name: "project", Type: TypeString, Desc: "Project namespace", Required: true},
			},
			Handler: func(ctx context.Context, e *engine.Engine, args Args) (string, error) {
				snap, err := e.Status(ctx, args.String("project"))
				if err != nil {
					return "", err
				}
				return formatSnapshot(snap, time.Now().UTC()), nil
			},
		},
		{
			Name: "load_comprehensive_memory",
			Desc: "Full snapshot with a higher record budget and global records unioned in",
			Args: []ArgSpec{
				{Name: "project", Type: TypeString, Desc: "Project namespace", Required: true},
				{Name: "include_global", Type: TypeBoolean, Desc: "Union in global context and learnings, default true"},
			},
			Handler: func(ctx context.Context, e *engine.Engine, args Args) (string, error) {
				snap, err := e.ComprehensiveLoad(ctx, args.String("project"), args.Bool("include_global", true))
				if err != nil {
					return "", err
				}
				return formatSnapshot(snap, time.Now().UTC()), nil
			},
		},
	}
	return append(ops, adminOps()...)
}

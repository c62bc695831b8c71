package dispatch

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/membank/internal/engine"
	"github.com/rcliao/membank/internal/model"
	"github.com/rcliao/membank/internal/store"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(engine.New(s, nil, nil), nil)
}

func TestUnknownOperation(t *testing.T) {
	d := newTestDispatcher(t)
	got := d.Call(context.Background(), "no_such_op", Args{})
	assert.Equal(t, "Unknown operation: no_such_op", got)
}

func TestMissingRequiredArgument(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	got := d.Call(ctx, "remember_decision", Args{"decision": "x"})
	assert.Equal(t, "Missing required argument 'project' for remember_decision", got)

	// Empty string counts as missing for required string args.
	got = d.Call(ctx, "remember_decision", Args{"project": "", "decision": "x"})
	assert.Equal(t, "Missing required argument 'project' for remember_decision", got)
}

func TestSyncOpsAbsentWithoutMirror(t *testing.T) {
	d := newTestDispatcher(t)
	got := d.Call(context.Background(), "sync_to_cloud", Args{})
	assert.Equal(t, "Unknown operation: sync_to_cloud", got)

	for _, op := range d.Operations() {
		assert.NotContains(t, []string{"sync_to_cloud", "pull_from_cloud"}, op.Name)
	}
}

func TestDecisionLifecycle(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	got := d.Call(ctx, "remember_decision", Args{
		"project": "app", "decision": "Use SQLite", "rationale": "zero ops", "priority": 2,
	})
	assert.Equal(t, "Remembered decision #1 for project 'app'", got)

	got = d.Call(ctx, "recall_decisions", Args{"project": "app"})
	assert.Contains(t, got, "[#1] Use SQLite (critical,")
	assert.Contains(t, got, "Rationale: zero ops")

	got = d.Call(ctx, "archive", Args{"type": "decision", "id": 1})
	assert.Equal(t, "Archived decision #1", got)

	got = d.Call(ctx, "recall_decisions", Args{"project": "app"})
	assert.Equal(t, "No decisions found.", got)
}

func TestErrorSolutionFlow(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	d.Call(ctx, "remember_error", Args{
		"project": "app", "error_pattern": "SQLITE_BUSY", "solution": "enable WAL mode",
	})

	got := d.Call(ctx, "find_solution", Args{"project": "app", "error": "BUSY"})
	assert.Contains(t, got, "SQLITE_BUSY")
	assert.Contains(t, got, "Solution: enable WAL mode")

	got = d.Call(ctx, "find_solution", Args{"project": "app", "error": "nonexistent"})
	assert.Equal(t, "No matching solutions found.", got)

	got = d.Call(ctx, "list_errors", Args{"project": "empty"})
	assert.Equal(t, "No error solutions found.", got)
}

func TestContextFlow(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	got := d.Call(ctx, "set_context", Args{"project": "app", "key": "db", "value": "sqlite"})
	assert.Equal(t, "Context 'db' set for project 'app'", got)

	got = d.Call(ctx, "get_context", Args{"project": "app", "key": "db"})
	assert.Equal(t, "db = sqlite", got)

	got = d.Call(ctx, "get_context", Args{"project": "app", "key": "missing"})
	assert.Equal(t, "No context entry for 'missing'.", got)

	got = d.Call(ctx, "get_context", Args{"project": "empty"})
	assert.Equal(t, "No context entries found.", got)

	got = d.Call(ctx, "delete_context", Args{"project": "app", "key": "db"})
	assert.Equal(t, "Deleted context 'db'", got)

	got = d.Call(ctx, "delete_context", Args{"project": "app", "key": "db"})
	assert.Equal(t, "No context entry for 'db' (0 changes).", got)
}

func TestLearningFlow(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	got := d.Call(ctx, "remember_learning", Args{"category": "go", "content": "contexts cancel"})
	assert.Equal(t, "Remembered learning #1 (global)", got)

	got = d.Call(ctx, "remember_learning", Args{"project": "app", "category": "go", "content": "scoped"})
	assert.Equal(t, "Remembered learning #2 (app)", got)

	// Project recall unions in global learnings.
	got = d.Call(ctx, "recall_learnings", Args{"project": "app"})
	assert.Contains(t, got, "contexts cancel")
	assert.Contains(t, got, "scoped")
	assert.Contains(t, got, "global)")

	got = d.Call(ctx, "recall_learnings", Args{"project": "app", "search": "zzz"})
	assert.Equal(t, "No learnings found.", got)
}

func TestSessionFlow(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	got := d.Call(ctx, "save_session", Args{"project": "app", "task": "refactor store"})
	assert.Equal(t, "Session saved for project 'app', workspace 'default'", got)

	d.Call(ctx, "save_session", Args{"project": "app", "task": "laptop task", "workspace": "laptop"})

	got = d.Call(ctx, "get_session", Args{"project": "app", "workspace": "laptop"})
	assert.Contains(t, got, "[laptop] laptop task (in-progress)")

	// Omitting workspace returns every workspace's session.
	got = d.Call(ctx, "get_session", Args{"project": "app"})
	assert.Contains(t, got, "refactor store")
	assert.Contains(t, got, "laptop task")

	got = d.Call(ctx, "clear_session", Args{"project": "app", "workspace": "laptop"})
	assert.Equal(t, "Session cleared.", got)

	got = d.Call(ctx, "clear_session", Args{"project": "app", "workspace": "laptop"})
	assert.Equal(t, "No active session found (0 changes).", got)

	got = d.Call(ctx, "get_session", Args{"project": "other"})
	assert.Equal(t, "No active session found.", got)
}

func TestSearchAllOp(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	d.Call(ctx, "remember_decision", Args{"project": "app", "decision": "cache with redis"})
	d.Call(ctx, "set_context", Args{"project": "app", "key": "cache", "value": "redis at :6379"})

	got := d.Call(ctx, "search_all", Args{"project": "app", "query": "redis"})
	assert.Contains(t, got, "== Decisions ==")
	assert.Contains(t, got, "== Context ==")
	assert.NotContains(t, got, "== Errors ==")

	got = d.Call(ctx, "search_all", Args{"project": "app", "query": "nothing-here"})
	assert.Equal(t, "No matches found.", got)
}

func TestMemoryStatusOp(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	d.Call(ctx, "remember_decision", Args{"project": "app", "decision": "d1"})
	d.Call(ctx, "save_session", Args{"project": "app", "task": "t"})

	got := d.Call(ctx, "memory_status", Args{"project": "app"})
	assert.True(t, strings.HasPrefix(got, "Memory for project 'app':"), got)
	assert.Contains(t, got, "1 decisions")
	assert.Contains(t, got, "== Active sessions ==")
	assert.Contains(t, got, "== Decisions ==")
}

func TestSetPriorityOp(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	d.Call(ctx, "remember_decision", Args{"project": "app", "decision": "d"})

	got := d.Call(ctx, "set_priority", Args{"type": "decision", "id": 1, "priority": 2})
	assert.Equal(t, "Set decision #1 priority to critical", got)

	got = d.Call(ctx, "set_priority", Args{"type": "decision", "id": 99, "priority": 1})
	assert.Equal(t, "No decision with id 99 (0 changes).", got)

	// Validation failures come back as sentences, not errors.
	got = d.Call(ctx, "set_priority", Args{"type": "session", "id": 1, "priority": 1})
	assert.Contains(t, got, "invalid type 'session'")

	got = d.Call(ctx, "set_priority", Args{"type": "decision", "id": 1, "priority": 9})
	assert.Contains(t, got, "priority")
}

func TestExportImportOps(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	d.Call(ctx, "remember_decision", Args{"project": "app", "decision": "d"})
	d.Call(ctx, "set_context", Args{"project": "app", "key": "k", "value": "v"})

	exported := d.Call(ctx, "export_memory", Args{"project": "app"})
	var exp model.Export
	require.NoError(t, json.Unmarshal([]byte(exported), &exp))
	assert.Equal(t, "app", exp.Project)
	assert.Len(t, exp.Decisions, 1)

	d2 := newTestDispatcher(t)
	got := d2.Call(ctx, "import_memory", Args{"data": exported})
	assert.Contains(t, got, "Imported 2 records into 'app'")
	assert.Contains(t, got, "0 skipped")

	got = d2.Call(ctx, "import_memory", Args{"data": "not json"})
	assert.True(t, strings.HasPrefix(got, "Invalid import document:"), got)
}

func TestPruneAndCleanupOps(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	got := d.Call(ctx, "prune", Args{"project": "all"})
	assert.Equal(t, "Pruned 0 archived records.", got)

	got = d.Call(ctx, "bulk_cleanup", Args{"project": "all", "days": 30})
	assert.Equal(t, "Cleaned up 0 archived records.", got)

	got = d.Call(ctx, "bulk_cleanup", Args{"project": "all", "days": 30, "archived_only": false})
	assert.Equal(t, "Cleaned up 0 records (archived and live).", got)
}

func TestMemoryStatsOp(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	d.Call(ctx, "remember_decision", Args{"project": "app", "decision": "d"})

	got := d.Call(ctx, "memory_stats", Args{})
	assert.Contains(t, got, "Database:")
	assert.Contains(t, got, "[app] 1 decisions")
}

func TestArgCoercion(t *testing.T) {
	args := Args{
		"float": float64(7), "str_num": "42", "bad_num": "x",
		"flag": true, "str_flag": "true",
	}
	assert.Equal(t, 7, args.Int("float", 0))
	assert.Equal(t, 42, args.Int("str_num", 0))
	assert.Equal(t, 5, args.Int("bad_num", 5))
	assert.Equal(t, 5, args.Int("absent", 5))
	assert.True(t, args.Bool("flag", false))
	assert.True(t, args.Bool("str_flag", false))
	assert.False(t, args.Bool("absent", false))
	assert.Equal(t, "42", args.String("str_num"))
	assert.Equal(t, "", args.String("absent"))
	assert.True(t, args.Has("flag"))
	assert.False(t, args.Has("absent"))
}

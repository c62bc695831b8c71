package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/membank/internal/store"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(s, nil, nil)
}

func TestCloudDisabledWithoutMirror(t *testing.T) {
	e := newTestEngine(t)
	assert.False(t, e.CloudEnabled())
}

func TestRecallDecisionsTracksAccess(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	_, err := e.RememberDecision(ctx, store.DecisionParams{Project: "app", Decision: "d"})
	require.NoError(t, err)

	_, err = e.RecallDecisions(ctx, store.QueryParams{Project: "app"})
	require.NoError(t, err)

	got, err := e.RecallDecisions(ctx, store.QueryParams{Project: "app"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].AccessCount, "first recall's bump visible on second read")
	assert.NotNil(t, got[0].LastAccessed)
}

func TestListErrorsDoesNotTrackAccess(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	_, err := e.RememberError(ctx, store.ErrorParams{Project: "app", ErrorPattern: "p", Solution: "s"})
	require.NoError(t, err)

	_, err = e.ListErrors(ctx, store.QueryParams{Project: "app"})
	require.NoError(t, err)

	got, err := e.ListErrors(ctx, store.QueryParams{Project: "app"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].AccessCount)
}

func TestArchiveHidesRecord(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	d, err := e.RememberDecision(ctx, store.DecisionParams{Project: "app", Decision: "d"})
	require.NoError(t, err)

	changed, err := e.Archive(ctx, "decision", d.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := e.RecallDecisions(ctx, store.QueryParams{Project: "app"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestArchiveRejectsNonArchivableKinds(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	for _, kind := range []string{"context", "session", "bogus"} {
		_, err := e.Archive(ctx, kind, 1)
		var verr *store.ValidationError
		assert.ErrorAs(t, err, &verr, "kind %q", kind)
	}
}

func TestGetContextSingleAndAll(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	_, err := e.SetContext(ctx, "app", "db", "postgres")
	require.NoError(t, err)
	_, err = e.SetContext(ctx, "app", "queue", "redis")
	require.NoError(t, err)

	one, err := e.GetContext(ctx, "app", "db")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "postgres", one[0].Value)

	miss, err := e.GetContext(ctx, "app", "nope")
	require.NoError(t, err)
	assert.Empty(t, miss)

	all, err := e.GetContext(ctx, "app", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetSessionAllWorkspaces(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	_, err := e.SaveSession(ctx, store.SessionParams{Project: "app", Task: "default work"})
	require.NoError(t, err)
	_, err = e.SaveSession(ctx, store.SessionParams{Project: "app", Workspace: "laptop", Task: "laptop work"})
	require.NoError(t, err)

	one, err := e.GetSession(ctx, "app", "laptop", false)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "laptop work", one[0].Task)

	all, err := e.GetSession(ctx, "app", "", true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	def, err := e.GetSession(ctx, "app", "", false)
	require.NoError(t, err)
	require.Len(t, def, 1)
	assert.Equal(t, "default work", def[0].Task)
}

func TestSearchAllGroupsPerKind(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	_, err := e.RememberDecision(ctx, store.DecisionParams{Project: "app", Decision: "use redis for cache"})
	require.NoError(t, err)
	_, err = e.RememberError(ctx, store.ErrorParams{Project: "app", ErrorPattern: "redis timeout", Solution: "raise limit"})
	require.NoError(t, err)
	_, err = e.RememberLearning(ctx, store.LearningParams{Category: "infra", Content: "redis pipelines batch commands"})
	require.NoError(t, err)
	_, err = e.SetContext(ctx, "app", "cache", "redis cluster at 10.0.0.5")
	require.NoError(t, err)
	_, err = e.RememberDecision(ctx, store.DecisionParams{Project: "app", Decision: "unrelated"})
	require.NoError(t, err)

	res, err := e.SearchAll(ctx, "app", "redis", 0)
	require.NoError(t, err)
	assert.Len(t, res.Decisions, 1)
	assert.Len(t, res.Errors, 1)
	assert.Len(t, res.Learnings, 1, "global learnings included in search")
	assert.Len(t, res.Context, 1)
	assert.False(t, res.Empty())

	none, err := e.SearchAll(ctx, "app", "zzz-no-match", 0)
	require.NoError(t, err)
	assert.True(t, none.Empty())
}

func TestSearchAllRequiresQuery(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.SearchAll(context.Background(), "app", "", 0)
	var verr *store.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestStatusSnapshot(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	for i := 0; i < 7; i++ {
		_, err := e.RememberDecision(ctx, store.DecisionParams{Project: "app", Decision: "d"})
		require.NoError(t, err)
	}
	_, err := e.SaveSession(ctx, store.SessionParams{Project: "app", Task: "t"})
	require.NoError(t, err)
	_, err = e.SetContext(ctx, "app", "k", "v")
	require.NoError(t, err)

	snap, err := e.Status(ctx, "app")
	require.NoError(t, err)
	assert.Len(t, snap.Decisions, 5, "status caps records per kind")
	assert.Len(t, snap.Sessions, 1)
	assert.Len(t, snap.Context, 1)
	assert.Equal(t, 7, snap.Counts.Decisions, "counts cover everything, not just the top slice")
}

func TestComprehensiveLoadIncludesGlobal(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	_, err := e.RememberLearning(ctx, store.LearningParams{Project: "app", Category: "c", Content: "scoped"})
	require.NoError(t, err)
	_, err = e.RememberLearning(ctx, store.LearningParams{Category: "c", Content: "global"})
	require.NoError(t, err)
	_, err = e.SetContext(ctx, "global", "org", "acme")
	require.NoError(t, err)

	snap, err := e.ComprehensiveLoad(ctx, "app", true)
	require.NoError(t, err)
	assert.Len(t, snap.Learnings, 2)
	assert.Len(t, snap.Context, 1, "global context entries unioned in")

	scoped, err := e.ComprehensiveLoad(ctx, "app", false)
	require.NoError(t, err)
	assert.Len(t, scoped.Learnings, 1)
	assert.Empty(t, scoped.Context)
}

func TestSnapshotRequiresProject(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Status(context.Background(), "")
	var verr *store.ValidationError
	assert.ErrorAs(t, err, &verr)
}

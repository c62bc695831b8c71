package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/membank/internal/model"
	"github.com/rcliao/membank/internal/store"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestEngine(t)

	d, err := src.RememberDecision(ctx, store.DecisionParams{Project: "app", Decision: "use sqlite", Priority: model.PriorityHigh})
	require.NoError(t, err)
	_, err = src.RememberError(ctx, store.ErrorParams{Project: "app", ErrorPattern: "locked", Solution: "enable wal"})
	require.NoError(t, err)
	_, err = src.RememberLearning(ctx, store.LearningParams{Project: "app", Category: "db", Content: "wal helps"})
	require.NoError(t, err)
	_, err = src.SetContext(ctx, "app", "db", "sqlite")
	require.NoError(t, err)
	_, err = src.SaveSession(ctx, store.SessionParams{Project: "app", Task: "migrate"})
	require.NoError(t, err)
	_, err = src.Archive(ctx, "decision", d.ID)
	require.NoError(t, err)

	exp, err := src.Export(ctx, "app", true)
	require.NoError(t, err)
	require.Len(t, exp.Decisions, 1)

	dst := newTestEngine(t)
	res, err := dst.Import(ctx, exp)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Total())
	assert.Zero(t, res.Skipped)

	// The archived flag travels with the export.
	got, err := dst.RecallDecisions(ctx, store.QueryParams{Project: "app", IncludeArchived: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Archived)
	assert.Equal(t, model.PriorityHigh, got[0].Priority)

	entries, err := dst.GetContext(ctx, "app", "db")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "sqlite", entries[0].Value)
}

func TestImportAppendOnlyForRecordKinds(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	_, err := e.RememberDecision(ctx, store.DecisionParams{Project: "app", Decision: "d"})
	require.NoError(t, err)
	_, err = e.SetContext(ctx, "app", "k", "v")
	require.NoError(t, err)

	exp, err := e.Export(ctx, "app", false)
	require.NoError(t, err)

	// Importing into the same database duplicates id-keyed kinds and upserts
	// natural-key kinds.
	res, err := e.Import(ctx, exp)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Decisions)
	assert.Equal(t, 1, res.Context)

	ds, err := e.RecallDecisions(ctx, store.QueryParams{Project: "app"})
	require.NoError(t, err)
	assert.Len(t, ds, 2)

	entries, err := e.GetContext(ctx, "app", "")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestImportSkipsBadRows(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	exp := &model.Export{
		Project: "app",
		Decisions: []model.Decision{
			{Decision: "good"},
			{}, // missing decision text
		},
		Learnings: []model.Learning{
			{Category: "c", Content: "good"},
			{Content: "no category"},
		},
	}
	res, err := e.Import(ctx, exp)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Decisions)
	assert.Equal(t, 1, res.Learnings)
	assert.Equal(t, 2, res.Skipped)
}

func TestImportRequiresProject(t *testing.T) {
	e := newTestEngine(t)

	var verr *store.ValidationError
	_, err := e.Import(context.Background(), nil)
	assert.ErrorAs(t, err, &verr)

	_, err = e.Import(context.Background(), &model.Export{})
	assert.ErrorAs(t, err, &verr)
}

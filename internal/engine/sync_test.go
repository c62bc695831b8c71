package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/membank/internal/model"
	"github.com/rcliao/membank/internal/store"
)

func TestSyncWithoutMirror(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	var verr *store.ValidationError
	_, err := e.SyncToCloud(ctx, "app")
	assert.ErrorAs(t, err, &verr)

	_, err = e.PullFromCloud(ctx, "app")
	assert.ErrorAs(t, err, &verr)
}

func TestStoredLearningProject(t *testing.T) {
	assert.Equal(t, "", storedLearningProject("global"))
	assert.Equal(t, "app", storedLearningProject("app"))
}

func TestPulledGlobalLearningVisibleToAllProjects(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	// Re-insert a learning document the way the pull path does when pulling
	// the reserved "global" namespace.
	_, err := e.store.InsertLearning(ctx, store.LearningParams{
		Project:  storedLearningProject("global"),
		Category: "go",
		Content:  "pulled from the mirror",
	})
	require.NoError(t, err)

	// Null-project learnings must surface in every project's recall.
	got, err := e.RecallLearnings(ctx, store.QueryParams{Project: "app"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Project)
	assert.Equal(t, "pulled from the mirror", got[0].Content)
}

func TestDocumentBuilders(t *testing.T) {
	d := &model.Decision{ID: 3, Date: "2026-08-01", Decision: "d", Priority: 2, Archived: true}
	doc := decisionDoc(d)
	assert.Equal(t, int64(3), doc["id"])
	assert.Equal(t, 1, doc["archived"])
	assert.Equal(t, 2, doc["priority"])

	l := &model.Learning{ID: 1, Category: "c", Content: "x"}
	assert.Equal(t, 0, learningDoc(l)["archived"])

	s := &model.Session{Workspace: "", Task: "t", Status: "in-progress"}
	assert.Equal(t, "", sessionDoc(s)["workspace"])
}

func TestDocInt(t *testing.T) {
	doc := map[string]string{"priority": "2", "junk": "abc"}
	assert.Equal(t, 2, docInt(doc, "priority"))
	assert.Equal(t, 0, docInt(doc, "junk"))
	assert.Equal(t, 0, docInt(doc, "absent"))
}

func TestCountRow(t *testing.T) {
	var res PullResult
	countRow(&res, nil)
	countRow(&res, assert.AnError)
	countRow(&res, nil)
	assert.Equal(t, 2, res.Pulled)
	assert.Equal(t, 1, res.Skipped)
}

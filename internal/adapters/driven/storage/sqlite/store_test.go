package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noteward/noteward/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	assert.Contains(t, store.Path(), "noteward.db")
	require.NoError(t, store.Close())

	// Reopening runs migrations again; they must be idempotent.
	store, err = NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func someTask(id string) domain.TaskItem {
	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
	return domain.TaskItem{
		ID:            id,
		Content:       "write report",
		Status:        domain.TaskStatusPending,
		Priority:      domain.TaskPriorityMedium,
		SourceFile:    "work/plan.md",
		SourceSection: "Deadlines",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestTaskStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	tasks := store.TaskStore()
	ctx := context.Background()

	task := someTask("t1")
	due := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	task.DueDate = &due
	task.Tags = []string{"work", "writing"}

	require.NoError(t, tasks.Save(ctx, task))

	got, err := tasks.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, task.Content, got.Content)
	assert.Equal(t, task.Status, got.Status)
	assert.Equal(t, task.Priority, got.Priority)
	assert.Equal(t, task.SourceFile, got.SourceFile)
	assert.Equal(t, task.SourceSection, got.SourceSection)
	assert.Equal(t, []string{"work", "writing"}, got.Tags)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))
}

func TestTaskStore_SaveUpserts(t *testing.T) {
	store := newTestStore(t)
	tasks := store.TaskStore()
	ctx := context.Background()

	task := someTask("t1")
	require.NoError(t, tasks.Save(ctx, task))

	task.Content = "write the final report"
	task.Status = domain.TaskStatusCompleted
	require.NoError(t, tasks.Save(ctx, task))

	got, err := tasks.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "write the final report", got.Content)
	assert.Equal(t, domain.TaskStatusCompleted, got.Status)

	all, err := tasks.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestTaskStore_SaveEmptyID(t *testing.T) {
	store := newTestStore(t)

	err := store.TaskStore().Save(context.Background(), domain.TaskItem{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTaskStore_GetNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.TaskStore().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTaskStore_SaveAll(t *testing.T) {
	store := newTestStore(t)
	tasks := store.TaskStore()
	ctx := context.Background()

	batch := []domain.TaskItem{someTask("t1"), someTask("t2"), someTask("t3")}
	batch[1].Status = domain.TaskStatusCompleted
	require.NoError(t, tasks.SaveAll(ctx, batch))

	all, err := tasks.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pending, err := tasks.List(ctx, domain.TaskStatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	// An empty batch is a no-op.
	require.NoError(t, tasks.SaveAll(ctx, nil))
}

func TestTaskStore_ListOrder(t *testing.T) {
	store := newTestStore(t)
	tasks := store.TaskStore()
	ctx := context.Background()

	older := someTask("b-older")
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	newer := someTask("a-newer")
	require.NoError(t, tasks.Save(ctx, newer))
	require.NoError(t, tasks.Save(ctx, older))

	all, err := tasks.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b-older", all[0].ID)
	assert.Equal(t, "a-newer", all[1].ID)
}

func TestTaskStore_Delete(t *testing.T) {
	store := newTestStore(t)
	tasks := store.TaskStore()
	ctx := context.Background()

	require.NoError(t, tasks.Save(ctx, someTask("t1")))
	require.NoError(t, tasks.Delete(ctx, "t1"))

	_, err := tasks.Get(ctx, "t1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, tasks.Delete(ctx, "t1"), domain.ErrNotFound)
}

func TestTaskStore_NilDueDate(t *testing.T) {
	store := newTestStore(t)
	tasks := store.TaskStore()
	ctx := context.Background()

	require.NoError(t, tasks.Save(ctx, someTask("t1")))

	got, err := tasks.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, got.DueDate)
	assert.Nil(t, got.Tags)
}

func TestVectorBlobRoundTrip(t *testing.T) {
	vecs := [][]float32{
		nil,
		{},
		{0},
		{1.5, -2.25, 0.0078125},
		{3.14159, -0.001, 1e10},
	}
	for _, v := range vecs {
		got := bytesToFloat32Slice(float32SliceToBytes(v))
		if len(v) == 0 {
			assert.Nil(t, got)
			continue
		}
		assert.Equal(t, v, got)
	}
}

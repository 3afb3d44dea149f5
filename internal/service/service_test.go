package service

import (
	"context"
	"errors"
	"path/filepath"
	"taskboard/internal/logger"
	"taskboard/internal/repository"
	"taskboard/internal/storage"
	"taskboard/internal/task"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *TaskService {
	t.Helper()
	log := logger.NewNoOpLogger()
	repo := repository.NewTaskRepository(storage.NewMemoryBackend(), log)
	return NewTaskService(repo, nil, log)
}

func TestCreateTask_Defaults(t *testing.T) {
	svc := newService(t)

	created, err := svc.CreateTask(context.Background(), task.Fields{Title: "Buy milk"})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Buy milk", created.Title)
	assert.Equal(t, "", created.Description)
	assert.Equal(t, task.StatusPending, created.Status)
}

func TestCreateTask_KeepsGivenFields(t *testing.T) {
	svc := newService(t)

	created, err := svc.CreateTask(context.Background(), task.Fields{Title: "t", Description: "d", Status: task.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, "d", created.Description)
	assert.Equal(t, task.StatusInProgress, created.Status)
}

func TestCreateTask_DoesNotValidateTitle(t *testing.T) {
	svc := newService(t)

	created, err := svc.CreateTask(context.Background(), task.Fields{})
	require.NoError(t, err)
	assert.Equal(t, "", created.Title)
}

func TestCreateTask_UniqueIDs(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		created, err := svc.CreateTask(ctx, task.Fields{Title: "same"})
		require.NoError(t, err)
		assert.False(t, seen[created.ID], "duplicate id %s", created.ID)
		seen[created.ID] = true
	}

	tasks, err := svc.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 50)
}

func TestUpdateTask_FullReplace(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, task.Fields{Title: "t", Description: "keep me?", Status: task.StatusInProgress})
	require.NoError(t, err)

	updated, err := svc.UpdateTask(ctx, created.ID, task.Fields{Title: "new"})
	require.NoError(t, err)
	assert.Equal(t, task.Task{ID: created.ID, Title: "new"}, updated)
}

func TestUpdateTask_NotFound(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.CreateTask(ctx, task.Fields{Title: "existing"})
	require.NoError(t, err)
	before, err := svc.ListTasks(ctx)
	require.NoError(t, err)

	_, err = svc.UpdateTask(ctx, "unknown", task.Fields{Title: "x"})
	assert.True(t, errors.Is(err, task.ErrNotFound))

	after, err := svc.ListTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestScenario(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, task.Fields{Title: "Buy milk"})
	require.NoError(t, err)

	tasks, err := svc.ListTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []task.Task{{ID: created.ID, Title: "Buy milk", Description: "", Status: task.StatusPending}}, tasks)

	_, err = svc.UpdateTask(ctx, created.ID, task.Fields{Title: "Buy milk", Description: "2%", Status: task.StatusCompleted})
	require.NoError(t, err)

	tasks, err = svc.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.StatusCompleted, tasks[0].Status)
	assert.Equal(t, "2%", tasks[0].Description)

	require.NoError(t, svc.DeleteTask(ctx, created.ID))
	tasks, err = svc.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestNewIDGenerator(t *testing.T) {
	gen, err := NewIDGenerator("")
	require.NoError(t, err)
	id, err := uuid.Parse(gen())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	gen, err = NewIDGenerator(IDSchemeTimestamp)
	require.NoError(t, err)
	assert.Regexp(t, `^\d{13,}$`, gen())

	_, err = NewIDGenerator("sequential")
	assert.Error(t, err)
}

func TestTimestampGenerator_StrictlyIncreasing(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	gen := NewTimestampGenerator(func() time.Time { return fixed })

	assert.Equal(t, "1700000000000", gen())
	assert.Equal(t, "1700000000001", gen())
	assert.Equal(t, "1700000000002", gen())
}

func TestUpdateTask_QuoteInStatusOnFileBackendKeepsOtherTasks(t *testing.T) {
	log := logger.NewNoOpLogger()
	backend := storage.NewFileBackend(filepath.Join(t.TempDir(), "tasks.csv"))
	svc := NewTaskService(repository.NewTaskRepository(backend, log), nil, log)
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		created, err := svc.CreateTask(ctx, task.Fields{Title: title})
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	_, err := svc.UpdateTask(ctx, ids[0], task.Fields{Title: "a", Status: `in"progress`})
	require.NoError(t, err)

	tasks, err := svc.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, task.Status(`in"progress`), tasks[0].Status)
	assert.Equal(t, task.Task{ID: ids[1], Title: "b", Status: task.StatusPending}, tasks[1])
	assert.Equal(t, task.Task{ID: ids[2], Title: "c", Status: task.StatusPending}, tasks[2])

	_, err = svc.CreateTask(ctx, task.Fields{Title: "d"})
	require.NoError(t, err)

	tasks, err = svc.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 4)
	assert.Equal(t, "c", tasks[2].Title)
	assert.Equal(t, "d", tasks[3].Title)
}

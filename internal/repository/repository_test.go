package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"taskboard/internal/logger"
	"taskboard/internal/storage"
	"taskboard/internal/task"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T, backend storage.Backend) *TaskRepository {
	t.Helper()
	return NewTaskRepository(backend, logger.NewNoOpLogger())
}

func backends(t *testing.T) map[string]storage.Backend {
	return map[string]storage.Backend{
		"memory": storage.NewMemoryBackend(),
		"csv":    storage.NewFileBackend(filepath.Join(t.TempDir(), "tasks.csv")),
		"kv":     storage.NewBlobBackend(storage.NewMemoryKV(), storage.DefaultKey),
	}
}

func TestTaskRepository_CreateAndList(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t, backend)
			ctx := context.Background()

			tasks, err := repo.List(ctx)
			require.NoError(t, err)
			assert.NotNil(t, tasks)
			assert.Empty(t, tasks)

			a, err := repo.Create(ctx, task.Task{ID: "a", Title: "first", Status: task.StatusPending})
			require.NoError(t, err)
			b, err := repo.Create(ctx, task.Task{ID: "b", Title: "second", Description: "x, y", Status: task.StatusInProgress})
			require.NoError(t, err)

			tasks, err = repo.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []task.Task{a, b}, tasks)
		})
	}
}

func TestTaskRepository_UpdateReplacesInPlace(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t, backend)
			ctx := context.Background()

			for _, id := range []string{"1", "2", "3"} {
				_, err := repo.Create(ctx, task.Task{ID: id, Title: "task " + id, Description: "d", Status: task.StatusPending})
				require.NoError(t, err)
			}

			updated, err := repo.Update(ctx, task.Task{ID: "2", Title: "changed", Status: task.StatusCompleted})
			require.NoError(t, err)
			assert.Equal(t, task.Task{ID: "2", Title: "changed", Status: task.StatusCompleted}, updated)

			tasks, err := repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, tasks, 3)
			assert.Equal(t, "1", tasks[0].ID)
			assert.Equal(t, updated, tasks[1])
			assert.Equal(t, "3", tasks[2].ID)
		})
	}
}

func TestTaskRepository_UpdateUnknownID(t *testing.T) {
	backend := &countingBackend{Backend: storage.NewMemoryBackend(task.Task{ID: "1", Title: "keep"})}
	repo := newRepo(t, backend)

	_, err := repo.Update(context.Background(), task.Task{ID: "nope", Title: "x"})
	assert.ErrorIs(t, err, task.ErrNotFound)
	assert.Equal(t, 0, backend.saves)

	tasks, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []task.Task{{ID: "1", Title: "keep"}}, tasks)
}

func TestTaskRepository_Delete(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t, backend)
			ctx := context.Background()

			for _, id := range []string{"1", "2", "3"} {
				_, err := repo.Create(ctx, task.Task{ID: id, Title: id})
				require.NoError(t, err)
			}

			require.NoError(t, repo.Delete(ctx, "missing"))
			tasks, err := repo.List(ctx)
			require.NoError(t, err)
			assert.Len(t, tasks, 3)

			require.NoError(t, repo.Delete(ctx, "2"))
			tasks, err = repo.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []task.Task{{ID: "1", Title: "1"}, {ID: "3", Title: "3"}}, tasks)
		})
	}
}

func TestTaskRepository_ConcurrentCreatesAreAllKept(t *testing.T) {
	repo := newRepo(t, storage.NewFileBackend(filepath.Join(t.TempDir(), "tasks.csv")))
	ctx := context.Background()

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Create(ctx, task.Task{ID: fmt.Sprint(i), Title: "t"})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	tasks, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, n)
}

func TestTaskRepository_BackendErrorsAreWrapped(t *testing.T) {
	boom := errors.New("disk on fire")
	repo := newRepo(t, failingBackend{err: boom})

	_, err := repo.List(context.Background())
	assert.ErrorIs(t, err, boom)

	_, err = repo.Create(context.Background(), task.Task{ID: "1"})
	assert.ErrorIs(t, err, boom)

	err = repo.Delete(context.Background(), "1")
	assert.ErrorIs(t, err, boom)
}

type countingBackend struct {
	storage.Backend
	saves int
}

func (b *countingBackend) Save(ctx context.Context, tasks []task.Task) error {
	b.saves++
	return b.Backend.Save(ctx, tasks)
}

type failingBackend struct {
	err error
}

func (f failingBackend) Load(context.Context) ([]task.Task, error) { return nil, f.err }
func (f failingBackend) Save(context.Context, []task.Task) error  { return f.err }

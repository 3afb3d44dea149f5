package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"taskboard/internal/logger"
	"taskboard/internal/storage"
	"taskboard/internal/task"
)

// TaskRepository runs every operation as one load, mutate, save cycle against
// the backend. Cycles are serialized within the process; writers in other
// processes sharing the same storage are not coordinated.
type TaskRepository struct {
	mu      sync.Mutex
	backend storage.Backend
	log     logger.Logger
}

func NewTaskRepository(backend storage.Backend, log logger.Logger) *TaskRepository {
	return &TaskRepository{
		backend: backend,
		log:     log,
	}
}

func (r *TaskRepository) List(ctx context.Context) ([]task.Task, error) {
	log := logger.FromContext(ctx).With("where", "repository")
	log.Debug("repository: listing tasks")

	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	log.Debug("repository: tasks loaded", "count", len(tasks))
	return tasks, nil
}

func (r *TaskRepository) Create(ctx context.Context, t task.Task) (task.Task, error) {
	log := logger.FromContext(ctx).With("where", "repository")
	log.Debug("repository: creating task", "id", t.ID, "title", t.Title)

	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.load(ctx)
	if err != nil {
		return task.Task{}, err
	}

	tasks = append(tasks, t)
	if err := r.save(ctx, tasks); err != nil {
		return task.Task{}, err
	}

	log.Debug("repository: task created successfully", "id", t.ID, "count", len(tasks))
	return t, nil
}

// Update replaces the stored record with the same id. Storage is left
// untouched when no record matches.
func (r *TaskRepository) Update(ctx context.Context, t task.Task) (task.Task, error) {
	log := logger.FromContext(ctx).With("where", "repository")
	log.Debug("repository: updating task", "id", t.ID)

	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.load(ctx)
	if err != nil {
		return task.Task{}, err
	}

	idx := slices.IndexFunc(tasks, func(existing task.Task) bool { return existing.ID == t.ID })
	if idx == -1 {
		return task.Task{}, task.ErrNotFound
	}

	tasks[idx] = t
	if err := r.save(ctx, tasks); err != nil {
		return task.Task{}, err
	}

	log.Debug("repository: task updated successfully", "id", t.ID)
	return t, nil
}

// Delete removes every record with the given id. A missing id is not an
// error; the collection is written back either way.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).With("where", "repository")
	log.Debug("repository: deleting task", "id", id)

	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.load(ctx)
	if err != nil {
		return err
	}

	before := len(tasks)
	tasks = slices.DeleteFunc(tasks, func(existing task.Task) bool { return existing.ID == id })
	if err := r.save(ctx, tasks); err != nil {
		return err
	}

	log.Debug("repository: delete applied", "id", id, "removed", before-len(tasks))
	return nil
}

func (r *TaskRepository) load(ctx context.Context) ([]task.Task, error) {
	tasks, err := r.backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository: load: %w", err)
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}

func (r *TaskRepository) save(ctx context.Context, tasks []task.Task) error {
	if err := r.backend.Save(ctx, tasks); err != nil {
		return fmt.Errorf("repository: save: %w", err)
	}
	return nil
}

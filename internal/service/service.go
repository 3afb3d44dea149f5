package service

import (
	"context"
	"fmt"
	"taskboard/internal/logger"
	"taskboard/internal/task"
)

type TaskService struct {
	repository task.Repository
	newID      IDGenerator
	log        logger.Logger
}

func NewTaskService(repo task.Repository, newID IDGenerator, log logger.Logger) *TaskService {
	if newID == nil {
		newID = UUIDGenerator
	}
	return &TaskService{
		repository: repo,
		newID:      newID,
		log:        log,
	}
}

func (s *TaskService) ListTasks(ctx context.Context) ([]task.Task, error) {
	log := logger.FromContext(ctx).With("where", "service")
	log.Debug("service: listing tasks")

	tasks, err := s.repository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: error listing tasks: %w", err)
	}

	log.Debug("service: tasks retrieved from repository", "count", len(tasks))
	return tasks, nil
}

// CreateTask assigns a fresh id and fills the defaults: an empty description
// and pending status when none is given.
func (s *TaskService) CreateTask(ctx context.Context, in task.Fields) (task.Task, error) {
	log := logger.FromContext(ctx).With("where", "service")
	log.Debug("service: creating task", "title", in.Title)

	t := task.Task{
		ID:          s.newID(),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
	}
	if t.Status == "" {
		t.Status = task.StatusPending
	}

	created, err := s.repository.Create(ctx, t)
	if err != nil {
		return task.Task{}, fmt.Errorf("service: error creating task: %w", err)
	}

	log.Debug("service: task created successfully", "id", created.ID, "title", created.Title)
	return created, nil
}

// UpdateTask replaces every field but the id with the payload. Nothing is
// merged from the stored record and no defaults are applied.
func (s *TaskService) UpdateTask(ctx context.Context, id string, in task.Fields) (task.Task, error) {
	log := logger.FromContext(ctx).With("where", "service")
	log.Debug("service: updating task", "id", id)

	updated, err := s.repository.Update(ctx, task.Task{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
	})
	if err != nil {
		return task.Task{}, fmt.Errorf("service: error updating task: %w", err)
	}

	log.Debug("service: task updated successfully", "id", updated.ID, "status", updated.Status)
	return updated, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).With("where", "service")
	log.Debug("service: deleting task", "id", id)

	if err := s.repository.Delete(ctx, id); err != nil {
		return fmt.Errorf("service: error deleting task: %w", err)
	}

	log.Debug("service: task deleted", "id", id)
	return nil
}

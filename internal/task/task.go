package task

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("task not found")

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// Fields is the client payload for create and update. Omitted JSON keys decode
// to empty strings.
type Fields struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

type Repository interface {
	List(ctx context.Context) ([]Task, error)
	Create(ctx context.Context, t Task) (Task, error)
	Update(ctx context.Context, t Task) (Task, error)
	Delete(ctx context.Context, id string) error
}

type Service interface {
	ListTasks(ctx context.Context) ([]Task, error)
	CreateTask(ctx context.Context, in Fields) (Task, error)
	UpdateTask(ctx context.Context, id string, in Fields) (Task, error)
	DeleteTask(ctx context.Context, id string) error
}

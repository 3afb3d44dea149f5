// Package storage persists the whole task collection at once.
//
// A Backend never holds the collection between calls: Load reads everything,
// Save overwrites everything.
package storage

import (
	"context"
	"errors"
	"slices"
	"sync"
	"taskboard/internal/task"
)

var ErrKeyNotFound = errors.New("key not found")

type Backend interface {
	Load(ctx context.Context) ([]task.Task, error)
	Save(ctx context.Context, tasks []task.Task) error
}

type MemoryBackend struct {
	mu    sync.Mutex
	tasks []task.Task
}

func NewMemoryBackend(seed ...task.Task) *MemoryBackend {
	return &MemoryBackend{tasks: slices.Clone(seed)}
}

func (b *MemoryBackend) Load(_ context.Context) ([]task.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]task.Task{}, b.tasks...), nil
}

func (b *MemoryBackend) Save(_ context.Context, tasks []task.Task) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = slices.Clone(tasks)
	return nil
}

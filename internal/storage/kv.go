package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"taskboard/internal/task"
)

const DefaultKey = "tasks"

type KV interface {
	// Get returns ErrKeyNotFound when key has never been written.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// BlobBackend stores the collection as one JSON array under a single key.
type BlobBackend struct {
	kv  KV
	key string
}

func NewBlobBackend(kv KV, key string) *BlobBackend {
	if key == "" {
		key = DefaultKey
	}
	return &BlobBackend{kv: kv, key: key}
}

func (b *BlobBackend) Load(ctx context.Context) ([]task.Task, error) {
	data, err := b.kv.Get(ctx, b.key)
	if errors.Is(err, ErrKeyNotFound) {
		return []task.Task{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", b.key, err)
	}

	var tasks []task.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("decode %q: %w", b.key, err)
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}

func (b *BlobBackend) Save(ctx context.Context, tasks []task.Task) error {
	if tasks == nil {
		tasks = []task.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode %q: %w", b.key, err)
	}
	if err := b.kv.Put(ctx, b.key, data); err != nil {
		return fmt.Errorf("put %q: %w", b.key, err)
	}
	return nil
}

type MemoryKV struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return slices.Clone(v), nil
}

func (m *MemoryKV) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = slices.Clone(value)
	return nil
}

func (m *MemoryKV) Close() error {
	return nil
}

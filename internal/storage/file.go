package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"taskboard/internal/csvline"
	"taskboard/internal/task"
)

// FileBackend keeps the collection in a CSV file: a header line followed by
// one csvline record per task.
type FileBackend struct {
	path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Load returns the tasks in file order. A missing file is created with only
// the header and yields an empty collection.
func (b *FileBackend) Load(ctx context.Context) ([]task.Task, error) {
	f, err := os.Open(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := b.Save(ctx, nil); err != nil {
			return nil, err
		}
		return []task.Task{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", b.path, err)
	}
	defer f.Close()

	records, err := csvline.ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.path, err)
	}

	tasks := make([]task.Task, 0, len(records))
	for i, rec := range records {
		if i == 0 {
			continue
		}
		tasks = append(tasks, csvline.Parse(csvline.Decode(rec)))
	}
	return tasks, nil
}

// Save overwrites the file through a temporary sibling and a rename.
func (b *FileBackend) Save(_ context.Context, tasks []task.Task) error {
	var buf bytes.Buffer
	buf.WriteString(csvline.Header)
	buf.WriteByte('\n')
	for _, t := range tasks {
		buf.WriteString(csvline.Encode(t))
		buf.WriteByte('\n')
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(b.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return fmt.Errorf("replace %s: %w", b.path, err)
	}
	return nil
}

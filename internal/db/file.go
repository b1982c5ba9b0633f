package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sakshee44566/CareerHub/internal/models"
)

// FileBackend keeps the collection as a pretty-printed JSON array in a
// single file.
type FileBackend struct {
	path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Path returns the data file location.
func (f *FileBackend) Path() string {
	return f.path
}

// Init creates the data directory and an empty collection file if they do
// not exist yet. An existing file is left alone.
func (f *FileBackend) Init() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	_, err := os.Stat(f.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat data file: %w", err)
	}
	return f.SaveCollection(context.Background(), []models.Post{})
}

// LoadCollection reads the file. A missing file is an empty collection.
func (f *FileBackend) LoadCollection(ctx context.Context) ([]models.Post, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []models.Post{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	var posts []models.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return posts, nil
}

// SaveCollection writes to a temp file next to the target and renames it
// into place, so readers never observe a partial write.
func (f *FileBackend) SaveCollection(ctx context.Context, posts []models.Post) error {
	if posts == nil {
		posts = []models.Post{}
	}
	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode posts: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

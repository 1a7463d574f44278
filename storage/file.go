package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileArchiveStore writes archived logs into a local directory.
type FileArchiveStore struct {
	Dir string
}

func NewFileArchiveStore(dir string) *FileArchiveStore {
	return &FileArchiveStore{Dir: dir}
}

func (f *FileArchiveStore) Save(ctx context.Context, key string, data []byte) error {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create archive dir: %w", err)
	}
	return os.WriteFile(filepath.Join(f.Dir, filepath.Base(key)), data, 0o644)
}

package storage

import (
	"context"
	"errors"
	"sync"
)

// ArchiveStore persists dispatch session logs keyed by name.
type ArchiveStore interface {
	Save(ctx context.Context, key string, data []byte) error
}

// TestArchiveStore is a simple in-memory implementation for testing.
type TestArchiveStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	err     error
}

func NewTestArchiveStore() *TestArchiveStore {
	return &TestArchiveStore{Objects: make(map[string][]byte)}
}

func NewTestArchiveStoreWithError() *TestArchiveStore {
	return &TestArchiveStore{err: errors.New("save failed")}
}

func (t *TestArchiveStore) Save(ctx context.Context, key string, data []byte) error {
	if t.err != nil {
		return t.err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Objects[key] = data
	return nil
}

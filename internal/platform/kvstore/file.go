package kvstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"miniminds/internal/sentinel"
)

// FileStore keeps one file per key under root/<namespace>/<key>. Writes go
// through a temp file and rename so a crash never leaves a torn value.
type FileStore struct {
	root string
	mu   sync.Mutex
}

// NewFileStore creates root if needed and returns a file-backed backend.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("kvstore: create root: %w", err)
	}
	return &FileStore{root: root}, nil
}

func (f *FileStore) path(namespace, key string) string {
	return filepath.Join(f.root, namespace, key)
}

func (f *FileStore) Get(_ context.Context, namespace, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(namespace, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kvstore: read %s/%s: %w", namespace, key, err)
	}
	return data, nil
}

func (f *FileStore) Set(_ context.Context, namespace, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Join(f.root, namespace)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("kvstore: create namespace: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("kvstore: create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("kvstore: write %s/%s: %w", namespace, key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("kvstore: sync %s/%s: %w", namespace, key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("kvstore: close %s/%s: %w", namespace, key, err)
	}
	if err := os.Rename(tmpName, f.path(namespace, key)); err != nil {
		return fmt.Errorf("kvstore: commit %s/%s: %w", namespace, key, err)
	}
	return nil
}

func (f *FileStore) Remove(_ context.Context, namespace, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := os.Remove(f.path(namespace, key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("kvstore: remove %s/%s: %w", namespace, key, err)
	}
	return nil
}

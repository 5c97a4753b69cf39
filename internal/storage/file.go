// Package storage provides the device-local persistence backend for the
// ledger store: one JSON document per collection key, durable across
// process restarts.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Backend abstracts keyed local persistence. Load returns ok=false when the
// key was never written.
type Backend interface {
	Load(key string) (data []byte, ok bool, err error)
	Save(key string, data []byte) error
}

// FileStore persists each key as <dir>/<key>.json. Writes go through a
// temp file and rename so a crash never leaves a half-written document.
type FileStore struct {
	dir string
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileStore) Load(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", f.path(key), err)
	}
	return data, true, nil
}

func (f *FileStore) Save(key string, data []byte) error {
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path(key)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", f.path(key), err)
	}
	return nil
}

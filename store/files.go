// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore mirrors each document to <dir>/<key>.json
type FileStore struct {
	dir string
}

// NewFileStore creates dir if it does not exist. The returned store is
// non-nil even on error so a remote-backed deployment on a read-only
// filesystem can keep going; its writes fail and are logged.
func NewFileStore(dir string) (*FileStore, error) {
	f := &FileStore{dir: dir}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return f, fmt.Errorf("failed to create data directory: %w", err)
	}
	return f, nil
}

func (f *FileStore) Path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileStore) Read(key string) ([]byte, error) {
	data, err := os.ReadFile(f.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Path(key), err)
	}
	return data, nil
}

// Write replaces the file atomically (temp file + rename)
func (f *FileStore) Write(key string, data []byte) error {
	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), f.Path(key)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", f.Path(key), err)
	}
	return nil
}

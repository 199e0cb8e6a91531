// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
)

var (
	ErrNotFound         = errors.New("document not found")
	ErrRevisionMismatch = errors.New("revision mismatch")
	// ErrUnreadable blocks writes that would replace a stored document
	// the server could not decode
	ErrUnreadable = errors.New("stored document unreadable")
)

// Source reports where a document was loaded from
type Source string

const (
	SourceRemote  Source = "remote"
	SourceFile    Source = "file"
	SourceDefault Source = "default"
)

// Backend reads from the remote store with fallback to the file mirror and
// writes to both
type Backend struct {
	remote  Remote // nil when no remote store is configured
	files   *FileStore
	timeout time.Duration
}

func NewBackend(remote Remote, files *FileStore, timeout time.Duration) *Backend {
	return &Backend{remote: remote, files: files, timeout: timeout}
}

func (b *Backend) RemoteEnabled() bool {
	return b.remote != nil
}

// Load offers the remote document, then the local file, to accept. The
// first one accept takes without error wins. SourceDefault means neither
// was usable and the caller should fall back to its built-in default.
func (b *Backend) Load(ctx context.Context, key string, accept func([]byte) error) Source {
	if b.remote != nil {
		data, err := b.getRemote(ctx, key)
		switch {
		case errors.Is(err, ErrNotFound):
			slog.Debug("document missing from remote store", "key", key)
		case err != nil:
			slog.Error("failed to read remote document", "backend", b.remote.Name(), "key", key, "error", err)
		default:
			err = accept(data)
			if err == nil {
				return SourceRemote
			}
			slog.Error("invalid remote document", "backend", b.remote.Name(), "key", key, "error", err)
		}
	}

	data, err := b.files.Read(key)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		slog.Error("failed to load local document", "path", b.files.Path(key), "error", err)
	default:
		err = accept(data)
		if err == nil {
			return SourceFile
		}
		slog.Error("invalid local document", "path", b.files.Path(key), "error", err)
	}

	return SourceDefault
}

// Save writes to the remote store (if configured) and always to the local
// file. Failures are logged; an error is returned only when no copy was
// persisted anywhere.
func (b *Backend) Save(ctx context.Context, key string, data []byte) error {
	var remoteErr error
	if b.remote != nil {
		remoteErr = b.setRemote(ctx, key, data)
		if remoteErr != nil {
			slog.Error("failed to write remote document", "backend", b.remote.Name(), "key", key, "error", remoteErr)
		}
	}

	fileErr := b.files.Write(key, data)
	if fileErr != nil {
		// read-only filesystems are expected when a remote store is in use
		if b.remote != nil {
			slog.Debug("local mirror not written", "path", b.files.Path(key), "error", fileErr)
		} else {
			slog.Error("failed to save local document", "path", b.files.Path(key), "error", fileErr)
		}
	}

	persisted := (b.remote != nil && remoteErr == nil) || fileErr == nil
	if !persisted {
		return fmt.Errorf("document %q not persisted: %w", key, errors.Join(remoteErr, fileErr))
	}

	slog.Debug("document saved", "key", key, "size", humanize.Bytes(uint64(len(data))))
	return nil
}

func (b *Backend) getRemote(ctx context.Context, key string) ([]byte, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	return b.remote.Get(ctx, key)
}

func (b *Backend) setRemote(ctx context.Context, key string, data []byte) error {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	return b.remote.Set(ctx, key, data)
}

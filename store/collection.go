// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Publisher receives every successfully written document
type Publisher interface {
	Publish(key string, data []byte, revision uint64)
}

// Collection is one persisted document (tickets, engineers, contacts).
// Writes are serialized; each write bumps the in-process revision.
type Collection[T any] struct {
	key      string
	backend  *Backend
	fallback func() T
	pub      Publisher

	mu       sync.Mutex
	revision uint64
}

func NewCollection[T any](key string, backend *Backend, fallback func() T, pub Publisher) *Collection[T] {
	return &Collection[T]{
		key:      key,
		backend:  backend,
		fallback: fallback,
		pub:      pub,
	}
}

// Load returns the current document and its revision. It never fails:
// remote, then local file, then the built-in default.
func (c *Collection[T]) Load(ctx context.Context) (T, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, _ := c.load(ctx)
	return v, c.revision
}

// Raw returns the encoded current document, as broadcast to clients
func (c *Collection[T]) Raw(ctx context.Context) ([]byte, uint64, error) {
	v, rev := c.Load(ctx)
	data, err := Encode(v)
	return data, rev, err
}

// Replace swaps the whole document. When expected is non-nil the write is
// rejected with ErrRevisionMismatch unless it equals the current revision.
func (c *Collection[T]) Replace(ctx context.Context, v T, expected *uint64) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if expected != nil && *expected != c.revision {
		return c.revision, fmt.Errorf("%w: have %d, got %d", ErrRevisionMismatch, c.revision, *expected)
	}
	return c.write(ctx, v)
}

// Update runs a read-modify-write of the document under the collection
// lock. Returning an error from fn aborts without writing, as does a
// stored document that cannot be decoded (ErrUnreadable).
func (c *Collection[T]) Update(ctx context.Context, fn func(T) (T, error)) (T, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, err := c.load(ctx)
	if err != nil {
		var zero T
		return zero, c.revision, err
	}
	next, err := fn(current)
	if err != nil {
		var zero T
		return zero, c.revision, err
	}
	rev, err := c.write(ctx, next)
	return next, rev, err
}

// load falls back to the default when nothing usable is stored. The error
// is ErrUnreadable when a stored copy exists but none could be decoded;
// the default is still returned for readers.
func (c *Collection[T]) load(ctx context.Context) (T, error) {
	var out T
	var rejected error
	src := c.backend.Load(ctx, c.key, func(data []byte) error {
		if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
			return ErrNotFound
		}
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			rejected = err
			return err
		}
		out = v
		return nil
	})
	if src != SourceDefault {
		return out, nil
	}
	out = c.fallback()
	if rejected != nil {
		return out, fmt.Errorf("%w: %s: %w", ErrUnreadable, c.key, rejected)
	}
	return out, nil
}

// write persists v and publishes it. A document that could not be stored
// anywhere is still published; the failure has been logged.
func (c *Collection[T]) write(ctx context.Context, v T) (uint64, error) {
	data, err := Encode(v)
	if err != nil {
		return c.revision, fmt.Errorf("failed to encode %s: %w", c.key, err)
	}

	if err := c.backend.Save(ctx, c.key, data); err != nil {
		slog.Error("collection write not persisted", "key", c.key, "error", err)
	}

	c.revision++
	if c.pub != nil {
		c.pub.Publish(c.key, data, c.revision)
	}
	return c.revision, nil
}

// Encode produces the stored form of a document: two-space indented JSON
func Encode(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

/*
collection.go - Typed JSON codec over a snapshot Backend

PURPOSE:
  Materializes an ordered collection of T to a Backend and rehydrates it.
  Every Save serializes the whole collection, pretty-printed, so the
  stored snapshot is always a complete and consistent copy.

ENCODING:
  - JSON, two-space indent, trailing newline
  - Map keys are emitted in sorted order by encoding/json, struct fields
    in declaration order, so the output is stable

LOAD RULES:
  - No snapshot:           empty collection
  - Snapshot "null":       empty collection
  - Unparsable snapshot:   *CorruptStoreError
*/
package collection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Collection is a named, ordered, JSON-serializable collection.
type Collection[T any] struct {
	name    string
	backend Backend
}

// New binds a collection name to a backend.
func New[T any](backend Backend, name string) *Collection[T] {
	return &Collection[T]{name: name, backend: backend}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string { return c.name }

// Backend returns the backend the collection is stored in.
func (c *Collection[T]) Backend() Backend { return c.backend }

// Load reads and decodes the full collection.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	data, err := c.backend.Read(ctx, c.name)
	if err != nil {
		return nil, fmt.Errorf("read collection %q: %w", c.name, err)
	}
	if data == nil {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &CorruptStoreError{Name: c.name, Err: err}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Save encodes and writes the full collection, replacing what was stored.
func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	snap, err := c.Snapshot(items)
	if err != nil {
		return err
	}
	if err := c.backend.Write(ctx, snap.Name, snap.Data); err != nil {
		return fmt.Errorf("write collection %q: %w", c.name, err)
	}
	return nil
}

// Snapshot encodes items without writing them, for use with WriteAll.
func (c *Collection[T]) Snapshot(items []T) (Snapshot, error) {
	if items == nil {
		items = []T{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		return Snapshot{}, fmt.Errorf("encode collection %q: %w", c.name, err)
	}
	return Snapshot{Name: c.name, Data: buf.Bytes()}, nil
}

/*
backend.go - Persistence interface for whole-collection snapshots

PURPOSE:
  Defines the interface between the domain (catalog, ledger) and durable
  storage. A backend stores one opaque snapshot per collection name and
  always replaces it in full. There is no partial write or append.

KEY INTERFACES:
  Backend:     Read/Write of a single named snapshot
  BatchWriter: Atomic write of several snapshots (optional capability)
  Versioner:   Per-collection write counter (optional capability)

SNAPSHOT CONTRACT:
  - Read of a name that was never written returns (nil, nil)
  - Write replaces the previous snapshot completely
  - After Write returns nil, the snapshot survives a process crash

IMPLEMENTATIONS:
  - store/jsonfile: one pretty-printed JSON file per collection
  - store/sqlite:   one row per collection, BatchWriter via SQL transaction
  - collection.Memory: in-memory, for tests

SEE ALSO:
  - collection.go: typed codec on top of Backend
*/
package collection

import (
	"context"
	"log"
)

// Backend persists full snapshots of named collections.
type Backend interface {
	// Read returns the last snapshot written for name, or nil if none exists.
	Read(ctx context.Context, name string) ([]byte, error)

	// Write replaces the snapshot for name.
	Write(ctx context.Context, name string, data []byte) error

	// Close releases resources.
	Close() error
}

// Snapshot is one named collection payload in a batch write.
type Snapshot struct {
	Name string
	Data []byte
}

// BatchWriter is implemented by backends that can replace several
// snapshots in one atomic step. Either all snapshots are written or none.
type BatchWriter interface {
	WriteBatch(ctx context.Context, snapshots []Snapshot) error
}

// Versioner is implemented by backends that count writes per collection.
type Versioner interface {
	// Version returns how many times name has been written, 0 if never.
	Version(ctx context.Context, name string) (int, error)
}

// WriteAll writes the snapshots atomically when the backend supports it.
// Otherwise they are written in order, and on failure every snapshot that
// was already written is restored to its previous content.
func WriteAll(ctx context.Context, b Backend, snapshots []Snapshot) error {
	if bw, ok := b.(BatchWriter); ok {
		return bw.WriteBatch(ctx, snapshots)
	}

	previous := make([]Snapshot, 0, len(snapshots))
	for _, s := range snapshots {
		old, err := b.Read(ctx, s.Name)
		if err != nil {
			return err
		}
		if err := b.Write(ctx, s.Name, s.Data); err != nil {
			rollback(ctx, b, previous)
			return err
		}
		previous = append(previous, Snapshot{Name: s.Name, Data: old})
	}
	return nil
}

func rollback(ctx context.Context, b Backend, previous []Snapshot) {
	for i := len(previous) - 1; i >= 0; i-- {
		data := previous[i].Data
		if data == nil {
			data = []byte("[]")
		}
		if err := b.Write(ctx, previous[i].Name, data); err != nil {
			log.Printf("[Store] Rollback of %q failed: %v", previous[i].Name, err)
		}
	}
}

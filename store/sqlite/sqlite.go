/*
Package sqlite provides a SQLite-backed implementation of collection.Backend.

PURPOSE:
  Alternate durable backend for the catalog and history collections. Each
  collection is one row holding its full JSON snapshot, so the snapshot
  contract is the same as the JSON file backend: every write replaces the
  whole collection.

INTERFACES IMPLEMENTED:
  collection.Backend:     Read/Write of a named snapshot
  collection.BatchWriter: Atomic multi-collection write (SQL transaction)

KEY TABLES:
  collections: name -> data (JSON text), version, updated_at

ATOMIC BATCHES:
  WriteBatch() runs every upsert inside one transaction. Deleting a tour
  rewrites both "tours" and "history"; with this backend either both
  snapshots change or neither does.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety and a single connection, which also
  keeps ":memory:" databases alive for the lifetime of the Store.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Readers don't block the writer
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/travel.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  tours := collection.New[booking.Tour](store, "tours")

SEE ALSO:
  - collection/backend.go: Interface definitions
  - store/jsonfile: File implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/travel-agency/collection"
)

// Store implements collection.Backend using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("[Store] Opened SQLite database %s", dbPath)
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Whole-collection snapshots
	CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// collection.Backend
// =============================================================================

func (s *Store) Read(ctx context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM collections WHERE name = ?`, name,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection: %w", err)
	}
	return []byte(data), nil
}

func (s *Store) Write(ctx context.Context, name string, data []byte) error {
	return s.WriteBatch(ctx, []collection.Snapshot{{Name: name, Data: data}})
}

// WriteBatch replaces every snapshot in one transaction.
func (s *Store) WriteBatch(ctx context.Context, snapshots []collection.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, snap := range snapshots {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO collections (name, data, version, updated_at)
			VALUES (?, ?, 1, ?)
			ON CONFLICT(name) DO UPDATE SET
				data = excluded.data,
				version = collections.version + 1,
				updated_at = excluded.updated_at
		`, snap.Name, string(snap.Data), now)
		if err != nil {
			return fmt.Errorf("failed to write collection %q: %w", snap.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Version returns how many times the named collection has been written.
// Zero means it was never written.
func (s *Store) Version(ctx context.Context, name string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var v int
	err := s.db.QueryRowContext(ctx,
		`SELECT version FROM collections WHERE name = ?`, name,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return v, err
}

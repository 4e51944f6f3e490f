/*
ledger.go - Booking history ledger

PURPOSE:
  The durable, ordered record of completed bookings and catalog removals.
  It is the authoritative booking ledger of the agency.

INVARIANTS:
  1. INSERTION ORDER: entries are listed in the order they were appended
  2. IMMUTABLE ENTRIES: an entry is never modified after insertion
  3. FULL SNAPSHOT: every mutation rewrites the whole "history" collection
  4. COMMIT AFTER PERSIST: the in-memory ledger only changes once the new
     snapshot has been written, so memory and disk never diverge

CORRECTIONS:
  DeleteAt removes one entry by position. It is an administrative
  correction, not a normal state transition. Later entries shift down.

SEE ALSO:
  - catalog.go: Delete appends removal entries here in the same write
  - collection/collection.go: snapshot codec
*/
package booking

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/warp/travel-agency/collection"
)

// HistoryCollection is the collection name of the ledger.
const HistoryCollection = "history"

// Ledger is the append-only booking history.
type Ledger struct {
	mu      sync.Mutex
	coll    *collection.Collection[HistoryEntry]
	entries []HistoryEntry
	now     func() time.Time
}

// OpenLedger loads the history collection from backend.
func OpenLedger(ctx context.Context, backend collection.Backend, now func() time.Time) (*Ledger, error) {
	coll := collection.New[HistoryEntry](backend, HistoryCollection)
	entries, err := coll.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if now == nil {
		now = time.Now
	}
	return &Ledger{coll: coll, entries: entries, now: now}, nil
}

// List returns a snapshot of all entries in insertion order.
func (l *Ledger) List() []HistoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]HistoryEntry, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Clone()
	}
	return out
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Append adds an entry, stamping it with the current time if it has no
// timestamp, and persists the ledger. A supplied timestamp must parse.
func (l *Ledger) Append(ctx context.Context, entry HistoryEntry) (HistoryEntry, error) {
	if entry == nil {
		entry = HistoryEntry{}
	}
	entry = entry.Clone()
	if _, ok := entry[FieldTimestamp]; !ok {
		entry[FieldTimestamp] = FormatTimestamp(l.now())
	} else if _, ok := entry.Timestamp(); !ok {
		return nil, fmt.Errorf("%w: timestamp must be an ISO-8601 string", ErrInvalidBooking)
	}
	entry, err := normalize(entry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBooking, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	next := append(l.cloneEntriesLocked(), entry)
	if err := l.coll.Save(ctx, next); err != nil {
		log.Printf("[Ledger] Failed to persist append: %v", err)
		return nil, err
	}
	l.entries = next

	log.Printf("[Ledger] Appended entry #%d (city=%q)", len(next)-1, entry.City())
	return entry.Clone(), nil
}

// RecordBooking appends a booking-shaped entry.
func (l *Ledger) RecordBooking(ctx context.Context, city string, adults, children int) (HistoryEntry, error) {
	if city == "" {
		return nil, fmt.Errorf("%w: city is required", ErrInvalidBooking)
	}
	if adults < 0 || children < 0 {
		return nil, fmt.Errorf("%w: occupant counts must not be negative", ErrInvalidBooking)
	}
	return l.Append(ctx, NewBookingEntry(city, adults, children, l.now()))
}

// DeleteAt removes the entry at index and persists the ledger.
func (l *Ledger) DeleteAt(ctx context.Context, index int) (HistoryEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || index >= len(l.entries) {
		return nil, &IndexError{Index: index, Len: len(l.entries)}
	}

	removed := l.entries[index]
	next := make([]HistoryEntry, 0, len(l.entries)-1)
	next = append(next, l.entries[:index]...)
	next = append(next, l.entries[index+1:]...)

	if err := l.coll.Save(ctx, next); err != nil {
		log.Printf("[Ledger] Failed to persist delete: %v", err)
		return nil, err
	}
	l.entries = next

	log.Printf("[Ledger] Deleted entry #%d (city=%q)", index, removed.City())
	return removed.Clone(), nil
}

func (l *Ledger) cloneEntriesLocked() []HistoryEntry {
	out := make([]HistoryEntry, len(l.entries), len(l.entries)+1)
	copy(out, l.entries)
	return out
}

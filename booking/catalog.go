/*
catalog.go - Tour catalog keyed by city

PURPOSE:
  CRUD over the "tours" collection. Every mutation persists the full
  catalog before the in-memory copy is replaced.

INVARIANTS:
  1. UNIQUE CITY: at most one tour per city. Create and rename onto an
     existing city fail with ErrDuplicateCity.
  2. INSERTION ORDER: List returns tours in the order they were created.
  3. NOTHING IS DISCARDED: Delete moves the tour into the history ledger.

DELETE IS ONE LOGICAL WRITE:
  Delete builds the next catalog and the next ledger, then writes both
  snapshots with collection.WriteAll. A backend with BatchWriter commits
  them in one transaction; otherwise a failed ledger write restores the
  previous catalog snapshot. Memory is only updated after success.

LOCK ORDER:
  Catalog.mu before Ledger.mu.
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

// ToursCollection is the collection name of the catalog.
const ToursCollection = "tours"

// Catalog manages tours.
type Catalog struct {
	mu     sync.Mutex
	coll   *collection.Collection[Tour]
	tours  []Tour
	ledger *Ledger
	now    func() time.Time
}

// OpenCatalog loads the tours collection. Removed tours are appended to
// ledger, which must live in the same backend.
func OpenCatalog(ctx context.Context, backend collection.Backend, ledger *Ledger, now func() time.Time) (*Catalog, error) {
	coll := collection.New[Tour](backend, ToursCollection)
	tours, err := coll.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tours: %w", err)
	}
	if now == nil {
		now = time.Now
	}
	return &Catalog{coll: coll, tours: tours, ledger: ledger, now: now}, nil
}

// List returns every tour in insertion order.
func (c *Catalog) List() []Tour {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Tour, len(c.tours))
	for i, t := range c.tours {
		out[i] = t.Clone()
	}
	return out
}

// Get returns the tour for city.
func (c *Catalog) Get(city string) (Tour, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(city)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrTourNotFound, city)
	}
	return c.tours[i].Clone(), nil
}

// Create adds a tour and persists the catalog.
func (c *Catalog) Create(ctx context.Context, tour Tour) (Tour, error) {
	if err := tour.Validate(); err != nil {
		return nil, err
	}
	tour, err := normalize(tour)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTour, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.indexLocked(tour.City()) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateCity, tour.City())
	}

	next := append(c.cloneToursLocked(), tour)
	if err := c.coll.Save(ctx, next); err != nil {
		log.Printf("[Catalog] Failed to persist create: %v", err)
		return nil, err
	}
	c.tours = next

	log.Printf("[Catalog] Created tour %q", tour.City())
	return tour.Clone(), nil
}

// Update shallow-merges patch over the tour for city and persists the
// catalog. A patch may rename the tour, but not onto another tour's city.
func (c *Catalog) Update(ctx context.Context, city string, patch Tour) (Tour, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(city)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrTourNotFound, city)
	}

	merged := c.tours[i].Merge(patch)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	merged, err := normalize(merged)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTour, err)
	}
	if renamed := merged.City(); renamed != city {
		if j := c.indexLocked(renamed); j >= 0 {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCity, renamed)
		}
	}

	next := c.cloneToursLocked()
	next[i] = merged
	if err := c.coll.Save(ctx, next); err != nil {
		log.Printf("[Catalog] Failed to persist update: %v", err)
		return nil, err
	}
	c.tours = next

	log.Printf("[Catalog] Updated tour %q", city)
	return merged.Clone(), nil
}

// Delete removes the tour for city, appends a removal entry to the ledger
// and persists both collections as one logical write.
func (c *Catalog) Delete(ctx context.Context, city string) (Tour, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(city)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrTourNotFound, city)
	}
	removed := c.tours[i]

	nextTours := make([]Tour, 0, len(c.tours)-1)
	nextTours = append(nextTours, c.tours[:i]...)
	nextTours = append(nextTours, c.tours[i+1:]...)

	c.ledger.mu.Lock()
	defer c.ledger.mu.Unlock()

	entry := NewRemovalEntry(removed, c.now())
	nextHistory := append(c.ledger.cloneEntriesLocked(), entry)

	toursSnap, err := c.coll.Snapshot(nextTours)
	if err != nil {
		return nil, err
	}
	historySnap, err := c.ledger.coll.Snapshot(nextHistory)
	if err != nil {
		return nil, err
	}
	if err := collection.WriteAll(ctx, c.coll.Backend(), []collection.Snapshot{toursSnap, historySnap}); err != nil {
		log.Printf("[Catalog] Failed to persist delete of %q: %v", city, err)
		return nil, fmt.Errorf("delete tour %s: %w", city, err)
	}
	c.tours = nextTours
	c.ledger.entries = nextHistory

	log.Printf("[Catalog] Deleted tour %q (moved to history)", city)
	return removed.Clone(), nil
}

// Seed bulk-loads tours into an empty catalog. It returns the number of
// tours written; a non-empty catalog is left unchanged.
func (c *Catalog) Seed(ctx context.Context, tours []Tour) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.tours) > 0 {
		return 0, nil
	}

	next := make([]Tour, 0, len(tours))
	seen := make(map[string]bool, len(tours))
	for _, t := range tours {
		if err := t.Validate(); err != nil {
			return 0, err
		}
		if seen[t.City()] {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateCity, t.City())
		}
		seen[t.City()] = true
		n, err := normalize(t)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidTour, err)
		}
		next = append(next, n)
	}

	if err := c.coll.Save(ctx, next); err != nil {
		return 0, err
	}
	c.tours = next

	log.Printf("[Catalog] Seeded %d tours", len(next))
	return len(next), nil
}

func (c *Catalog) indexLocked(city string) int {
	for i, t := range c.tours {
		if t.City() == city {
			return i
		}
	}
	return -1
}

func (c *Catalog) cloneToursLocked() []Tour {
	out := make([]Tour, len(c.tours), len(c.tours)+1)
	copy(out, c.tours)
	return out
}

package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/warp/travel-agency/collection"
)

// Agency owns the catalog, the history ledger, the quote log and the
// booking pipeline for one backend. Construct it once at startup and
// inject it into handlers.
type Agency struct {
	Catalog  *Catalog
	Ledger   *Ledger
	Quotes   *QuoteLog
	Pipeline *Pipeline

	backend collection.Backend
}

// Option configures an Agency.
type Option func(*options)

type options struct {
	now        func() time.Time
	quoteLimit int
	cost       CostFunc
	newID      func() string
}

// WithClock sets the time source used for timestamps (for testing).
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithQuoteLimit caps the number of tour results held in memory.
func WithQuoteLimit(n int) Option {
	return func(o *options) {
		o.quoteLimit = n
	}
}

// WithCostFunc replaces the default OccupancyCost formula.
func WithCostFunc(f CostFunc) Option {
	return func(o *options) {
		o.cost = f
	}
}

// WithIDGenerator sets the tour result ID source (for testing).
func WithIDGenerator(f func() string) Option {
	return func(o *options) {
		o.newID = f
	}
}

// Open loads the durable collections from backend and wires the pipeline
// to weather.
func Open(ctx context.Context, backend collection.Backend, weather WeatherProvider, opts ...Option) (*Agency, error) {
	o := options{now: time.Now, cost: OccupancyCost}
	for _, opt := range opts {
		opt(&o)
	}

	ledger, err := OpenLedger(ctx, backend, o.now)
	if err != nil {
		return nil, err
	}
	catalog, err := OpenCatalog(ctx, backend, ledger, o.now)
	if err != nil {
		return nil, err
	}

	quotes := NewQuoteLog(o.quoteLimit)
	pipeline := NewPipeline(catalog, weather, quotes)
	pipeline.Cost = o.cost
	pipeline.Now = o.now
	if o.newID != nil {
		pipeline.NewID = o.newID
	}

	return &Agency{
		Catalog:  catalog,
		Ledger:   ledger,
		Quotes:   quotes,
		Pipeline: pipeline,
		backend:  backend,
	}, nil
}

// Versions reports the write count of each durable collection, or nil if
// the backend does not track versions.
func (a *Agency) Versions(ctx context.Context) (map[string]int, error) {
	v, ok := a.backend.(collection.Versioner)
	if !ok {
		return nil, nil
	}
	out := make(map[string]int, 2)
	for _, name := range []string{ToursCollection, HistoryCollection} {
		n, err := v.Version(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("version of %s: %w", name, err)
		}
		out[name] = n
	}
	return out, nil
}

// Close waits for any in-flight catalog or ledger write to finish, then
// closes the backend.
func (a *Agency) Close() error {
	a.Catalog.mu.Lock()
	defer a.Catalog.mu.Unlock()
	a.Ledger.mu.Lock()
	defer a.Ledger.mu.Unlock()

	return a.backend.Close()
}

package booking

import "sync"

// QuoteLog is the process-lifetime log of tour results. It is deliberately
// not persisted: it starts empty on every restart. Bookings that must
// survive are recorded in the Ledger.
type QuoteLog struct {
	mu      sync.RWMutex
	results []TourResult
	limit   int
}

// NewQuoteLog returns an empty log. A positive limit keeps only the most
// recent limit results.
func NewQuoteLog(limit int) *QuoteLog {
	return &QuoteLog{limit: limit}
}

// Append records a result.
func (q *QuoteLog) Append(r TourResult) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.results = append(q.results, r)
	if q.limit > 0 && len(q.results) > q.limit {
		q.results = append([]TourResult(nil), q.results[len(q.results)-q.limit:]...)
	}
}

// List returns results oldest first.
func (q *QuoteLog) List() []TourResult {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]TourResult, len(q.results))
	copy(out, q.results)
	return out
}

// Len returns the number of results held.
func (q *QuoteLog) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.results)
}

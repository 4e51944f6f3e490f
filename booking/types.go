/*
types.go - Core records of the travel agency

RECORDS:
  Tour:         Catalog entry keyed by city, schema-flexible beyond "city"
  HistoryEntry: Immutable ledger record of a booking or a catalog removal
  TourResult:   Priced, weather-annotated output of one booking request
  Weather:      Temperature (metric) and a short conditions text

SCHEMA FLEXIBILITY:
  Tours and history entries are JSON objects. Callers may add any fields
  at creation time; only "city" (and "timestamp" on history entries) has
  meaning to this package. Values are normalized through a JSON round
  trip on write so the in-memory copy always equals what a reload from
  disk would produce.

TIMESTAMPS:
  History entries: ISO-8601 UTC with milliseconds, "2026-10-16T09:30:00.000Z"
  Tour results:    human form, "October 16th 2026, 9:30:00 am"
*/
package booking

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	FieldCity      = "city"
	FieldTimestamp = "timestamp"
	FieldAdults    = "adults"
	FieldChildren  = "children"
	FieldBasePrice = "basePrice"
	FieldPrice     = "price"
)

// =============================================================================
// TOUR
// =============================================================================

// Tour is one bookable catalog offering.
type Tour map[string]any

// City returns the tour's key, or "" if it is missing or not a string.
func (t Tour) City() string {
	city, _ := t[FieldCity].(string)
	return city
}

// Clone returns a shallow copy.
func (t Tour) Clone() Tour {
	out := make(Tour, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Merge returns a copy of t with every field of patch written over it.
// Fields absent from patch are kept.
func (t Tour) Merge(patch Tour) Tour {
	out := t.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Validate checks that the tour has a non-empty string city.
func (t Tour) Validate() error {
	if t == nil {
		return fmt.Errorf("%w: empty tour", ErrInvalidTour)
	}
	if _, ok := t[FieldCity].(string); !ok {
		return fmt.Errorf("%w: city must be a string", ErrInvalidTour)
	}
	if t.City() == "" {
		return fmt.Errorf("%w: city is required", ErrInvalidTour)
	}
	return nil
}

// =============================================================================
// HISTORY ENTRY
// =============================================================================

// HistoryEntry records a completed booking or a catalog removal.
type HistoryEntry map[string]any

// NewBookingEntry builds a booking-shaped entry.
func NewBookingEntry(city string, adults, children int, at time.Time) HistoryEntry {
	return HistoryEntry{
		FieldCity:      city,
		FieldAdults:    float64(adults),
		FieldChildren:  float64(children),
		FieldTimestamp: FormatTimestamp(at),
	}
}

// NewRemovalEntry builds a removal-shaped entry: every field of the removed
// tour plus the removal time.
func NewRemovalEntry(removed Tour, at time.Time) HistoryEntry {
	entry := HistoryEntry(removed.Clone())
	entry[FieldTimestamp] = FormatTimestamp(at)
	return entry
}

// City returns the entry's city, or "".
func (e HistoryEntry) City() string {
	city, _ := e[FieldCity].(string)
	return city
}

// Timestamp parses the entry's timestamp.
func (e HistoryEntry) Timestamp() (time.Time, bool) {
	s, ok := e[FieldTimestamp].(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Clone returns a shallow copy.
func (e HistoryEntry) Clone() HistoryEntry {
	out := make(HistoryEntry, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// =============================================================================
// TOUR RESULT
// =============================================================================

// Weather is the part of a weather report a booking needs.
type Weather struct {
	Temperature float64 `json:"temperature"`
	Conditions  string  `json:"conditions"`
}

// TourResult is the output of one booking computation.
type TourResult struct {
	ID        string  `json:"id"`
	Tour      Tour    `json:"tour"`
	Cost      float64 `json:"cost"`
	Weather   Weather `json:"weather"`
	Timestamp string  `json:"timestamp"`
}

// =============================================================================
// TIME FORMATS
// =============================================================================

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders a history timestamp in UTC with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

// HumanTimestamp renders a tour result timestamp, e.g.
// "October 16th 2026, 3:04:05 pm".
func HumanTimestamp(t time.Time) string {
	return t.Format("January ") + humanize.Ordinal(t.Day()) + t.Format(" 2006, 3:04:05 pm")
}

// =============================================================================
// NORMALIZATION
// =============================================================================

// normalize runs a record through JSON so that numbers become float64,
// nested values become map[string]any / []any, and anything that cannot be
// persisted is rejected up front.
func normalize[M ~map[string]any](m M) (M, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var out M
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

/*
errors.go - Error types for the catalog, ledger and booking pipeline

ERROR CATEGORIES:
  1. Not found     - ErrTourNotFound
  2. Client errors - ErrInvalidTour, ErrInvalidBooking, ErrInvalidIndex,
                     ErrDuplicateCity
  3. External      - ErrWeatherLookup
  4. Storage       - collection.ErrCorruptStore and backend errors (wrapped)

USAGE:
  if booking.IsNotFound(err) {
      // 404
  }
*/
package booking

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrTourNotFound is returned when no tour has the requested city.
	ErrTourNotFound = errors.New("tour not found")

	// ErrDuplicateCity is returned when a create or rename would give two
	// tours the same city.
	ErrDuplicateCity = errors.New("tour already exists for city")

	// ErrInvalidTour is returned when a tour has no usable city.
	ErrInvalidTour = errors.New("invalid tour")

	// ErrInvalidIndex is returned when a history position is missing or out of range.
	ErrInvalidIndex = errors.New("invalid index")

	// ErrInvalidBooking is returned when booking input cannot be priced.
	ErrInvalidBooking = errors.New("invalid booking request")

	// ErrWeatherLookup is returned when the weather collaborator fails.
	ErrWeatherLookup = errors.New("weather lookup failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// IndexError reports a history position outside [0, Len).
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("invalid index %d (history has %d entries)", e.Index, e.Len)
}

func (e *IndexError) Unwrap() error {
	return ErrInvalidIndex
}

// WeatherLookupError wraps the collaborator's failure for a city.
type WeatherLookupError struct {
	City string
	Err  error
}

func (e *WeatherLookupError) Error() string {
	return fmt.Sprintf("weather lookup for %q failed: %v", e.City, e.Err)
}

func (e *WeatherLookupError) Unwrap() []error {
	return []error{ErrWeatherLookup, e.Err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing tour.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTourNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTour) ||
		errors.Is(err, ErrInvalidBooking) ||
		errors.Is(err, ErrInvalidIndex)
}

// IsConflict returns true if the error is a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateCity)
}

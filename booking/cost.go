package booking

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ChildRate is the fraction of the base price charged per child.
var ChildRate = decimal.NewFromFloat(0.5)

// BookingRequest is the validated form of a submitted booking.
type BookingRequest struct {
	City     string
	Adults   int
	Children int

	// BasePrice is nil when the request did not carry one.
	BasePrice *decimal.Decimal

	// Fields holds everything that was submitted, for the tour result.
	Fields Tour
}

// CostFunc prices a booking. Implementations must be pure: no I/O, no
// randomness, and defined for every non-negative occupant count.
type CostFunc func(req BookingRequest, basePrice decimal.Decimal) decimal.Decimal

// OccupancyCost charges the base price per adult and ChildRate of it per child:
//
//	cost = basePrice * (adults + 0.5 * children)
func OccupancyCost(req BookingRequest, basePrice decimal.Decimal) decimal.Decimal {
	adults := decimal.NewFromInt(int64(req.Adults))
	children := decimal.NewFromInt(int64(req.Children)).Mul(ChildRate)
	return basePrice.Mul(adults.Add(children)).Round(2)
}

// ParseBookingRequest validates submitted fields. Numbers may arrive as JSON
// numbers or as strings (HTML form posts). Missing occupant counts are zero.
func ParseBookingRequest(fields map[string]any) (BookingRequest, error) {
	req := BookingRequest{Fields: Tour(fields).Clone()}

	city, _ := fields[FieldCity].(string)
	req.City = strings.TrimSpace(city)
	if req.City == "" {
		return BookingRequest{}, fmt.Errorf("%w: city is required", ErrInvalidBooking)
	}

	var err error
	if req.Adults, err = parseCount(fields, FieldAdults); err != nil {
		return BookingRequest{}, err
	}
	if req.Children, err = parseCount(fields, FieldChildren); err != nil {
		return BookingRequest{}, err
	}

	if raw, ok := fields[FieldBasePrice]; ok && raw != nil && raw != "" {
		price, ok := ParseNumber(raw)
		if !ok || price.IsNegative() {
			return BookingRequest{}, fmt.Errorf("%w: basePrice must be a non-negative number", ErrInvalidBooking)
		}
		req.BasePrice = &price
	}
	return req, nil
}

// PriceFromTour extracts a base price from a catalog tour, preferring
// "basePrice" over "price".
func PriceFromTour(t Tour) (decimal.Decimal, bool) {
	for _, key := range []string{FieldBasePrice, FieldPrice} {
		if raw, ok := t[key]; ok {
			if d, ok := ParseNumber(raw); ok && !d.IsNegative() {
				return d, true
			}
		}
	}
	return decimal.Zero, false
}

// ParseNumber converts JSON numbers and numeric strings to a decimal.
func ParseNumber(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

// ParseCount converts a JSON number or numeric string to a non-negative int.
func ParseCount(v any) (int, bool) {
	d, ok := ParseNumber(v)
	if !ok || d.IsNegative() || !d.Equal(d.Truncate(0)) {
		return 0, false
	}
	n, err := strconv.Atoi(d.String())
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseCount(fields map[string]any, key string) (int, error) {
	raw, ok := fields[key]
	if !ok || raw == nil || raw == "" {
		return 0, nil
	}
	n, ok := ParseCount(raw)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a non-negative whole number", ErrInvalidBooking, key)
	}
	return n, nil
}

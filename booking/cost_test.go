package booking_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/travel-agency/booking"
)

func TestOccupancyCost(t *testing.T) {
	tests := []struct {
		base     string
		adults   int
		children int
		want     string
	}{
		{"100", 2, 2, "300"},
		{"100", 0, 0, "0"},
		{"100", 0, 3, "150"},
		{"99.99", 1, 1, "149.99"},
		{"0", 5, 5, "0"},
	}
	for _, tt := range tests {
		req := booking.BookingRequest{Adults: tt.adults, Children: tt.children}
		got := booking.OccupancyCost(req, decimal.RequireFromString(tt.base))
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "%s x (%d, %d) = %s", tt.base, tt.adults, tt.children, got)
	}
}

func TestParseCount(t *testing.T) {
	valid := map[any]int{2.0: 2, "3": 3, " 4 ": 4, 0.0: 0, json.Number("5"): 5}
	for in, want := range valid {
		got, ok := booking.ParseCount(in)
		assert.True(t, ok, "%v", in)
		assert.Equal(t, want, got)
	}

	for _, in := range []any{-1.0, 1.5, "x", true, nil} {
		_, ok := booking.ParseCount(in)
		assert.False(t, ok, "%v", in)
	}
}

func TestPriceFromTour(t *testing.T) {
	p, ok := booking.PriceFromTour(booking.Tour{"basePrice": 120.0, "price": 1.0})
	assert.True(t, ok)
	assert.True(t, p.Equal(decimal.NewFromInt(120)))

	p, ok = booking.PriceFromTour(booking.Tour{"price": "75.5"})
	assert.True(t, ok)
	assert.True(t, p.Equal(decimal.RequireFromString("75.5")))

	_, ok = booking.PriceFromTour(booking.Tour{"city": "Rome"})
	assert.False(t, ok)
}

func TestHumanTimestamp(t *testing.T) {
	tests := map[time.Time]string{
		time.Date(2026, 10, 16, 15, 4, 5, 0, time.UTC): "October 16th 2026, 3:04:05 pm",
		time.Date(2024, 3, 1, 0, 0, 9, 0, time.UTC):    "March 1st 2024, 12:00:09 am",
		time.Date(2024, 5, 22, 9, 30, 0, 0, time.UTC):  "May 22nd 2024, 9:30:00 am",
	}
	for in, want := range tests {
		assert.Equal(t, want, booking.HumanTimestamp(in))
	}
}

func TestFormatTimestamp(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	got := booking.FormatTimestamp(time.Date(2026, 1, 2, 4, 5, 6, 7_000_000, loc))
	assert.Equal(t, "2026-01-02T03:05:06.007Z", got)
}

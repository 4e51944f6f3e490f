package booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/warp/travel-agency/booking"
	"github.com/warp/travel-agency/collection"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var fixedNow = time.Date(2026, time.October, 16, 15, 4, 5, 0, time.UTC)

const fixedStamp = "2026-10-16T15:04:05.000Z"

func fixedClock() time.Time { return fixedNow }

func stubWeather(temp float64, conditions string) booking.WeatherFunc {
	return func(context.Context, string) (booking.Weather, error) {
		return booking.Weather{Temperature: temp, Conditions: conditions}, nil
	}
}

func newTestAgency(t *testing.T, weather booking.WeatherProvider) (*booking.Agency, *collection.Memory) {
	t.Helper()
	mem := collection.NewMemory()
	if weather == nil {
		weather = stubWeather(20, "clear")
	}
	agency, err := booking.Open(context.Background(), mem, weather,
		booking.WithClock(fixedClock),
		booking.WithIDGenerator(func() string { return "result-1" }),
	)
	require.NoError(t, err)
	t.Cleanup(func() { agency.Close() })
	return agency, mem
}

func reopen(t *testing.T, mem *collection.Memory) *booking.Agency {
	t.Helper()
	agency, err := booking.Open(context.Background(), mem, stubWeather(0, ""), booking.WithClock(fixedClock))
	require.NoError(t, err)
	return agency
}

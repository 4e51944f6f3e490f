package weather_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/travel-agency/booking"
	"github.com/warp/travel-agency/weather"
)

const parisPayload = `{
  "name": "Paris",
  "sys": {"country": "FR"},
  "main": {"temp": 20.5, "feels_like": 19.8, "humidity": 61},
  "weather": [{"main": "Clear", "description": "clear sky"}],
  "wind": {"speed": 3.1}
}`

func newFakeAPI(t *testing.T, status int, body string) (*httptest.Server, *url.URL) {
	t.Helper()
	seen := &url.URL{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = *r.URL
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

func TestClient_Current_Success(t *testing.T) {
	srv, seen := newFakeAPI(t, http.StatusOK, parisPayload)
	client := weather.NewClient(weather.Config{BaseURL: srv.URL, APIKey: "k123"})

	got, err := client.Current(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, booking.Weather{Temperature: 20.5, Conditions: "clear sky"}, got)

	assert.Equal(t, "/data/2.5/weather", seen.Path)
	assert.Equal(t, "Paris", seen.Query().Get("q"))
	assert.Equal(t, "k123", seen.Query().Get("appid"))
	assert.Equal(t, "metric", seen.Query().Get("units"))
}

func TestClient_Lookup_Report(t *testing.T) {
	srv, _ := newFakeAPI(t, http.StatusOK, parisPayload)
	client := weather.NewClient(weather.Config{BaseURL: srv.URL})

	got, err := client.Lookup(context.Background(), "paris")
	require.NoError(t, err)
	assert.Equal(t, weather.Report{
		City:        "Paris",
		Country:     "FR",
		Temperature: 20.5,
		FeelsLike:   19.8,
		Humidity:    61,
		Conditions:  "clear sky",
		WindSpeed:   3.1,
	}, got)
}

func TestClient_Current_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"city not found", http.StatusNotFound, `{"cod":"404","message":"city not found"}`, "city not found"},
		{"unauthorized", http.StatusUnauthorized, `oops`, "status 401"},
		{"not json", http.StatusOK, `<html>`, "malformed"},
		{"no weather array", http.StatusOK, `{"main":{"temp":1},"weather":[]}`, "missing weather"},
		{"no temperature", http.StatusOK, `{"main":{},"weather":[{"description":"rain"}]}`, "missing main.temp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newFakeAPI(t, tt.status, tt.body)
			client := weather.NewClient(weather.Config{BaseURL: srv.URL})

			_, err := client.Current(context.Background(), "Nowhere")

			require.Error(t, err)
			assert.ErrorIs(t, err, booking.ErrWeatherLookup)
			assert.Contains(t, err.Error(), tt.want)
			var lookupErr *booking.WeatherLookupError
			require.ErrorAs(t, err, &lookupErr)
			assert.Equal(t, "Nowhere", lookupErr.City)
		})
	}
}

func TestClient_Current_Unreachable(t *testing.T) {
	srv, _ := newFakeAPI(t, http.StatusOK, parisPayload)
	base := srv.URL
	srv.Close()

	client := weather.NewClient(weather.Config{BaseURL: base, Timeout: time.Second})
	_, err := client.Current(context.Background(), "Paris")
	assert.ErrorIs(t, err, booking.ErrWeatherLookup)
}

func TestClient_Current_EmptyCity(t *testing.T) {
	client := weather.NewClient(weather.Config{BaseURL: "http://127.0.0.1:1"})

	_, err := client.Current(context.Background(), "  ")
	assert.ErrorIs(t, err, booking.ErrWeatherLookup)
}

func TestClient_RateLimit_RespectsContext(t *testing.T) {
	srv, _ := newFakeAPI(t, http.StatusOK, parisPayload)
	client := weather.NewClient(weather.Config{BaseURL: srv.URL, RatePerMinute: 1})

	_, err := client.Current(context.Background(), "Paris")
	require.NoError(t, err)

	// The bucket is empty for the next minute; a short deadline must fail fast.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.Current(ctx, "Paris")
	assert.ErrorIs(t, err, booking.ErrWeatherLookup)
}

func TestClient_ImplementsProvider(t *testing.T) {
	var _ booking.WeatherProvider = weather.NewClient(weather.Config{})
}

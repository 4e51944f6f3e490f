/*
Package weather implements the weather collaborator on OpenWeatherMap's
current-weather endpoint.

REQUEST:
  GET {base}/data/2.5/weather?q={city}&appid={key}&units=metric

RESPONSE FIELDS USED:
  main.temp                -> Temperature (°C)
  weather[0].description   -> Conditions

FAILURES:
  Transport errors, non-200 statuses (e.g. 404 "city not found") and
  responses missing main.temp or weather[0] all return a
  *booking.WeatherLookupError. Nothing is retried.

THROTTLING:
  Outbound calls share one token bucket (RatePerMinute, burst 1 per
  second of budget) so a burst of bookings cannot exhaust the API quota.
  Waiting respects the request context.
*/
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/warp/travel-agency/booking"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is OpenWeatherMap's API root.
const DefaultBaseURL = "https://api.openweathermap.org"

// Config configures a Client.
type Config struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	RatePerMinute int
}

// Client calls OpenWeatherMap.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient returns a client. Zero fields in cfg get defaults: the public
// API root, a 10s timeout and no rate limit.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerMinute > 0 {
		burst := cfg.RatePerMinute / 60
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RatePerMinute)/60), burst)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
	}
}

// Report is a normalized current-weather reading.
type Report struct {
	City        string  `json:"city"`
	Country     string  `json:"country,omitempty"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feelsLike"`
	Humidity    int     `json:"humidity"`
	Conditions  string  `json:"conditions"`
	WindSpeed   float64 `json:"windSpeed"`
}

// apiResponse is the subset of the OpenWeatherMap payload we read.
type apiResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main *struct {
		Temp      *float64 `json:"temp"`
		FeelsLike float64  `json:"feels_like"`
		Humidity  int      `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

type apiError struct {
	Message string `json:"message"`
}

// Current implements booking.WeatherProvider.
func (c *Client) Current(ctx context.Context, city string) (booking.Weather, error) {
	r, err := c.Lookup(ctx, city)
	if err != nil {
		return booking.Weather{}, err
	}
	return booking.Weather{Temperature: r.Temperature, Conditions: r.Conditions}, nil
}

// Lookup fetches the current weather for city.
func (c *Client) Lookup(ctx context.Context, city string) (Report, error) {
	r, err := c.lookup(ctx, city)
	if err != nil {
		return Report{}, &booking.WeatherLookupError{City: city, Err: err}
	}
	return r, nil
}

func (c *Client) lookup(ctx context.Context, city string) (Report, error) {
	if strings.TrimSpace(city) == "" {
		return Report{}, errors.New("city is required")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return Report{}, fmt.Errorf("rate limit: %w", err)
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/data/2.5/weather?"+q.Encode(), nil)
	if err != nil {
		return Report{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Report{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Report{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Weather] %s: status %d", city, resp.StatusCode)
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return Report{}, fmt.Errorf("status %d: %s", resp.StatusCode, apiErr.Message)
		}
		return Report{}, fmt.Errorf("status %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return Report{}, fmt.Errorf("malformed response: %w", err)
	}
	if payload.Main == nil || payload.Main.Temp == nil {
		return Report{}, errors.New("malformed response: missing main.temp")
	}
	if len(payload.Weather) == 0 {
		return Report{}, errors.New("malformed response: missing weather description")
	}

	name := payload.Name
	if name == "" {
		name = city
	}
	return Report{
		City:        name,
		Country:     payload.Sys.Country,
		Temperature: *payload.Main.Temp,
		FeelsLike:   payload.Main.FeelsLike,
		Humidity:    payload.Main.Humidity,
		Conditions:  payload.Weather[0].Description,
		WindSpeed:   payload.Wind.Speed,
	}, nil
}

/*
pipeline.go - Booking computation

PURPOSE:
  Turns a submitted booking into a priced, weather-annotated TourResult.

REQUEST FLOW:
  1. Parse and validate the submitted fields
  2. Resolve the base price (request, else the catalog tour for the city)
  3. Compute the cost with a pure CostFunc
  4. Look up the current weather for the city (blocking, external)
  5. Compose the TourResult and append it to the QuoteLog

FAILURE ISOLATION:
  Any failure before step 5 returns an error and records nothing. There is
  no partial result: a weather failure fails the whole booking.
*/
package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WeatherProvider is the external weather collaborator.
type WeatherProvider interface {
	Current(ctx context.Context, city string) (Weather, error)
}

// WeatherFunc adapts a function to WeatherProvider.
type WeatherFunc func(ctx context.Context, city string) (Weather, error)

func (f WeatherFunc) Current(ctx context.Context, city string) (Weather, error) {
	return f(ctx, city)
}

// Pipeline computes tour results.
type Pipeline struct {
	Catalog *Catalog
	Weather WeatherProvider
	Quotes  *QuoteLog
	Cost    CostFunc
	Now     func() time.Time
	NewID   func() string
}

// NewPipeline wires a pipeline with the default cost formula.
func NewPipeline(catalog *Catalog, weather WeatherProvider, quotes *QuoteLog) *Pipeline {
	return &Pipeline{
		Catalog: catalog,
		Weather: weather,
		Quotes:  quotes,
		Cost:    OccupancyCost,
		Now:     time.Now,
		NewID:   uuid.NewString,
	}
}

// Book runs the pipeline for the submitted fields.
func (p *Pipeline) Book(ctx context.Context, fields map[string]any) (TourResult, error) {
	req, err := ParseBookingRequest(fields)
	if err != nil {
		return TourResult{}, err
	}

	basePrice, err := p.basePrice(req)
	if err != nil {
		return TourResult{}, err
	}
	cost := p.Cost(req, basePrice)

	weather, err := p.Weather.Current(ctx, req.City)
	if err != nil {
		var lookupErr *WeatherLookupError
		if !errors.As(err, &lookupErr) {
			err = &WeatherLookupError{City: req.City, Err: err}
		}
		log.Printf("[Booking] Weather lookup failed for %q: %v", req.City, err)
		return TourResult{}, err
	}

	tour, err := normalize(req.Fields)
	if err != nil {
		return TourResult{}, fmt.Errorf("%w: %v", ErrInvalidBooking, err)
	}

	result := TourResult{
		ID:        p.NewID(),
		Tour:      tour,
		Cost:      cost.InexactFloat64(),
		Weather:   weather,
		Timestamp: HumanTimestamp(p.Now()),
	}
	p.Quotes.Append(result)

	log.Printf("[Booking] Priced tour to %q: cost=%s, %.1f°C %s", req.City, cost.StringFixed(2), weather.Temperature, weather.Conditions)
	return result, nil
}

func (p *Pipeline) basePrice(req BookingRequest) (decimal.Decimal, error) {
	if req.BasePrice != nil {
		return *req.BasePrice, nil
	}
	if p.Catalog != nil {
		if tour, err := p.Catalog.Get(req.City); err == nil {
			if price, ok := PriceFromTour(tour); ok {
				return price, nil
			}
		}
	}
	return decimal.Zero, fmt.Errorf("%w: no basePrice given and no catalog price for %s", ErrInvalidBooking, req.City)
}

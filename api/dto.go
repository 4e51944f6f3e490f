/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON envelopes of the HTTP surface. Tours and history
  entries are schema-flexible, so they pass through as booking.Tour and
  booking.HistoryEntry; only the envelopes are fixed here.

NAMING CONVENTION:
  - *Response: response envelopes
  - *Request:  request bodies with a fixed shape

VALIDATION:
  Validation is done in the booking package, not in DTOs.
*/
package api

import (
	"github.com/warp/travel-agency/booking"
	"github.com/warp/travel-agency/weather"
)

// ToursResponse is the body of GET /tours.
type ToursResponse struct {
	Tours []booking.Tour `json:"tours"`
}

// TourResponse is the body of GET /tours/{city}.
type TourResponse struct {
	Tour booking.Tour `json:"tour"`
}

// TourMutationResponse is the body of POST, PUT and DELETE on tours.
type TourMutationResponse struct {
	Message string       `json:"message"`
	Tour    booking.Tour `json:"tour"`
}

// HistoryResponse is the body of GET /history.
type HistoryResponse struct {
	History []booking.HistoryEntry `json:"history"`
}

// MessageResponse carries a confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// TravelAgencyResponse is the body of POST /travelagency.
type TravelAgencyResponse struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	TourResult *booking.TourResult `json:"tourResult,omitempty"`
}

// TourHistoryResponse is the body of GET /tourhistory.
type TourHistoryResponse struct {
	Success     bool                 `json:"success"`
	TourHistory []booking.TourResult `json:"tourHistory"`
}

// WeatherResponse is the body of GET /getWeather.
type WeatherResponse = weather.Report

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Tours   int    `json:"tours"`
	History int    `json:"history"`
	Quotes  int    `json:"quotes"`

	// Versions is set when the backend counts writes per collection.
	Versions map[string]int `json:"versions,omitempty"`
}

// ErrorResponse represents an error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the booking frontend

ROUTES:
  /tours, /tours/{city}      Catalog
  /history                   Booking history ledger
  /saveBookingToHistory      Record a booking
  /deleteHistoryEntry        Correct the ledger by position
  /travelagency              Price a booking with live weather
  /tourhistory               Tour results since process start
  /getWeather                Current weather for a city
  /healthz                   Liveness

SECURITY NOTE:
  No authentication middleware. Identity is handled by a separate
  service in front of this one.
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Catalog routes
	r.Route("/tours", func(r chi.Router) {
		r.Get("/", h.ListTours)
		r.Post("/", h.CreateTour)
		r.Get("/{city}", h.GetTour)
		r.Put("/{city}", h.UpdateTour)
		r.Delete("/{city}", h.DeleteTour)
	})

	// Ledger routes
	r.Get("/history", h.ListHistory)
	r.Post("/saveBookingToHistory", h.SaveBookingToHistory)
	r.Post("/deleteHistoryEntry", h.DeleteHistoryEntry)

	// Booking routes
	r.Post("/travelagency", h.BookTour)
	r.Get("/tourhistory", h.ListTourHistory)
	r.Get("/getWeather", h.GetWeather)

	r.Get("/healthz", h.Health)

	return r
}

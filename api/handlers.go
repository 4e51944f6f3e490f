/*
handlers.go - HTTP API handlers for the travel agency

PURPOSE:
  Exposes the catalog, the history ledger and the booking pipeline via
  HTTP. Handles request decoding and response encoding, and delegates to
  the booking package.

ENDPOINTS:
  Catalog:
    GET    /tours                 List tours
    GET    /tours/{city}          Get one tour
    POST   /tours                 Create tour
    PUT    /tours/{city}          Merge fields into a tour
    DELETE /tours/{city}          Remove tour (moves it to history)

  History:
    GET    /history               List history entries
    POST   /saveBookingToHistory  Append a booking entry
    POST   /deleteHistoryEntry    Remove an entry by position

  Booking:
    POST   /travelagency          Price a booking with live weather
    GET    /tourhistory           Tour results since process start
    GET    /getWeather            Current weather for ?city=

REQUEST BODIES:
  JSON objects, or application/x-www-form-urlencoded from HTML forms.
  Form values arrive as strings; numeric fields are parsed by the booking
  package.

DURABILITY:
  A success response is only written after the mutation has been
  persisted. Handlers never write the response first.

ERROR HANDLING:
  - 400: Invalid input, invalid index
  - 404: Tour not found
  - 409: Duplicate city
  - 500: Storage and weather failures
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/warp/travel-agency/booking"
	"github.com/warp/travel-agency/weather"
)

const maxBodyBytes = 1 << 20

// WeatherReporter serves GET /getWeather.
type WeatherReporter interface {
	Lookup(ctx context.Context, city string) (weather.Report, error)
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Agency  *booking.Agency
	Weather WeatherReporter
}

// NewHandler creates a new handler.
func NewHandler(agency *booking.Agency, reporter WeatherReporter) *Handler {
	return &Handler{Agency: agency, Weather: reporter}
}

// =============================================================================
// CATALOG HANDLERS
// =============================================================================

// ListTours returns all tours.
func (h *Handler) ListTours(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ToursResponse{Tours: h.Agency.Catalog.List()})
}

// GetTour returns a single tour.
func (h *Handler) GetTour(w http.ResponseWriter, r *http.Request) {
	tour, err := h.Agency.Catalog.Get(cityParam(r))
	if err != nil {
		writeDomainError(w, "Failed to get tour", err)
		return
	}
	writeJSON(w, http.StatusOK, TourResponse{Tour: tour})
}

// CreateTour adds a tour to the catalog.
func (h *Handler) CreateTour(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tour, err := h.Agency.Catalog.Create(r.Context(), booking.Tour(fields))
	if err != nil {
		writeDomainError(w, "Failed to add tour", err)
		return
	}
	writeJSON(w, http.StatusOK, TourMutationResponse{Message: "Tour added successfully", Tour: tour})
}

// UpdateTour merges the body into an existing tour.
func (h *Handler) UpdateTour(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tour, err := h.Agency.Catalog.Update(r.Context(), cityParam(r), booking.Tour(fields))
	if err != nil {
		writeDomainError(w, "Failed to update tour", err)
		return
	}
	writeJSON(w, http.StatusOK, TourMutationResponse{Message: "Tour updated successfully", Tour: tour})
}

// DeleteTour removes a tour and records it in history.
func (h *Handler) DeleteTour(w http.ResponseWriter, r *http.Request) {
	tour, err := h.Agency.Catalog.Delete(r.Context(), cityParam(r))
	if err != nil {
		writeDomainError(w, "Failed to delete tour", err)
		return
	}
	writeJSON(w, http.StatusOK, TourMutationResponse{Message: "Tour deleted successfully", Tour: tour})
}

// =============================================================================
// HISTORY HANDLERS
// =============================================================================

// ListHistory returns the booking history ledger.
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HistoryResponse{History: h.Agency.Ledger.List()})
}

// SaveBookingToHistory appends a booking entry.
func (h *Handler) SaveBookingToHistory(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	req, err := booking.ParseBookingRequest(fields)
	if err != nil {
		writeDomainError(w, "Invalid booking", err)
		return
	}
	if _, err := h.Agency.Ledger.RecordBooking(r.Context(), req.City, req.Adults, req.Children); err != nil {
		writeDomainError(w, "Failed to save booking", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Booking information saved to history successfully"})
}

// DeleteHistoryEntry removes the entry at body.index.
func (h *Handler) DeleteHistoryEntry(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid index provided", err)
		return
	}

	index, ok := booking.ParseCount(fields["index"])
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid index provided", nil)
		return
	}
	if _, err := h.Agency.Ledger.DeleteAt(r.Context(), index); err != nil {
		if errors.Is(err, booking.ErrInvalidIndex) {
			writeError(w, http.StatusBadRequest, "Invalid index provided", err)
			return
		}
		writeDomainError(w, "Failed to delete history entry", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "History entry deleted successfully"})
}

// =============================================================================
// BOOKING HANDLERS
// =============================================================================

// BookTour prices a booking with live weather and records the result.
func (h *Handler) BookTour(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, TravelAgencyResponse{Message: "Invalid request body"})
		return
	}

	result, err := h.Agency.Pipeline.Book(r.Context(), fields)
	if err != nil {
		if booking.IsClientError(err) {
			writeJSON(w, http.StatusBadRequest, TravelAgencyResponse{Message: err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, TravelAgencyResponse{Message: "Error processing the tour request"})
		return
	}

	writeJSON(w, http.StatusOK, TravelAgencyResponse{
		Success:    true,
		Message:    "Tour booked successfully",
		TourResult: &result,
	})
}

// ListTourHistory returns tour results since process start.
func (h *Handler) ListTourHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TourHistoryResponse{Success: true, TourHistory: h.Agency.Quotes.List()})
}

// GetWeather returns the current weather for ?city=.
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		writeError(w, http.StatusBadRequest, "city is required", nil)
		return
	}
	if h.Weather == nil {
		writeError(w, http.StatusInternalServerError, "Error fetching weather information", nil)
		return
	}

	report, err := h.Weather.Lookup(r.Context(), city)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching weather information", err)
		return
	}
	writeJSON(w, http.StatusOK, WeatherResponse(report))
}

// Health reports liveness, collection sizes and store versions.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	versions, err := h.Agency.Versions(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Store unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Tours:    len(h.Agency.Catalog.List()),
		History:  h.Agency.Ledger.Len(),
		Quotes:   h.Agency.Quotes.Len(),
		Versions: versions,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func cityParam(r *http.Request) string {
	raw := chi.URLParam(r, "city")
	if city, err := url.PathUnescape(raw); err == nil {
		return city
	}
	return raw
}

// decodeFields reads a JSON object or a urlencoded form into a field map.
func decodeFields(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		fields := make(map[string]any, len(r.PostForm))
		for k, v := range r.PostForm {
			if len(v) > 0 {
				fields[k] = v[0]
			}
		}
		return fields, nil
	}

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		return nil, fmt.Errorf("expected a JSON object: %w", err)
	}
	if fields == nil {
		return nil, errors.New("expected a JSON object")
	}
	return fields, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps booking errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, fallback string, err error) {
	switch {
	case booking.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Tour not found", err)
	case booking.IsConflict(err):
		writeError(w, http.StatusConflict, "Tour already exists", err)
	case booking.IsClientError(err):
		writeError(w, http.StatusBadRequest, fallback, err)
	default:
		writeError(w, http.StatusInternalServerError, fallback, err)
	}
}

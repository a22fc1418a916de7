package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/unklstewy/aero-scope/internal/stats"
	"github.com/unklstewy/aero-scope/pkg/errs"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"flights":    len(s.tracker.Flights()),
		"lastUpdate": s.tracker.LastUpdate().Format(time.RFC3339),
	})
}

// handleGetFlights returns the current flight collection, optionally
// filtered by exact origin country via ?country=.
func (s *Server) handleGetFlights(w http.ResponseWriter, r *http.Request) {
	flights := s.tracker.Flights()
	if country := r.URL.Query().Get("country"); country != "" {
		flights = s.tracker.FlightsByCountry(country)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"flights":    flights,
		"count":      len(flights),
		"lastUpdate": s.tracker.LastUpdate().Format(time.RFC3339),
	})
}

func (s *Server) handleGetFlightByICAO(w http.ResponseWriter, r *http.Request) {
	icao := chi.URLParam(r, "icao")

	rec, err := s.tracker.FlightByID(icao)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGetStatistics(w http.ResponseWriter, r *http.Request) {
	st := s.tracker.Statistics()
	if st == nil {
		respondError(w, &errs.NotFoundError{Resource: "statistics", Identifier: "current"})
		return
	}
	respondJSON(w, http.StatusOK, st)
}

// handleGetTopCountries returns the ranked country list. The limit
// defaults to the pie-chart size used by visual consumers.
func (s *Server) handleGetTopCountries(w http.ResponseWriter, r *http.Request) {
	limit := stats.PieChartLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			respondError(w, &errs.ValidationError{Field: "limit", Message: "must be a positive integer"})
			return
		}
		limit = n
	}

	calc := stats.NewCalculator()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"topCountries": calc.TopCountries(s.tracker.Flights(), limit),
	})
}

// handleRefresh triggers a refresh cycle. ?force=true bypasses the cache
// read; the cache is still written on success.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"

	if err := s.tracker.Refresh(r.Context(), force); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"flights":    len(s.tracker.Flights()),
		"lastUpdate": s.tracker.LastUpdate().Format(time.RFC3339),
	})
}

// respondError maps a classified error to an HTTP status.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errs.Is[*errs.NotFoundError](err):
		status = http.StatusNotFound
	case errs.Is[*errs.ValidationError](err), errs.Is[*errs.ParsingError](err):
		status = http.StatusBadRequest
	case errs.Is[*errs.RateLimitError](err):
		status = http.StatusTooManyRequests
	case errs.Is[*errs.TimeoutError](err):
		status = http.StatusGatewayTimeout
	case errs.Is[*errs.NetworkError](err):
		status = http.StatusBadGateway
	}

	respondJSON(w, status, map[string]interface{}{
		"error": err.Error(),
		"kind":  errs.Kind(err),
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

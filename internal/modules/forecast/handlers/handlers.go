// Package handlers provides HTTP handlers for forecast endpoints
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tzagara/curvecast/internal/domain"
	"github.com/tzagara/curvecast/internal/modules/forecast"
	"github.com/tzagara/curvecast/internal/modules/settlement"
)

// Handler serves the forecast lifecycle: submit, fetch, list, settle
type Handler struct {
	forecasts  *forecast.Service
	settlement *settlement.Service
	log        zerolog.Logger
}

// NewHandler creates a new forecast handler
func NewHandler(forecasts *forecast.Service, settle *settlement.Service, log zerolog.Logger) *Handler {
	return &Handler{
		forecasts:  forecasts,
		settlement: settle,
		log:        log.With().Str("handler", "forecast").Logger(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP status codes
func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrInsufficientFunds):
		http.Error(w, "Insufficient token balance", http.StatusConflict)
	case errors.Is(err, domain.ErrTooEarly):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrPriceUnavailable):
		http.Error(w, "Price feed unavailable", http.StatusServiceUnavailable)
	default:
		log.Error().Err(err).Msg("Request failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// HandleSubmit accepts a drawn forecast
// POST /api/forecasts
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var input forecast.SubmitInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.forecasts.Submit(input)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// HandleGet returns a single forecast
// GET /api/forecasts/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	f, err := h.forecasts.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// HandleList returns recent forecasts and the consensus for a symbol
// GET /api/forecasts?symbol=&timeframe=&limit=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		http.Error(w, "symbol query parameter is required", http.StatusBadRequest)
		return
	}
	timeframe := r.URL.Query().Get("timeframe")

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	overview, err := h.forecasts.Overview(symbol, timeframe, limit)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// settleRequest is the body for a settlement call. actualPrice is optional;
// when absent the live feed supplies the price.
type settleRequest struct {
	ActualPrice *float64 `json:"actualPrice,omitempty"`
	EarlyClose  bool     `json:"earlyClose"`
}

// HandleSettle scores a forecast and, when it reaches a terminal state,
// pays out the reward
// POST /api/forecasts/{id}/settle
func (h *Handler) HandleSettle(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	result, err := h.settlement.Settle(r.Context(), chi.URLParam(r, "id"), req.ActualPrice, req.EarlyClose)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

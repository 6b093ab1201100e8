// Package handlers provides HTTP handlers for user endpoints
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tzagara/curvecast/internal/domain"
	"github.com/tzagara/curvecast/internal/modules/performance"
	"github.com/tzagara/curvecast/internal/modules/users"
)

// Handler serves user accounts and their performance history
type Handler struct {
	users       *users.Repository
	forecasts   domain.ForecastStore
	performance *performance.Service
	log         zerolog.Logger
}

// NewHandler creates a new users handler
func NewHandler(userRepo *users.Repository, forecasts domain.ForecastStore, perf *performance.Service, log zerolog.Logger) *Handler {
	return &Handler{
		users:       userRepo,
		forecasts:   forecasts,
		performance: perf,
		log:         log.With().Str("handler", "users").Logger(),
	}
}

// RegisterRoutes registers all user routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/{id}", h.HandleGet)
		r.Get("/{id}/forecasts", h.HandleForecasts)
		r.Get("/{id}/performance", h.HandlePerformance)
	})
}

type createRequest struct {
	ID          string `json:"id,omitempty"`
	DisplayName string `json:"displayName"`
}

// HandleCreate registers a user with the starting token balance
// POST /api/users
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	user, err := h.users.Create(req.ID, req.DisplayName)
	if err != nil {
		h.log.Error().Err(err).Str("user", req.ID).Msg("Failed to create user")
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(user)
}

// HandleGet returns one user
// GET /api/users/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Msg("Failed to load user")
		http.Error(w, "Failed to load user", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(user)
}

// HandleForecasts lists a user's forecasts, newest first
// GET /api/users/{id}/forecasts
func (h *Handler) HandleForecasts(w http.ResponseWriter, r *http.Request) {
	forecasts, err := h.forecasts.ByUser(chi.URLParam(r, "id"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list forecasts")
		http.Error(w, "Failed to list forecasts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"forecasts": forecasts,
	})
}

// HandlePerformance returns a user's snapshot history, newest first
// GET /api/users/{id}/performance?limit=
func (h *Handler) HandlePerformance(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	history, err := h.performance.History(chi.URLParam(r, "id"), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load performance history")
		http.Error(w, "Failed to load performance history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"snapshots": history,
	})
}

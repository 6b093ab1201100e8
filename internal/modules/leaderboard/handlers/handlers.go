// Package handlers provides HTTP handlers for leaderboard endpoints
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tzagara/curvecast/internal/modules/leaderboard"
)

// Handler serves the leaderboard
type Handler struct {
	service *leaderboard.Service
	log     zerolog.Logger
}

// NewHandler creates a new leaderboard handler
func NewHandler(service *leaderboard.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "leaderboard").Logger(),
	}
}

// RegisterRoutes registers all leaderboard routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/leaderboard", h.HandleStandings)
}

// HandleStandings returns the current ranking
// GET /api/leaderboard?halfLifeDays=
func (h *Handler) HandleStandings(w http.ResponseWriter, r *http.Request) {
	halfLife := 0.0
	if raw := r.URL.Query().Get("halfLifeDays"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			http.Error(w, "halfLifeDays must be a positive number", http.StatusBadRequest)
			return
		}
		halfLife = parsed
	}

	standings, err := h.service.Standings(halfLife)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute standings")
		http.Error(w, "Failed to compute leaderboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"standings": standings,
	})
}

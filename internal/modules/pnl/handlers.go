package pnl

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles PnL HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new PnL handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "pnl").Logger(),
	}
}

// RegisterRoutes registers all PnL routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/pnl/summary", h.HandleSummary)
}

// HandleSummary handles GET /api/pnl/summary.
// Market data outages do not 500: the summary comes back degraded with
// warnings and the client decides how to present it.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Evaluate()
	if err != nil {
		h.log.Error().Err(err).Msg("Evaluation failed")
		h.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to evaluate portfolio",
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": summary,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

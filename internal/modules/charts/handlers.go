package charts

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/felixsc1/BoomerBitcoinV2/internal/domain"
)

// Handler handles chart HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new charts handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "charts").Logger(),
	}
}

// RegisterRoutes registers all chart routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/charts/price-history", h.HandlePriceHistory)
}

// HandlePriceHistory handles GET /api/charts/price-history
func (h *Handler) HandlePriceHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.GetPriceHistory()
	if err != nil {
		if errors.Is(err, domain.ErrDataUnavailable) {
			h.writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"error": "Price data is currently unavailable",
			})
			return
		}
		h.log.Error().Err(err).Msg("Failed to build price history")
		h.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to build price history",
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": history,
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

package purchases

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Handler handles purchase HTTP requests
type Handler struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandler creates a new purchase handler
func NewHandler(repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "purchases").Logger(),
	}
}

// RegisterRoutes registers all purchase routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/purchases", h.HandleList)
	r.Post("/purchases", h.HandleCreate)
	r.Delete("/purchases", h.HandleReset)
}

// HandleList handles GET /api/purchases
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.repo.ListAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list purchases")
		h.writeError(w, http.StatusInternalServerError, "Failed to list purchases")
		return
	}

	items := make([]map[string]interface{}, 0, len(purchases))
	totalInvested := 0.0
	for _, p := range purchases {
		items = append(items, map[string]interface{}{
			"id":           p.ID,
			"date":         p.Date.Format("2006-01-02"),
			"amount":       p.Amount,
			"price_chf":    p.PriceCHF,
			"invested_chf": p.InvestedCHF(),
			"created_at":   p.CreatedAt.Format(time.RFC3339),
		})
		totalInvested += p.InvestedCHF()
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"purchases":          items,
			"count":              len(items),
			"total_invested_chf": totalInvested,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleCreate handles POST /api/purchases
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	purchase, err := req.ToPurchase(uuid.NewString(), time.Now())
	if err != nil {
		if errors.Is(err, ErrValidation) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to build purchase")
		h.writeError(w, http.StatusInternalServerError, "Failed to create purchase")
		return
	}

	if err := h.repo.Insert(purchase); err != nil {
		h.log.Error().Err(err).Msg("Failed to insert purchase")
		h.writeError(w, http.StatusInternalServerError, "Failed to create purchase")
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"data": map[string]interface{}{
			"id":           purchase.ID,
			"date":         purchase.Date.Format("2006-01-02"),
			"amount":       purchase.Amount,
			"price_chf":    purchase.PriceCHF,
			"invested_chf": purchase.InvestedCHF(),
			"created_at":   purchase.CreatedAt.Format(time.RFC3339),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleReset handles DELETE /api/purchases
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteAll(); err != nil {
		h.log.Error().Err(err).Msg("Failed to reset purchases")
		h.writeError(w, http.StatusInternalServerError, "Failed to reset purchases")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"status": "reset",
		},
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

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]interface{}{
		"error": message,
	})
}

package products

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/brickfolio/brickfolio/internal/cache"
	"github.com/brickfolio/brickfolio/internal/domain"
)

// Handlers provides HTTP handlers for the products module
type Handlers struct {
	repo  *Repository
	cache cache.MetricsCache
	log   zerolog.Logger
}

// NewHandlers creates a new products handlers instance. Writes through this
// module invalidate the product's cached metrics so analyses never serve
// figures computed from replaced data.
func NewHandlers(repo *Repository, metricsCache cache.MetricsCache, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo:  repo,
		cache: metricsCache,
		log:   log.With().Str("module", "products_handlers").Logger(),
	}
}

func (h *Handlers) invalidateMetrics(r *http.Request, productID string) {
	if err := h.cache.Invalidate(r.Context(), productID); err != nil {
		h.log.Warn().Err(err).Str("id", productID).Msg("Failed to invalidate cached metrics")
	}
}

// HandleList handles GET /api/products
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list products")
		h.writeError(w, "Failed to list products", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []domain.Product{}
	}
	h.writeJSON(w, http.StatusOK, items)
}

// HandleGet handles GET /api/products/{id}
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, err := h.repo.GetByID(id)
	if err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to get product")
		h.writeError(w, "Failed to get product", http.StatusInternalServerError)
		return
	}
	if product == nil {
		h.writeError(w, "Product not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, product)
}

// HandleCreate handles POST /api/products
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var p domain.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if p.SetNumber == "" {
		h.writeError(w, "set_number is required", http.StatusBadRequest)
		return
	}
	if p.MSRP < 0 {
		h.writeError(w, "msrp must not be negative", http.StatusBadRequest)
		return
	}
	if p.Status != "" && !p.Status.Valid() {
		h.writeError(w, "unknown retirement status", http.StatusBadRequest)
		return
	}

	if err := h.repo.Create(&p); err != nil {
		h.log.Error().Err(err).Str("set_number", p.SetNumber).Msg("Failed to create product")
		h.writeError(w, "Failed to create product", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusCreated, p)
}

// HandleUpdate handles PUT /api/products/{id}
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var p domain.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	p.ID = id
	if p.Status != "" && !p.Status.Valid() {
		h.writeError(w, "unknown retirement status", http.StatusBadRequest)
		return
	}

	if err := h.repo.Update(&p); err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to update product")
		h.writeError(w, "Failed to update product", http.StatusInternalServerError)
		return
	}
	h.invalidateMetrics(r, id)
	h.writeJSON(w, http.StatusOK, p)
}

// HandleDelete handles DELETE /api/products/{id}
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.Delete(id); err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to delete product")
		h.writeError(w, "Failed to delete product", http.StatusInternalServerError)
		return
	}
	h.invalidateMetrics(r, id)
	w.WriteHeader(http.StatusNoContent)
}

// HandleUpsertSnapshot handles PUT /api/products/{id}/snapshot
// Scrapers push their latest market observation here.
func (h *Handlers) HandleUpsertSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.repo.GetByID(id)
	if err != nil {
		h.writeError(w, "Failed to get product", http.StatusInternalServerError)
		return
	}
	if product == nil {
		h.writeError(w, "Product not found", http.StatusNotFound)
		return
	}

	var snap domain.MarketSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	snap.ProductID = id

	if err := h.repo.UpsertSnapshot(&snap); err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to upsert snapshot")
		h.writeError(w, "Failed to store snapshot", http.StatusInternalServerError)
		return
	}
	h.invalidateMetrics(r, id)
	h.writeJSON(w, http.StatusOK, snap)
}

// HandleGetSnapshot handles GET /api/products/{id}/snapshot
func (h *Handlers) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := h.repo.GetSnapshot(id)
	if err != nil {
		h.writeError(w, "Failed to get snapshot", http.StatusInternalServerError)
		return
	}
	if snap == nil {
		h.writeError(w, "No snapshot for product", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

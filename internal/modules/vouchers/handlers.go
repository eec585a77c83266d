package vouchers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	engine "github.com/brickfolio/brickfolio/internal/vouchers"
)

// Handlers provides HTTP handlers for the vouchers module
type Handlers struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandlers creates a new vouchers handlers instance
func NewHandlers(repo *Repository, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo: repo,
		log:  log.With().Str("module", "vouchers_handlers").Logger(),
	}
}

// HandleList handles GET /api/vouchers
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list voucher templates")
		h.writeError(w, "Failed to list vouchers", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []engine.Template{}
	}
	h.writeJSON(w, http.StatusOK, items)
}

// HandleGet handles GET /api/vouchers/{id}
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := h.repo.GetByID(id)
	if err != nil {
		h.writeError(w, "Failed to get voucher", http.StatusInternalServerError)
		return
	}
	if t == nil {
		h.writeError(w, "Voucher not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, t)
}

// HandleCreate handles POST /api/vouchers
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var t engine.Template
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := t.Validate(); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.repo.Create(&t); err != nil {
		h.log.Error().Err(err).Str("name", t.Name).Msg("Failed to create voucher template")
		h.writeError(w, "Failed to create voucher", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusCreated, t)
}

// HandleDelete handles DELETE /api/vouchers/{id}
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.Delete(id); err != nil {
		h.writeError(w, "Failed to delete voucher", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OptimizeRequest is a cart plus vouchers to order optimally. Vouchers may be
// given inline, referenced by stored template ID, or both.
type OptimizeRequest struct {
	Items      []engine.CartItem `json:"items"`
	Vouchers   []engine.Template `json:"vouchers,omitempty"`
	VoucherIDs []string          `json:"voucher_ids,omitempty"`
}

// HandleOptimize handles POST /api/vouchers/optimize
// Runs the order optimizer over the posted cart.
func (h *Handlers) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	templates, err := h.resolveVouchers(req)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if len(req.Items) == 0 {
		h.writeError(w, "items is required", http.StatusBadRequest)
		return
	}
	for i := range req.Items {
		if err := req.Items[i].Validate(); err != nil {
			h.writeError(w, fmt.Sprintf("items[%d]: %v", i, err), http.StatusBadRequest)
			return
		}
	}

	result := engine.FindOptimalOrder(req.Items, templates)
	h.writeJSON(w, http.StatusOK, result)
}

// resolveVouchers merges inline and stored vouchers, validating each.
func (h *Handlers) resolveVouchers(req OptimizeRequest) ([]engine.Template, error) {
	templates := make([]engine.Template, 0, len(req.Vouchers)+len(req.VoucherIDs))
	for i := range req.Vouchers {
		if err := req.Vouchers[i].Validate(); err != nil {
			return nil, fmt.Errorf("vouchers[%d]: %w", i, err)
		}
		templates = append(templates, req.Vouchers[i])
	}
	if len(req.VoucherIDs) > 0 {
		stored, err := h.repo.GetByIDs(req.VoucherIDs)
		if err != nil {
			return nil, err
		}
		templates = append(templates, stored...)
	}
	return templates, nil
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

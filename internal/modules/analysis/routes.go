package analysis

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all analysis routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/analysis", func(r chi.Router) {
		r.Post("/value", h.HandleValue)
		r.Post("/batch", h.HandleBatch)
		r.Post("/vouchers", h.HandleVouchers)
		r.Get("/products/{id}", h.HandleProduct)
	})
}

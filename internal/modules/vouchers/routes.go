package vouchers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all voucher routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/vouchers", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Post("/optimize", h.HandleOptimize)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Delete("/", h.HandleDelete)
		})
	})
}

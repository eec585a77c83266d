package products

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all product routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Put("/", h.HandleUpdate)
			r.Delete("/", h.HandleDelete)
			r.Get("/snapshot", h.HandleGetSnapshot)
			r.Put("/snapshot", h.HandleUpsertSnapshot)
		})
	})
}

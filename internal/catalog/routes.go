package catalog

import "github.com/go-chi/chi/v5"

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products", h.List)
	r.Get("/products/low-stock", h.LowStock)
	r.Get("/products/{id}", h.Show)
	r.Post("/products", h.Create)
	r.Patch("/products/{id}", h.Update)
	r.Delete("/products/{id}", h.Deactivate)
}

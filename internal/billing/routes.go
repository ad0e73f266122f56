package billing

import "github.com/go-chi/chi/v5"

// MountRoutes registers billing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Open)
	r.Get("/pending", h.Pending)
	r.Get("/{id}", h.Show)
	r.Post("/{id}/lines", h.AddLine)
	r.Delete("/{id}/lines/{lineID}", h.VoidLine)
	r.Post("/{id}/settle", h.Settle)
	r.Post("/{id}/cancel", h.Cancel)
}

package ledger

import "github.com/go-chi/chi/v5"

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/stock/{productID}", h.GetStock)
	r.Get("/stock/{productID}/movements", h.Movements)
	r.Post("/stock/{productID}/transfer", h.Transfer)
	r.Put("/stock/{productID}", h.UpdateStock)
}

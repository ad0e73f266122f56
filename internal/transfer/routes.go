package transfer

import "github.com/go-chi/chi/v5"

// MountRoutes registers transfer workflow routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/sessions", h.StartSession)
	r.Get("/sessions/{sessionID}", h.ShowSession)
	r.Post("/sessions/{sessionID}/items", h.AddItem)
	r.Put("/sessions/{sessionID}/items/{productID}", h.SetQuantity)
	r.Delete("/sessions/{sessionID}/items/{productID}", h.RemoveItem)
	r.Delete("/sessions/{sessionID}", h.ClearSession)
	r.Post("/sessions/{sessionID}/commit", h.Commit)
	r.Get("/history", h.History)
	r.Post("/records/{id}/export", h.Export)
}

package reporting

import "github.com/go-chi/chi/v5"

// MountRoutes registers reporting routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/daily", h.Daily)
	r.Get("/summary", h.Summary)
	r.Post("/daily/export", h.Export)
	r.Post("/daily/email", h.Email)
	r.Get("/spendings", h.ListSpendings)
	r.Post("/spendings", h.AddSpending)
	r.Delete("/spendings/{id}", h.DeleteSpending)
	r.Put("/opening-balance", h.SetOpeningBalance)
}

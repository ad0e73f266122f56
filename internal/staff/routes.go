package staff

import "github.com/go-chi/chi/v5"

// MountRoutes registers staff routes. Login is public; the rest require a
// valid token, and account management needs the admin role.
func (h *Handler) MountRoutes(r chi.Router, mw Middleware) {
	r.Post("/login", h.Login)
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAuth)
		r.Post("/logout", h.Logout)
		r.Get("/me", h.Me)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAdmin)
			r.Post("/", h.Register)
			r.Get("/", h.List)
		})
	})
}

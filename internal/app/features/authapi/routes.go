// internal/app/features/authapi/routes.go
package authapi

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the public auth endpoints plus the session-scoped ones.
// The router is mounted without a signed-in requirement; Logout and Me check
// the context themselves.
func (h *Handler) MountRoutes(r chi.Router, g *GoogleHandler) {
	r.Post("/register", h.Register)
	r.Post("/verify", h.VerifyEmail)
	r.Post("/verify/resend", h.ResendVerification)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Get("/me", h.Me)

	if g != nil {
		r.Get("/google", g.Start)
		r.Get("/google/callback", g.Callback)
	}
}

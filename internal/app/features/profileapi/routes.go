// internal/app/features/profileapi/routes.go
package profileapi

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the profile endpoints. The caller wraps this router
// with the signed-in requirement.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Patch("/", h.Update)
}

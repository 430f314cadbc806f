// internal/app/features/adminapi/routes.go
package adminapi

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the admin endpoints. The caller wraps this router with
// the admin requirement.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/architects", h.PendingArchitects)
	r.Patch("/architects", h.ModerateArchitect)
	r.Patch("/users", h.ModerateUser)
	r.Delete("/users", h.DeleteUser)
	r.Get("/stats", h.Stats)
	r.Get("/audit", h.AuditLog)
}

// internal/app/features/announcements/handler.go
package announcements

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	annstore "github.com/escos-india/sthapati/internal/app/store/announcements"
	"github.com/escos-india/sthapati/internal/app/system/authz"
	"github.com/escos-india/sthapati/internal/app/system/htmlsanitize"
	"github.com/escos-india/sthapati/internal/app/system/httpjson"
	"github.com/escos-india/sthapati/internal/app/system/timeouts"
	"github.com/escos-india/sthapati/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns announcement endpoints. Reading is for all signed-in users;
// creation and management are admin-only and mounted separately.
type Handler struct {
	DB    *mongo.Database
	Store *annstore.Store
	Log   *zap.Logger
}

// NewHandler constructs an announcements Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Store: annstore.New(db), Log: logger}
}

// MountRoutes mounts the read-only endpoint for signed-in users.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Active)
}

// MountAdminRoutes mounts the management endpoints. The caller wraps this
// router with the admin requirement.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/{id}/toggle", h.Toggle)
	r.Delete("/{id}", h.Delete)
}

// Active handles GET /api/announcements: what should be shown right now.
func (h *Handler) Active(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	anns, err := h.Store.Visible(ctx)
	if err != nil {
		h.Log.Error("announcements: visible", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	if anns == nil {
		anns = []models.Announcement{}
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{"announcements": anns})
}

// List handles GET /api/admin/announcements: everything, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	anns, err := h.Store.List(ctx, 0)
	if err != nil {
		h.Log.Error("announcements: list", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	if anns == nil {
		anns = []models.Announcement{}
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{"announcements": anns})
}

// createRequest is the POST /api/admin/announcements body.
type createRequest struct {
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Type        string     `json:"type,omitempty"`
	Dismissible bool       `json:"dismissible,omitempty"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
}

// Create handles POST /api/admin/announcements.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	adminID, _, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Title = strings.TrimSpace(htmlsanitize.PlainText(req.Title))
	req.Content = strings.TrimSpace(htmlsanitize.Sanitize(req.Content))
	if req.Title == "" {
		httpjson.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Content == "" {
		httpjson.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	annType := models.AnnouncementType(req.Type)
	switch annType {
	case "", models.AnnouncementInfo, models.AnnouncementWarning, models.AnnouncementSuccess:
	default:
		httpjson.Error(w, http.StatusBadRequest, "unknown announcement type")
		return
	}
	if req.StartsAt != nil && req.EndsAt != nil && req.EndsAt.Before(*req.StartsAt) {
		httpjson.Error(w, http.StatusBadRequest, "ends_at is before starts_at")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, err := h.Store.Create(ctx, annstore.CreateInput{
		Title:       req.Title,
		Content:     req.Content,
		Type:        annType,
		Dismissible: req.Dismissible,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		CreatedBy:   adminID,
	})
	if err != nil {
		h.Log.Error("announcements: create", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	httpjson.Write(w, http.StatusCreated, map[string]interface{}{"announcement": a})
}

// toggleRequest is the POST /api/admin/announcements/{id}/toggle body.
type toggleRequest struct {
	Active bool `json:"active"`
}

// Toggle handles POST /api/admin/announcements/{id}/toggle.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid announcement id")
		return
	}

	var req toggleRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Store.SetActive(ctx, id, req.Active); err != nil {
		if errors.Is(err, annstore.ErrNotFound) {
			httpjson.NotFound(w, "announcement not found")
			return
		}
		h.Log.Error("announcements: toggle", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{"active": req.Active})
}

// Delete handles DELETE /api/admin/announcements/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid announcement id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Store.Delete(ctx, id); err != nil {
		if errors.Is(err, annstore.ErrNotFound) {
			httpjson.NotFound(w, "announcement not found")
			return
		}
		h.Log.Error("announcements: delete", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{"deleted": true})
}

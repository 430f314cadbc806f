// internal/app/features/directory/handler.go
package directory

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/escos-india/sthapati/internal/app/store/users"
	"github.com/escos-india/sthapati/internal/app/system/httpjson"
	"github.com/escos-india/sthapati/internal/app/system/normalize"
	"github.com/escos-india/sthapati/internal/app/system/paging"
	"github.com/escos-india/sthapati/internal/app/system/timeouts"
	"github.com/escos-india/sthapati/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the public directory endpoints.
type Handler struct {
	DB    *mongo.Database
	Store *userstore.Store
	Log   *zap.Logger
}

// NewHandler constructs a directory Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Store: userstore.New(db), Log: logger}
}

// MountRoutes mounts the directory endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Show)
}

// listResponse is one directory page.
type listResponse struct {
	Users      []models.User `json:"users"`
	HasPrev    bool          `json:"has_prev"`
	HasNext    bool          `json:"has_next"`
	PrevCursor string        `json:"prev_cursor,omitempty"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// List handles GET /api/directory?category=&q=&before=&after=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	category := normalize.Category(query.Get(r, "category"))
	if category != "" && !models.IsValidCategory(category) {
		httpjson.Error(w, http.StatusBadRequest, "unknown category")
		return
	}

	before, after := paging.Cursors(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page, err := h.Store.Directory(ctx, userstore.DirectoryFilter{
		Category: category,
		Query:    normalize.QueryParam(query.Get(r, "q")),
	}, before, after)
	if err != nil {
		h.Log.Error("directory: list", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	if page.Users == nil {
		page.Users = []models.User{}
	}
	httpjson.Write(w, http.StatusOK, listResponse{
		Users:      page.Users,
		HasPrev:    page.HasPrev,
		HasNext:    page.HasNext,
		PrevCursor: page.PrevCursor,
		NextCursor: page.NextCursor,
	})
}

// Show handles GET /api/directory/{id}: one public profile. Only active
// profiles are visible.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.NotFound(w, "profile not found")
			return
		}
		h.Log.Error("directory: show", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	if u.Status != models.StatusActive {
		httpjson.NotFound(w, "profile not found")
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]interface{}{"user": u})
}

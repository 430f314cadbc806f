// internal/app/features/feed/handler.go
package feed

import (
	"context"
	"errors"
	"net/http"
	"strings"

	poststore "github.com/escos-india/sthapati/internal/app/store/posts"
	"github.com/escos-india/sthapati/internal/app/system/authz"
	"github.com/escos-india/sthapati/internal/app/system/htmlsanitize"
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

// MaxBodyLen bounds a feed post body after sanitization.
const MaxBodyLen = 5000

// Handler owns the community feed endpoints.
type Handler struct {
	DB    *mongo.Database
	Store *poststore.Store
	Log   *zap.Logger
}

// NewHandler constructs a feed Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Store: poststore.New(db), Log: logger}
}

// MountRoutes mounts the feed. The caller wraps this router with the
// signed-in requirement.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
}

// createRequest is the POST /api/feed body.
type createRequest struct {
	Body  string   `json:"body"`
	Media []string `json:"media,omitempty"`
}

// Create handles POST /api/feed.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Body = strings.TrimSpace(htmlsanitize.Sanitize(req.Body))
	if req.Body == "" && len(req.Media) == 0 {
		httpjson.Error(w, http.StatusBadRequest, "post needs a body or media")
		return
	}
	if len(req.Body) > MaxBodyLen {
		httpjson.Error(w, http.StatusBadRequest, "post body is too long")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Store.Create(ctx, userID, req.Body, req.Media)
	if err != nil {
		h.Log.Error("feed: create", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	httpjson.Write(w, http.StatusCreated, map[string]interface{}{"post": p})
}

// listResponse is one page of the feed.
type listResponse struct {
	Posts      []models.Post `json:"posts"`
	HasPrev    bool          `json:"has_prev"`
	HasNext    bool          `json:"has_next"`
	PrevCursor string        `json:"prev_cursor,omitempty"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// List handles GET /api/feed?author=&before=&after=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var authorID *primitive.ObjectID
	if raw := normalize.QueryParam(query.Get(r, "author")); raw != "" {
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "invalid author id")
			return
		}
		authorID = &oid
	}

	before, after := paging.Cursors(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page, err := h.Store.Feed(ctx, authorID, before, after)
	if err != nil {
		h.Log.Error("feed: list", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	if page.Posts == nil {
		page.Posts = []models.Post{}
	}
	httpjson.Write(w, http.StatusOK, listResponse{
		Posts:      page.Posts,
		HasPrev:    page.HasPrev,
		HasNext:    page.HasNext,
		PrevCursor: page.PrevCursor,
		NextCursor: page.NextCursor,
	})
}

// Delete handles DELETE /api/feed/{id}. Authors delete their own posts;
// admins delete any.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid post id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Store.Delete(ctx, id, userID, authz.IsAdmin(r)); err != nil {
		switch {
		case errors.Is(err, poststore.ErrNotFound):
			httpjson.NotFound(w, "post not found")
		case errors.Is(err, poststore.ErrNotAuthor):
			httpjson.Forbidden(w)
		default:
			h.Log.Error("feed: delete", zap.Error(err))
			httpjson.ServerError(w)
		}
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{"deleted": true})
}

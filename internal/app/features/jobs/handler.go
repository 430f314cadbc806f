// internal/app/features/jobs/handler.go
package jobs

import (
	"context"
	"errors"
	"net/http"
	"strings"

	jobstore "github.com/escos-india/sthapati/internal/app/store/jobs"
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

// Handler owns the job board endpoints.
type Handler struct {
	DB    *mongo.Database
	Store *jobstore.Store
	Log   *zap.Logger
}

// NewHandler constructs a jobs Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Store: jobstore.New(db), Log: logger}
}

// MountRoutes mounts the job board. The caller wraps this router with the
// signed-in requirement.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/mine", h.Mine)
	r.Get("/{id}", h.Show)
	r.Post("/{id}/close", h.Close)
	r.Post("/{id}/apply", h.Apply)
	r.Get("/{id}/applications", h.Applications)
}

// createRequest is the POST /api/jobs body.
type createRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	Location    models.Location `json:"location,omitempty"`
	WorkType    string          `json:"work_type,omitempty"`
	SalaryRange string          `json:"salary_range,omitempty"`
}

// Create handles POST /api/jobs.
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

	req.Title = strings.TrimSpace(htmlsanitize.PlainText(req.Title))
	req.Description = strings.TrimSpace(htmlsanitize.Sanitize(req.Description))
	req.Category = normalize.Category(req.Category)

	if req.Title == "" {
		httpjson.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Description == "" {
		httpjson.Error(w, http.StatusBadRequest, "description is required")
		return
	}
	if req.Category != "" && !models.IsValidCategory(req.Category) {
		httpjson.Error(w, http.StatusBadRequest, "unknown category")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	j, err := h.Store.Create(ctx, jobstore.CreateInput{
		PostedBy:    userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		WorkType:    req.WorkType,
		SalaryRange: req.SalaryRange,
	})
	if err != nil {
		h.Log.Error("jobs: create", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	httpjson.Write(w, http.StatusCreated, map[string]interface{}{"job": j})
}

// listResponse is one page of the job board.
type listResponse struct {
	Jobs       []models.Job `json:"jobs"`
	HasPrev    bool         `json:"has_prev"`
	HasNext    bool         `json:"has_next"`
	PrevCursor string       `json:"prev_cursor,omitempty"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// List handles GET /api/jobs?category=&work_type=&before=&after=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	before, after := paging.Cursors(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page, err := h.Store.List(ctx, jobstore.ListFilter{
		Category: normalize.Category(query.Get(r, "category")),
		WorkType: normalize.QueryParam(query.Get(r, "work_type")),
	}, before, after)
	if err != nil {
		h.Log.Error("jobs: list", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	if page.Jobs == nil {
		page.Jobs = []models.Job{}
	}
	httpjson.Write(w, http.StatusOK, listResponse{
		Jobs:       page.Jobs,
		HasPrev:    page.HasPrev,
		HasNext:    page.HasNext,
		PrevCursor: page.PrevCursor,
		NextCursor: page.NextCursor,
	})
}

// Mine handles GET /api/jobs/mine: the caller's own postings.
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	jobs, err := h.Store.ListByPoster(ctx, userID)
	if err != nil {
		h.Log.Error("jobs: mine", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{"jobs": jobs})
}

// Show handles GET /api/jobs/{id}.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid job id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	j, err := h.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, jobstore.ErrNotFound) {
			httpjson.NotFound(w, "job not found")
			return
		}
		h.Log.Error("jobs: show", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{"job": j})
}

// Close handles POST /api/jobs/{id}/close. Idempotent for the owner.
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid job id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Store.Close(ctx, id, userID); err != nil {
		switch {
		case errors.Is(err, jobstore.ErrNotFound):
			httpjson.NotFound(w, "job not found")
		case errors.Is(err, jobstore.ErrNotOwner):
			httpjson.Forbidden(w)
		default:
			h.Log.Error("jobs: close", zap.Error(err))
			httpjson.ServerError(w)
		}
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{"status": models.JobClosed})
}

// applyRequest is the POST /api/jobs/{id}/apply body.
type applyRequest struct {
	CoverNote string `json:"cover_note,omitempty"`
	ResumeURL string `json:"resume_url,omitempty"`
}

// Apply handles POST /api/jobs/{id}/apply. One application per job; the
// response carries the application key as a receipt.
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid job id")
		return
	}

	var req applyRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.CoverNote = strings.TrimSpace(htmlsanitize.PlainText(req.CoverNote))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	app, err := h.Store.Apply(ctx, id, userID, req.CoverNote, req.ResumeURL)
	if err != nil {
		switch {
		case errors.Is(err, jobstore.ErrNotFound):
			httpjson.NotFound(w, "job not found")
		case errors.Is(err, jobstore.ErrClosed), errors.Is(err, jobstore.ErrAlreadyApplied):
			httpjson.Error(w, http.StatusBadRequest, err.Error())
		default:
			h.Log.Error("jobs: apply", zap.Error(err))
			httpjson.ServerError(w)
		}
		return
	}
	httpjson.Write(w, http.StatusCreated, map[string]interface{}{"application": app})
}

// Applications handles GET /api/jobs/{id}/applications. Poster only.
func (h *Handler) Applications(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid job id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	j, err := h.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, jobstore.ErrNotFound) {
			httpjson.NotFound(w, "job not found")
			return
		}
		h.Log.Error("jobs: applications load job", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	if j.PostedBy != userID && !authz.IsAdmin(r) {
		httpjson.Forbidden(w)
		return
	}

	apps, err := h.Store.Applications(ctx, id)
	if err != nil {
		h.Log.Error("jobs: applications", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	if apps == nil {
		apps = []models.JobApplication{}
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{"applications": apps})
}

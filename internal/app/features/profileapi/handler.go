// internal/app/features/profileapi/handler.go
package profileapi

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/escos-india/sthapati/internal/app/store/users"
	"github.com/escos-india/sthapati/internal/app/system/authz"
	"github.com/escos-india/sthapati/internal/app/system/completion"
	"github.com/escos-india/sthapati/internal/app/system/httpjson"
	"github.com/escos-india/sthapati/internal/app/system/timeouts"
	"github.com/escos-india/sthapati/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the signed-in profile endpoints.
type Handler struct {
	DB    *mongo.Database
	Store *userstore.Store
	Log   *zap.Logger
}

// NewHandler constructs a profile Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:    db,
		Store: userstore.New(db),
		Log:   logger,
	}
}

// profileResponse wraps the user document for the profile endpoints.
type profileResponse struct {
	User models.User `json:"user"`
}

// Get handles GET /api/user/profile. Returns the caller's own document.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.NotFound(w, "user not found")
			return
		}
		h.Log.Error("profile get: load user", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	httpjson.Write(w, http.StatusOK, profileResponse{User: *u})
}

// updateRequest is the PATCH body: a typed partial update plus an optional
// request to mark the profile complete.
type updateRequest struct {
	userstore.ProfilePatch
	Complete *bool `json:"complete,omitempty"`
}

// updateResponse reports the saved document and the completion outcome.
type updateResponse struct {
	Success    bool        `json:"success"`
	User       models.User `json:"user"`
	Complete   bool        `json:"complete"`
	Downgraded bool        `json:"downgraded,omitempty"`
}

// Update handles PATCH /api/user/profile.
//
// Fields present in the body overwrite stored values; absent fields are left
// alone. Last write wins; there is no version check. When the body carries
// "complete": true the patched document must pass the completion validator
// or the whole request fails with itemized 400 details and nothing is saved.
// An already-complete profile that no longer validates after the patch is
// downgraded to incomplete (students keep their flag). Changing category is
// allowed, but becoming an architect requires a valid COA number and puts
// the account back in the pending review queue.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ProfilePatch.Clean()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	current, err := h.Store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.NotFound(w, "user not found")
			return
		}
		h.Log.Error("profile update: load user", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	applied := req.ProfilePatch.ApplyTo(*current)
	if err := req.ProfilePatch.CheckCategory(applied); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	wantComplete := req.Complete != nil && *req.Complete
	complete := current.IsProfileComplete
	downgraded := false

	if wantComplete {
		res := completion.Evaluate(&applied)
		if !res.Complete {
			httpjson.ValidationError(w, "profile is incomplete", res.Errors)
			return
		}
		complete = true
	} else if completion.ShouldDowngrade(&applied) {
		complete = false
		downgraded = true
	}

	applied.IsProfileComplete = complete
	if err := h.Store.SavePatch(ctx, userID, &req.ProfilePatch, applied, complete); err != nil {
		if errors.Is(err, userstore.ErrDuplicatePhone) {
			httpjson.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Log.Error("profile update: save", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	httpjson.Write(w, http.StatusOK, updateResponse{
		Success:    true,
		User:       applied,
		Complete:   complete,
		Downgraded: downgraded,
	})
}

// internal/app/features/adminapi/handler.go
package adminapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/escos-india/sthapati/internal/app/store/audit"
	"github.com/escos-india/sthapati/internal/app/store/emailverify"
	jobstore "github.com/escos-india/sthapati/internal/app/store/jobs"
	poststore "github.com/escos-india/sthapati/internal/app/store/posts"
	userstore "github.com/escos-india/sthapati/internal/app/store/users"
	"github.com/escos-india/sthapati/internal/app/system/authz"
	"github.com/escos-india/sthapati/internal/app/system/httpjson"
	"github.com/escos-india/sthapati/internal/app/system/normalize"
	"github.com/escos-india/sthapati/internal/app/system/timeouts"
	"github.com/escos-india/sthapati/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the admin moderation endpoints.
type Handler struct {
	DB     *mongo.Database
	Users  *userstore.Store
	Jobs   *jobstore.Store
	Posts  *poststore.Store
	Verify *emailverify.Store
	Audit  *audit.Store
	Log    *zap.Logger
}

// NewHandler constructs an admin Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Users:  userstore.New(db),
		Jobs:   jobstore.New(db),
		Posts:  poststore.New(db),
		Verify: emailverify.New(db, 0),
		Audit:  audit.New(db),
		Log:    logger,
	}
}

// moderateRequest is the PATCH body for both moderation endpoints.
type moderateRequest struct {
	ID     string `json:"id"`
	Action string `json:"action"`
	Reason string `json:"reason,omitempty"`
}

// moderateResponse reports the resulting status. Changed is false when the
// request was a retry and the user already held the target status.
type moderateResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Changed bool   `json:"changed"`
}

// actionsFor restricts each endpoint to its own action set.
var (
	architectActions = map[string]bool{
		userstore.ActionApprove: true,
		userstore.ActionReject:  true,
	}
	userActions = map[string]bool{
		userstore.ActionBan:   true,
		userstore.ActionUnban: true,
	}
)

// ModerateArchitect handles PATCH /api/admin/architects: approve or reject
// a pending architect account.
func (h *Handler) ModerateArchitect(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, architectActions)
}

// ModerateUser handles PATCH /api/admin/users: ban or unban an account.
func (h *Handler) ModerateUser(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, userActions)
}

func (h *Handler) moderate(w http.ResponseWriter, r *http.Request, allowed map[string]bool) {
	adminID, _, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	var req moderateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Action = normalize.Action(req.Action)

	if !allowed[req.Action] {
		httpjson.Error(w, http.StatusBadRequest, "unknown action")
		return
	}
	targetID, err := primitive.ObjectIDFromHex(req.ID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Users.SetStatus(ctx, targetID, req.Action, adminID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, userstore.ErrUserNotFound):
			httpjson.NotFound(w, "user not found")
		case errors.Is(err, userstore.ErrBadAction), errors.Is(err, userstore.ErrBadTransition):
			httpjson.Error(w, http.StatusBadRequest, err.Error())
		default:
			h.Log.Error("moderate: set status", zap.Error(err),
				zap.String("action", req.Action), zap.String("target", req.ID))
			httpjson.ServerError(w)
		}
		return
	}

	if res.Changed {
		h.logModeration(ctx, req.Action, targetID, adminID, req.Reason)
	}

	httpjson.Write(w, http.StatusOK, moderateResponse{
		ID:      req.ID,
		Status:  res.Target,
		Changed: res.Changed,
	})
}

func (h *Handler) logModeration(ctx context.Context, action string, targetID, adminID primitive.ObjectID, reason string) {
	eventType := map[string]string{
		userstore.ActionApprove: audit.EventArchitectApproved,
		userstore.ActionReject:  audit.EventArchitectRejected,
		userstore.ActionBan:     audit.EventUserBanned,
		userstore.ActionUnban:   audit.EventUserUnbanned,
	}[action]

	ev := audit.Event{
		Category:  audit.CategoryModeration,
		EventType: eventType,
		UserID:    &targetID,
		ActorID:   &adminID,
		Success:   true,
	}
	if reason != "" {
		ev.Details = map[string]string{"reason": reason}
	}
	if err := h.Audit.Log(ctx, ev); err != nil {
		h.Log.Warn("moderate: audit log failed", zap.Error(err))
	}
}

// DeleteUser handles DELETE /api/admin/users?userId=<hex>. Hard delete:
// the account and its content (jobs, applications, posts, verifications)
// are removed. Deleting an already-absent user succeeds, so retries are
// safe.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	adminID, _, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	raw := normalize.QueryParam(query.Get(r, "userId"))
	if raw == "" {
		httpjson.Error(w, http.StatusBadRequest, "userId is required")
		return
	}
	targetID, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	deleted, err := h.Users.Delete(ctx, targetID)
	if err != nil {
		h.Log.Error("admin delete: user", zap.Error(err), zap.String("target", raw))
		httpjson.ServerError(w)
		return
	}

	if deleted > 0 {
		// Cascade; partial failures are logged but the delete already
		// happened, so the response still reports success.
		if err := h.Jobs.DeleteByUser(ctx, targetID); err != nil {
			h.Log.Error("admin delete: jobs cascade", zap.Error(err))
		}
		if err := h.Posts.DeleteByUser(ctx, targetID); err != nil {
			h.Log.Error("admin delete: posts cascade", zap.Error(err))
		}
		if err := h.Verify.DeleteByUser(ctx, targetID); err != nil {
			h.Log.Error("admin delete: verifications cascade", zap.Error(err))
		}

		ev := audit.Event{
			Category:  audit.CategoryModeration,
			EventType: audit.EventUserDeleted,
			UserID:    &targetID,
			ActorID:   &adminID,
			Success:   true,
		}
		if err := h.Audit.Log(ctx, ev); err != nil {
			h.Log.Warn("admin delete: audit log failed", zap.Error(err))
		}
	}

	httpjson.Write(w, http.StatusOK, map[string]interface{}{
		"id":      raw,
		"deleted": deleted > 0,
	})
}

// PendingArchitects handles GET /api/admin/architects: the review queue,
// oldest first.
func (h *Handler) PendingArchitects(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users, err := h.Users.PendingArchitects(ctx, 200)
	if err != nil {
		h.Log.Error("admin: pending architects", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{"architects": users})
}

// Stats handles GET /api/admin/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	st, err := h.Users.GetStats(ctx)
	if err != nil {
		h.Log.Error("admin: stats", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	httpjson.Write(w, http.StatusOK, st)
}

// AuditLog handles GET /api/admin/audit?category=&event=&userId=.
func (h *Handler) AuditLog(w http.ResponseWriter, r *http.Request) {
	filter := audit.QueryFilter{
		Category:  normalize.QueryParam(query.Get(r, "category")),
		EventType: normalize.QueryParam(query.Get(r, "event")),
	}
	if raw := normalize.QueryParam(query.Get(r, "userId")); raw != "" {
		uid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "invalid user id")
			return
		}
		filter.UserID = &uid
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events, err := h.Audit.Query(ctx, filter)
	if err != nil {
		h.Log.Error("admin: audit query", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{"events": events})
}

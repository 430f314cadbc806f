// internal/app/features/authapi/handler.go
package authapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/escos-india/sthapati/internal/app/store/audit"
	"github.com/escos-india/sthapati/internal/app/store/emailverify"
	userstore "github.com/escos-india/sthapati/internal/app/store/users"
	"github.com/escos-india/sthapati/internal/app/system/auth"
	"github.com/escos-india/sthapati/internal/app/system/httpjson"
	"github.com/escos-india/sthapati/internal/app/system/mailer"
	"github.com/escos-india/sthapati/internal/app/system/normalize"
	"github.com/escos-india/sthapati/internal/app/system/timeouts"
	"github.com/escos-india/sthapati/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const siteName = "Sthapati"

// Handler owns registration, verification, and session endpoints.
type Handler struct {
	DB       *mongo.Database
	Users    *userstore.Store
	Verify   *emailverify.Store
	Audit    *audit.Store
	Sessions *auth.SessionManager
	Mail     *mailer.Mailer
	Log      *zap.Logger
}

// NewHandler constructs an auth Handler. verifyExpiry controls how long
// emailed codes stay valid.
func NewHandler(db *mongo.Database, sm *auth.SessionManager, mail *mailer.Mailer, verifyExpiry time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Users:    userstore.New(db),
		Verify:   emailverify.New(db, verifyExpiry),
		Audit:    audit.New(db),
		Sessions: sm,
		Mail:     mail,
		Log:      logger,
	}
}

// registerRequest is the POST /api/auth/register body.
type registerRequest struct {
	FullName  string  `json:"full_name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
	Password  string  `json:"password"`
	Category  string  `json:"category"`
	COANumber *string `json:"coa_number,omitempty"`
}

const minPasswordLen = 8

// Register handles POST /api/auth/register.
//
// Architects start "pending" and wait for admin review; everyone else is
// active immediately. A verification code is emailed; failures to send are
// logged but do not fail the registration.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var details []fieldError
	if normalize.Name(req.FullName) == "" {
		details = append(details, fieldError{"full_name", "full name is required"})
	}
	if normalize.Email(req.Email) == "" {
		details = append(details, fieldError{"email", "email is required"})
	}
	if len(req.Password) < minPasswordLen {
		details = append(details, fieldError{"password", fmt.Sprintf("password must be at least %d characters", minPasswordLen)})
	}
	if !models.IsValidCategory(normalize.Category(req.Category)) {
		details = append(details, fieldError{"category", "unknown professional category"})
	}
	if len(details) > 0 {
		httpjson.ValidationError(w, "registration failed validation", details)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Log.Error("register: hash password", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	hashStr := string(hash)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Create(ctx, userstore.CreateInput{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: &hashStr,
		AuthProvider: models.AuthProviderEmail,
		Category:     req.Category,
		COANumber:    req.COANumber,
	})
	if err != nil {
		// Duplicate email/phone and category/COA validation all come back as
		// client errors with the store's message.
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	h.auditEvent(ctx, audit.EventRegistered, u.ID, r, true, "")
	h.sendVerification(ctx, u.ID, u.Email, false, r)

	httpjson.Write(w, http.StatusCreated, map[string]interface{}{
		"user":               u,
		"verification_sent": true,
	})
}

type fieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// sendVerification issues a code and emails it. Best effort.
func (h *Handler) sendVerification(ctx context.Context, userID primitive.ObjectID, email string, isResend bool, r *http.Request) {
	res, err := h.Verify.Create(ctx, userID, email, isResend)
	if err != nil {
		h.Log.Warn("verification: create failed", zap.Error(err))
		return
	}

	msg := mailer.BuildVerificationEmail(mailer.VerificationEmailData{
		SiteName:  siteName,
		Code:      res.Code,
		ExpiresIn: fmtDuration(h.Verify.Expiry()),
	})
	msg.To = email
	if err := h.Mail.Send(msg); err != nil {
		h.Log.Warn("verification: send failed", zap.Error(err))
		return
	}

	event := audit.EventVerificationCodeSent
	if isResend {
		event = audit.EventVerificationCodeResent
	}
	h.auditEvent(ctx, event, userID, r, true, "")
}

// verifyRequest is the POST /api/auth/verify body. Either a code (with the
// signed-in or supplied user) or a magic-link token.
type verifyRequest struct {
	Email string `json:"email,omitempty"`
	Code  string `json:"code,omitempty"`
	Token string `json:"token,omitempty"`
}

// VerifyEmail handles POST /api/auth/verify.
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var v *emailverify.Verification
	var err error

	switch {
	case req.Token != "":
		v, err = h.Verify.VerifyToken(ctx, req.Token)
	case req.Code != "" && req.Email != "":
		u, uerr := h.Users.GetByEmail(ctx, req.Email)
		if uerr != nil {
			httpjson.Error(w, http.StatusBadRequest, "invalid verification code")
			return
		}
		v, err = h.Verify.VerifyCode(ctx, u.ID, req.Code)
	default:
		httpjson.Error(w, http.StatusBadRequest, "code with email, or token, is required")
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, emailverify.ErrTooManyAttempts):
			httpjson.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, emailverify.ErrNotFound), errors.Is(err, emailverify.ErrInvalidCode):
			h.auditEventForEmail(ctx, audit.EventVerificationCodeFailed, req.Email, r)
			httpjson.Error(w, http.StatusBadRequest, "invalid verification code")
		default:
			h.Log.Error("verify: check failed", zap.Error(err))
			httpjson.ServerError(w)
		}
		return
	}

	if err := h.Users.MarkEmailVerified(ctx, v.UserID); err != nil {
		h.Log.Error("verify: mark verified", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	h.auditEvent(ctx, audit.EventEmailVerified, v.UserID, r, true, "")
	httpjson.Write(w, http.StatusOK, map[string]interface{}{"verified": true})
}

// resendRequest is the POST /api/auth/verify/resend body.
type resendRequest struct {
	Email string `json:"email"`
}

// ResendVerification handles POST /api/auth/verify/resend. Responds 200
// even for unknown emails so the endpoint cannot be used to probe accounts.
func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req resendRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err == nil && !u.EmailVerified {
		h.sendVerification(ctx, u.ID, u.Email, true, r)
	}

	httpjson.Write(w, http.StatusOK, map[string]interface{}{"sent": true})
}

// loginRequest is the POST /api/auth/login body.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse carries the session user plus a bearer token for clients
// that do not keep cookies.
type loginResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// Login handles POST /api/auth/login.
//
// Banned, rejected, and pending accounts cannot sign in; the responses for
// wrong password and unknown email are identical.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.auditEventForEmail(ctx, audit.EventLoginFailedUserNotFound, req.Email, r)
			httpjson.Error(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.Log.Error("login: lookup", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	if u.PasswordHash == nil ||
		bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(req.Password)) != nil {
		h.auditEvent(ctx, audit.EventLoginFailedWrongPassword, u.ID, r, false, "wrong password")
		httpjson.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	switch u.Status {
	case models.StatusActive:
		// proceed
	case models.StatusPending:
		h.auditEvent(ctx, audit.EventLoginFailedUserBlocked, u.ID, r, false, "pending review")
		httpjson.Error(w, http.StatusForbidden, "account is pending review")
		return
	default:
		h.auditEvent(ctx, audit.EventLoginFailedUserBlocked, u.ID, r, false, u.Status)
		httpjson.Error(w, http.StatusForbidden, "account is not allowed to sign in")
		return
	}

	if err := h.Sessions.SignIn(w, r, u.ID.Hex()); err != nil {
		h.Log.Error("login: session save", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	token, err := h.Sessions.IssueToken(u.ID.Hex())
	if err != nil {
		h.Log.Error("login: issue token", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	h.auditEvent(ctx, audit.EventLoginSuccess, u.ID, r, true, "")
	httpjson.Write(w, http.StatusOK, loginResponse{User: *u, Token: token})
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		if oid, err := primitive.ObjectIDFromHex(u.ID); err == nil {
			ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
			defer cancel()
			h.auditEvent(ctx, audit.EventLogout, oid, r, true, "")
		}
	}
	if err := h.Sessions.SignOut(w, r); err != nil {
		h.Log.Warn("logout: session clear failed", zap.Error(err))
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{"signed_out": true})
}

// Me handles GET /api/auth/me: the session view of the caller.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{"user": u})
}

func (h *Handler) auditEvent(ctx context.Context, eventType string, userID primitive.ObjectID, r *http.Request, success bool, reason string) {
	ev := audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     eventType,
		UserID:        &userID,
		IP:            clientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       success,
		FailureReason: reason,
	}
	if err := h.Audit.Log(ctx, ev); err != nil {
		h.Log.Warn("audit log failed", zap.Error(err), zap.String("event", eventType))
	}
}

func (h *Handler) auditEventForEmail(ctx context.Context, eventType, email string, r *http.Request) {
	ev := audit.Event{
		Category:  audit.CategoryAuth,
		EventType: eventType,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Success:   false,
		Details:   map[string]string{"email": normalize.Email(email)},
	}
	if err := h.Audit.Log(ctx, ev); err != nil {
		h.Log.Warn("audit log failed", zap.Error(err), zap.String("event", eventType))
	}
}

func fmtDuration(d time.Duration) string {
	if m := int(d.Minutes()); m >= 1 && d < time.Hour {
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
	return d.String()
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}

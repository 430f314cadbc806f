// internal/app/features/authapi/google.go
package authapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/escos-india/sthapati/internal/app/store/audit"
	"github.com/escos-india/sthapati/internal/app/store/oauthstate"
	userstore "github.com/escos-india/sthapati/internal/app/store/users"
	"github.com/escos-india/sthapati/internal/app/system/httpjson"
	"github.com/escos-india/sthapati/internal/app/system/timeouts"
	"github.com/escos-india/sthapati/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleConfig holds the OAuth client settings from app config.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// GoogleHandler owns the Google sign-in flow.
type GoogleHandler struct {
	Users  *userstore.Store
	States *oauthstate.Store
	Audit  *audit.Store
	Auth   *Handler
	Cfg    GoogleConfig
	Log    *zap.Logger
}

// NewGoogleHandler constructs a GoogleHandler sharing the auth Handler's
// session manager and stores.
func NewGoogleHandler(db *mongo.Database, authHandler *Handler, cfg GoogleConfig, logger *zap.Logger) *GoogleHandler {
	return &GoogleHandler{
		Users:  userstore.New(db),
		States: oauthstate.New(db),
		Audit:  audit.New(db),
		Auth:   authHandler,
		Cfg:    cfg,
		Log:    logger,
	}
}

const stateTTL = 10 * time.Minute

func (g *GoogleHandler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     g.Cfg.ClientID,
		ClientSecret: g.Cfg.ClientSecret,
		RedirectURL:  g.Cfg.RedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// Start handles GET /api/auth/google. Saves a one-time state and redirects
// to Google's consent screen.
func (g *GoogleHandler) Start(w http.ResponseWriter, r *http.Request) {
	if g.Cfg.ClientID == "" {
		httpjson.Error(w, http.StatusServiceUnavailable, "google sign-in is not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	state := uuid.NewString()
	returnURL := query.Get(r, "return")
	if err := g.States.Save(ctx, state, returnURL, time.Now().Add(stateTTL)); err != nil {
		g.Log.Error("google auth: save state", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	http.Redirect(w, r, g.oauth2Config().AuthCodeURL(state, oauth2.AccessTypeOffline), http.StatusFound)
}

// googleUserInfo is the subset of Google's userinfo payload we use.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Callback handles GET /api/auth/google/callback.
//
// Existing accounts with the same email are linked to the Google identity.
// New sign-ins create a trade professional account by default; users pick
// their real category on first profile edit. Switching to architect there
// requires a valid COA number and re-enters the admin review queue.
func (g *GoogleHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	state := query.Get(r, "state")
	_, valid, err := g.States.Validate(ctx, state)
	if err != nil {
		g.Log.Error("google auth: validate state", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	if !valid {
		httpjson.Error(w, http.StatusBadRequest, "invalid or expired oauth state")
		return
	}

	code := query.Get(r, "code")
	if code == "" {
		httpjson.Error(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	token, err := g.oauth2Config().Exchange(ctx, code)
	if err != nil {
		g.Log.Error("google auth: code exchange", zap.Error(err))
		httpjson.Error(w, http.StatusBadRequest, "authorization exchange failed")
		return
	}

	info, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		g.Log.Error("google auth: userinfo", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	if info.Email == "" || !info.VerifiedEmail {
		httpjson.Error(w, http.StatusBadRequest, "google account email is not verified")
		return
	}

	u, err := g.resolveUser(ctx, info)
	if err != nil {
		g.Log.Error("google auth: resolve user", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	switch u.Status {
	case models.StatusActive:
		// proceed
	case models.StatusPending:
		httpjson.Error(w, http.StatusForbidden, "account is pending review")
		return
	default:
		httpjson.Error(w, http.StatusForbidden, "account is not allowed to sign in")
		return
	}

	if err := g.Auth.Sessions.SignIn(w, r, u.ID.Hex()); err != nil {
		g.Log.Error("google auth: session save", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	apiToken, err := g.Auth.Sessions.IssueToken(u.ID.Hex())
	if err != nil {
		g.Log.Error("google auth: issue token", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	g.Auth.auditEvent(ctx, audit.EventLoginSuccess, u.ID, r, true, "")
	httpjson.Write(w, http.StatusOK, loginResponse{User: *u, Token: apiToken})
}

// resolveUser finds the account for a Google identity, linking or creating
// as needed.
func (g *GoogleHandler) resolveUser(ctx context.Context, info *googleUserInfo) (*models.User, error) {
	if u, err := g.Users.GetByGoogleID(ctx, info.ID); err == nil {
		return u, nil
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	if u, err := g.Users.GetByEmail(ctx, info.Email); err == nil {
		if err := g.Users.LinkGoogle(ctx, u.ID, info.ID); err != nil {
			return nil, err
		}
		uid := u.ID
		_ = g.Audit.Log(ctx, audit.Event{
			Category:  audit.CategoryAuth,
			EventType: audit.EventGoogleLinked,
			UserID:    &uid,
			Success:   true,
		})
		return g.Users.GetByID(ctx, u.ID)
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	googleID := info.ID
	created, err := g.Users.Create(ctx, userstore.CreateInput{
		FullName:     info.Name,
		Email:        info.Email,
		GoogleID:     &googleID,
		AuthProvider: models.AuthProviderGoogle,
		Category:     models.CategoryTradePro,
	})
	if err != nil {
		return nil, err
	}
	_ = g.Users.MarkEmailVerified(ctx, created.ID)
	created.EmailVerified = true
	return &created, nil
}

// fetchGoogleUserInfo retrieves the profile from Google's userinfo endpoint.
func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	isAuthKey = "is_authenticated"
	userIDKey = "user_id"
)

// SessionUser is the per-request view of the signed-in account. It is loaded
// fresh from the database on every request (via UserFetcher) so moderation
// changes take effect immediately.
type SessionUser struct {
	ID       string
	Name     string
	Email    string
	Category string
	Status   string
	IsAdmin  bool
}

// UserFetcher loads fresh user data for the given user ID. Implementations
// return nil when the user does not exist or may not use the platform
// (banned or rejected), which the middleware treats as signed out.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

// SessionManager owns the cookie session store, the bearer-token secret, and
// the auth middleware. It is created once in bootstrap and passed to feature
// routers; there is no ambient global state.
type SessionManager struct {
	store       *sessions.CookieStore
	sessionName string
	jwtSecret   []byte
	fetcher     UserFetcher
	log         *zap.Logger
}

// NewSessionManager builds a SessionManager from the configured session key,
// cookie name/domain, and bearer-token secret. The secure flag controls
// Secure cookies and SameSite mode (None in production, Lax in dev).
func NewSessionManager(sessionKey, sessionName, domain string, secure bool, jwtSecret string, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if jwtSecret == "" {
		return nil, fmt.Errorf("jwt secret is empty")
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		MaxAge:   86400 * 30,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	return &SessionManager{
		store:       store,
		sessionName: sessionName,
		jwtSecret:   []byte(jwtSecret),
		log:         logger,
	}, nil
}

// SetUserFetcher wires the store-backed fetcher used to refresh user data on
// each request. Must be called before the middleware handles traffic.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) { sm.fetcher = f }

/*─────────────────────────────────────────────────────────────────────────────*
| Current-user context                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user in the request context and a found flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// WithTestUser injects a user into the request context, bypassing the session
// middleware. For handler tests only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Sign in / sign out                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// SignIn records the user ID in the cookie session.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, userID string) error {
	sess, _ := sm.store.Get(r, sm.sessionName)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = userID
	return sess.Save(r, w)
}

// SignOut clears the cookie session.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.sessionName)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// TokenTTL is the lifetime of issued bearer tokens.
const TokenTTL = 24 * time.Hour

// IssueToken creates a signed bearer token for API clients that do not carry
// the session cookie. The token subject is the user ID.
func (sm *SessionManager) IssueToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(sm.jwtSecret)
}

// userIDFromRequest extracts the user ID from the cookie session or, failing
// that, from an Authorization: Bearer token.
func (sm *SessionManager) userIDFromRequest(r *http.Request) string {
	sess, err := sm.store.Get(r, sm.sessionName)
	if err == nil {
		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			if id, _ := sess.Values[userIDKey].(string); id != "" {
				return id
			}
		}
	} else if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
		// Cookie signed with an old session key. Treat as signed out; the
		// cookie is replaced on the next sign-in.
		sm.log.Debug("stale session cookie ignored")
	}

	raw := r.Header.Get("Authorization")
	if !strings.HasPrefix(raw, "Bearer ") {
		return ""
	}
	tok, err := jwt.ParseWithClaims(strings.TrimPrefix(raw, "Bearer "), &jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return sm.jwtSecret, nil
		})
	if err != nil || !tok.Valid {
		return ""
	}
	claims, ok := tok.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return ""
	}
	return claims.Subject
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// LoadSessionUser injects the current user into context if signed in.
// The user is re-fetched on every request so status and role changes
// (ban, admin grant) take effect immediately.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := sm.userIDFromRequest(r)
		if id == "" || sm.fetcher == nil {
			next.ServeHTTP(w, r)
			return
		}
		if u := sm.fetcher.FetchUser(r.Context(), id); u != nil {
			r = withUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn rejects unauthenticated requests with a JSON 401 before any
// handler (or database read) runs.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			writeAuthError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests whose user is not an admin with a JSON 403
// (401 when not signed in at all).
func (sm *SessionManager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r)
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !u.IsAdmin {
			writeAuthError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeAuthError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, "{\"error\":%q}\n", msg)
}

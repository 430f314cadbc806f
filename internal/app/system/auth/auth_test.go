package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

const testSessionKey = "0123456789abcdef0123456789abcdef"

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	sm, err := NewSessionManager(testSessionKey, "test-session", "", false, "test-jwt-secret", zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return sm
}

func TestNewSessionManagerRejectsEmptyKey(t *testing.T) {
	if _, err := NewSessionManager("", "s", "", false, "secret", zap.NewNop()); err == nil {
		t.Error("expected error for empty session key")
	}
	if _, err := NewSessionManager(testSessionKey, "s", "", false, "", zap.NewNop()); err == nil {
		t.Error("expected error for empty jwt secret")
	}
}

func TestRequireSignedIn(t *testing.T) {
	sm := newTestManager(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := sm.RequireSignedIn(next)

	t.Run("anonymous gets JSON 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("body is not JSON: %v", err)
		}
		if body["error"] != "unauthorized" {
			t.Errorf("error = %q", body["error"])
		}
	})

	t.Run("signed-in passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
		req = WithTestUser(req, &SessionUser{ID: "abc", Name: "User"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	sm := newTestManager(t)
	handler := sm.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("anonymous gets 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/admin/users", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("non-admin gets 403", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/api/admin/users", nil)
		req = WithTestUser(req, &SessionUser{ID: "abc", IsAdmin: false})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/api/admin/users", nil)
		req = WithTestUser(req, &SessionUser{ID: "abc", IsAdmin: true})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})
}

type stubFetcher struct {
	users map[string]*SessionUser
}

func (s *stubFetcher) FetchUser(_ context.Context, id string) *SessionUser {
	return s.users[id]
}

func TestBearerTokenRoundTrip(t *testing.T) {
	sm := newTestManager(t)
	sm.SetUserFetcher(&stubFetcher{users: map[string]*SessionUser{
		"user-1": {ID: "user-1", Name: "Token User"},
	}})

	token, err := sm.IssueToken("user-1")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	var got *SessionUser
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = CurrentUser(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.ID != "user-1" {
		t.Fatalf("current user = %+v, want user-1", got)
	}
}

func TestBearerTokenBannedUserIsSignedOut(t *testing.T) {
	sm := newTestManager(t)
	// Fetcher resolves nobody, as it would for banned or deleted accounts.
	sm.SetUserFetcher(&stubFetcher{users: map[string]*SessionUser{}})

	token, err := sm.IssueToken("banned-user")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	handler := sm.LoadSessionUser(sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for a user the fetcher rejects", rec.Code)
	}
}

func TestBadBearerTokenIgnored(t *testing.T) {
	sm := newTestManager(t)
	sm.SetUserFetcher(&stubFetcher{users: map[string]*SessionUser{}})

	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			t.Error("garbage token produced a session user")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

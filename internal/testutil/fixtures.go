package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/escos-india/sthapati/internal/app/system/auth"
	"github.com/escos-india/sthapati/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user in the given category and status.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, category, status string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:            primitive.NewObjectID(),
		FullName:      fullName,
		FullNameCI:    text.Fold(fullName),
		Email:         email,
		AuthProvider:  models.AuthProviderEmail,
		EmailVerified: true,
		Category:      category,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateAdmin creates an active admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()

	u := f.CreateUser(ctx, fullName, email, models.CategoryContractor, models.StatusActive)
	if _, err := f.db.Collection("users").UpdateByID(ctx, u.ID,
		map[string]interface{}{"$set": map[string]interface{}{"is_admin": true}}); err != nil {
		f.t.Fatalf("failed to promote test admin: %v", err)
	}
	u.IsAdmin = true
	return u
}

// CreatePendingArchitect creates an architect awaiting review, with a valid
// registration number.
func (f *Fixtures) CreatePendingArchitect(ctx context.Context, fullName, email, coa string) models.User {
	f.t.Helper()

	u := f.CreateUser(ctx, fullName, email, models.CategoryArchitect, models.StatusPending)
	if _, err := f.db.Collection("users").UpdateByID(ctx, u.ID,
		map[string]interface{}{"$set": map[string]interface{}{"coa_number": coa}}); err != nil {
		f.t.Fatalf("failed to set test architect coa: %v", err)
	}
	u.COANumber = &coa
	return u
}

// SessionFor converts a stored user into the per-request session view.
func SessionFor(u models.User) *auth.SessionUser {
	return &auth.SessionUser{
		ID:       u.ID.Hex(),
		Name:     u.FullName,
		Email:    u.Email,
		Category: u.Category,
		Status:   u.Status,
		IsAdmin:  u.IsAdmin,
	}
}

// SignedInRequest attaches a test session user to the request.
func SignedInRequest(r *http.Request, u models.User) *http.Request {
	return auth.WithTestUser(r, SessionFor(u))
}

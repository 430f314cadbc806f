// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/escos-india/sthapati/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the current user's Mongo ObjectID, the full SessionUser,
// and a found flag. If no user is present in context or the session carries a
// malformed ID, it returns (NilObjectID, nil, false) so callers can trust
// that ok=true means a valid, authenticated user.
func UserCtx(r *http.Request) (userID primitive.ObjectID, user *auth.SessionUser, ok bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, nil, false
	}
	oid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return primitive.NilObjectID, nil, false
	}
	return oid, u, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	u, ok := auth.CurrentUser(r)
	return ok && u.IsAdmin
}

// internal/app/store/users/fetcher.go
package userstore

import (
	"context"

	"github.com/escos-india/sthapati/internal/app/system/auth"
	"github.com/escos-india/sthapati/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher loads the session user from the users collection on each request,
// so status changes (bans, rejections) take effect immediately.
type Fetcher struct {
	s *Store
}

// NewFetcher returns an auth.UserFetcher backed by the users collection.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{s: New(db)}
}

var _ auth.UserFetcher = (*Fetcher)(nil)

// FetchUser implements auth.UserFetcher. Banned and rejected accounts
// resolve to nil, which the session layer treats as signed out. Lookup
// failures also resolve to nil; the request proceeds unauthenticated.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}

	var u struct {
		ID       primitive.ObjectID `bson:"_id"`
		FullName string             `bson:"full_name"`
		Email    string             `bson:"email"`
		Category string             `bson:"category"`
		Status   string             `bson:"status"`
		IsAdmin  bool               `bson:"is_admin"`
	}
	err = f.s.c.FindOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(bson.M{
		"full_name": 1,
		"email":     1,
		"category":  1,
		"status":    1,
		"is_admin":  1,
	})).Decode(&u)
	if err != nil {
		return nil
	}

	if u.Status == models.StatusBanned || u.Status == models.StatusRejected {
		return nil
	}

	return &auth.SessionUser{
		ID:       u.ID.Hex(),
		Name:     u.FullName,
		Email:    u.Email,
		Category: u.Category,
		Status:   u.Status,
		IsAdmin:  u.IsAdmin,
	}
}

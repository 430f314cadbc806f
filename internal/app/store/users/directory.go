// internal/app/store/users/directory.go
package userstore

import (
	"context"

	"github.com/escos-india/sthapati/internal/app/system/paging"
	"github.com/escos-india/sthapati/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DirectoryFilter narrows the public directory listing.
type DirectoryFilter struct {
	Category string // optional category slug
	Query    string // optional name prefix search
}

// DirectoryPage is one page of the public directory with its cursors.
type DirectoryPage struct {
	Users      []models.User
	HasPrev    bool
	HasNext    bool
	PrevCursor string
	NextCursor string
}

// Directory lists active users sorted by folded name, paged by keyset
// cursor. Only active accounts appear; pending, rejected, and banned
// profiles are invisible to the directory.
func (s *Store) Directory(ctx context.Context, f DirectoryFilter, before, after string) (DirectoryPage, error) {
	filter := bson.M{"status": models.StatusActive}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Query != "" {
		q := text.Fold(f.Query)
		filter["full_name_ci"] = bson.M{"$gte": q, "$lt": q + "\uffff"}
	}

	cfg := paging.ConfigureKeyset(before, after, 1)
	if window := cfg.KeysetWindow("full_name_ci"); window != nil {
		filter = bson.M{"$and": bson.A{filter, window}}
	}

	findOpts := options.Find().SetProjection(bson.M{
		"full_name":     1,
		"full_name_ci":  1,
		"category":      1,
		"headline":      1,
		"profile_image": 1,
		"location":      1,
		"badges":        1,
		"skills":        1,
		"is_open_to_work": 1,
		"created_at":    1,
	})
	cfg.ApplyToFind(findOpts, "full_name_ci")

	cur, err := s.c.Find(ctx, filter, findOpts)
	if err != nil {
		return DirectoryPage{}, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return DirectoryPage{}, err
	}

	if cfg.Direction == paging.Backward {
		paging.Reverse(users)
	}

	res := paging.TrimPage(&users, before, after)
	prev, next := paging.BuildCursors(users,
		func(u models.User) string { return u.FullNameCI },
		func(u models.User) primitive.ObjectID { return u.ID },
	)

	return DirectoryPage{
		Users:      users,
		HasPrev:    res.HasPrev,
		HasNext:    res.HasNext,
		PrevCursor: prev,
		NextCursor: next,
	}, nil
}

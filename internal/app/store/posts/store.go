// internal/app/store/posts/store.go
package poststore

import (
	"context"
	"errors"
	"time"

	"github.com/escos-india/sthapati/internal/app/system/paging"
	"github.com/escos-india/sthapati/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when the post does not exist.
	ErrNotFound = errors.New("post not found")
	// ErrNotAuthor is returned when a user edits a post they didn't write.
	ErrNotAuthor = errors.New("post belongs to another user")
)

// Store manages the community feed collection.
type Store struct {
	c *mongo.Collection
}

// New creates a Store bound to the posts collection.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("posts")}
}

// Create inserts a feed post. Body must already be sanitized by the handler.
func (s *Store) Create(ctx context.Context, authorID primitive.ObjectID, body string, media []string) (models.Post, error) {
	now := time.Now()
	p := models.Post{
		ID:        primitive.NewObjectID(),
		AuthorID:  authorID,
		Body:      body,
		Media:     media,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Post{}, err
	}
	return p, nil
}

// Delete removes a post. Admins may delete any post; authors only their own.
func (s *Store) Delete(ctx context.Context, id, userID primitive.ObjectID, isAdmin bool) error {
	filter := bson.M{"_id": id}
	if !isAdmin {
		filter["author_id"] = userID
	}
	res, err := s.c.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		// Distinguish missing from not-owned for the error response.
		n, err := s.c.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrNotAuthor
	}
	return nil
}

// Page is one page of the feed with its cursors.
type Page struct {
	Posts      []models.Post
	HasPrev    bool
	HasNext    bool
	PrevCursor string
	NextCursor string
}

// Feed returns posts newest first, paged by keyset cursor on _id. An
// optional author filter produces a single profile's posts.
func (s *Store) Feed(ctx context.Context, authorID *primitive.ObjectID, before, after string) (Page, error) {
	filter := bson.M{}
	if authorID != nil {
		filter["author_id"] = *authorID
	}

	cfg := paging.ConfigureKeyset(before, after, -1)
	if window := cfg.IDWindow(); window != nil {
		filter = bson.M{"$and": bson.A{filter, window}}
	}

	findOpts := options.Find()
	cfg.ApplyToFindID(findOpts)

	cur, err := s.c.Find(ctx, filter, findOpts)
	if err != nil {
		return Page{}, err
	}
	defer cur.Close(ctx)

	var posts []models.Post
	if err := cur.All(ctx, &posts); err != nil {
		return Page{}, err
	}

	if cfg.Direction == paging.Backward {
		paging.Reverse(posts)
	}

	res := paging.TrimPage(&posts, before, after)
	prev, next := paging.BuildCursors(posts,
		func(p models.Post) string { return "" },
		func(p models.Post) primitive.ObjectID { return p.ID },
	)

	return Page{
		Posts:      posts,
		HasPrev:    res.HasPrev,
		HasNext:    res.HasNext,
		PrevCursor: prev,
		NextCursor: next,
	}, nil
}

// DeleteByUser removes all posts by a user. Called from the admin
// hard-delete path.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"author_id": userID})
	return err
}

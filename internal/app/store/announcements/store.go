// internal/app/store/announcements/store.go
package announcements

import (
	"context"
	"errors"
	"time"

	"github.com/escos-india/sthapati/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when the announcement does not exist.
var ErrNotFound = errors.New("announcement not found")

// Store manages the announcements collection.
type Store struct {
	c *mongo.Collection
}

// New creates a Store bound to the announcements collection.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("announcements")}
}

// CreateInput holds the fields accepted when creating an announcement.
type CreateInput struct {
	Title       string
	Content     string
	Type        models.AnnouncementType
	Dismissible bool
	StartsAt    *time.Time
	EndsAt      *time.Time
	CreatedBy   primitive.ObjectID
}

// Create inserts a new announcement, active by default.
func (s *Store) Create(ctx context.Context, in CreateInput) (models.Announcement, error) {
	now := time.Now()
	if in.Type == "" {
		in.Type = models.AnnouncementInfo
	}
	a := models.Announcement{
		ID:          primitive.NewObjectID(),
		Title:       in.Title,
		Content:     in.Content,
		Type:        in.Type,
		Active:      true,
		Dismissible: in.Dismissible,
		StartsAt:    in.StartsAt,
		EndsAt:      in.EndsAt,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Announcement{}, err
	}
	return a, nil
}

// SetActive toggles an announcement on or off.
func (s *Store) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"active":     active,
		"updated_at": time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an announcement.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Visible returns announcements that should be shown right now: active and
// inside their start/end window.
func (s *Store) Visible(ctx context.Context) ([]models.Announcement, error) {
	now := time.Now()
	filter := bson.M{
		"active": true,
		"$and": bson.A{
			bson.M{"$or": bson.A{
				bson.M{"starts_at": bson.M{"$exists": false}},
				bson.M{"starts_at": nil},
				bson.M{"starts_at": bson.M{"$lte": now}},
			}},
			bson.M{"$or": bson.A{
				bson.M{"ends_at": bson.M{"$exists": false}},
				bson.M{"ends_at": nil},
				bson.M{"ends_at": bson.M{"$gte": now}},
			}},
		},
	}

	cur, err := s.c.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Announcement
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns all announcements, newest first, for the admin view.
func (s *Store) List(ctx context.Context, limit int64) ([]models.Announcement, error) {
	if limit <= 0 {
		limit = 100
	}
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Announcement
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

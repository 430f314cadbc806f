// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/escos-india/sthapati/internal/app/system/normalize"
	"github.com/escos-india/sthapati/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store wraps the users collection.
type Store struct {
	c *mongo.Collection
}

// New creates a Store bound to the users collection.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when the email already belongs to another account.
	ErrDuplicateEmail = errors.New("an account with this email already exists")
	// ErrDuplicatePhone is returned when the phone number already belongs to another account.
	ErrDuplicatePhone = errors.New("an account with this phone number already exists")
	errBadCategory    = errors.New("unknown professional category")
	errBadCOA         = errors.New("coa_number must match the format CA/YYYY/XXXXX")
	errCOANeeded      = errors.New("architects must provide a coa_number")
)

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByGoogleID looks up a user by their linked Google account ID.
func (s *Store) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"google_id": googleID}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateInput holds the fields accepted at registration.
type CreateInput struct {
	FullName     string
	Email        string
	Phone        *string
	PasswordHash *string
	GoogleID     *string
	AuthProvider string
	Category     string
	COANumber    *string
	IsAdmin      bool
}

// Create inserts a new user after normalizing and validating fields.
//
// Architects enter the moderation queue as "pending" and must pass admin
// review; every other category is self-serve and starts "active".
func (s *Store) Create(ctx context.Context, in CreateInput) (models.User, error) {
	now := time.Now()

	u := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     normalize.Name(in.FullName),
		Email:        normalize.Email(in.Email),
		PasswordHash: in.PasswordHash,
		GoogleID:     in.GoogleID,
		AuthProvider: in.AuthProvider,
		Category:     normalize.Category(in.Category),
		IsAdmin:      in.IsAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	u.FullNameCI = text.Fold(u.FullName)

	if in.Phone != nil {
		p := normalize.Phone(*in.Phone)
		if p != "" {
			u.Phone = &p
		}
	}
	if u.AuthProvider == "" {
		u.AuthProvider = models.AuthProviderEmail
	}

	if !models.IsValidCategory(u.Category) {
		return models.User{}, errBadCategory
	}

	// COA format gates architect registration; the same pattern is
	// re-checked at verification and profile completion.
	if u.Category == models.CategoryArchitect {
		if in.COANumber == nil || *in.COANumber == "" {
			return models.User{}, errCOANeeded
		}
		coa := normalize.COANumber(*in.COANumber)
		if !models.IsValidCOANumber(coa) {
			return models.User{}, errBadCOA
		}
		u.COANumber = &coa
		u.Status = models.StatusPending
	} else {
		u.Status = models.StatusActive
	}

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, dupError(err)
		}
		return models.User{}, err
	}
	return u, nil
}

// dupError maps a duplicate-key error to the field-specific sentinel.
func dupError(err error) error {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if strings.Contains(e.Message, "phone") {
				return ErrDuplicatePhone
			}
		}
	}
	return ErrDuplicateEmail
}

// UpdatePassword replaces the stored password hash.
func (s *Store) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now(),
	}})
	return err
}

// MarkEmailVerified flags the account's email as verified.
func (s *Store) MarkEmailVerified(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"email_verified": true,
		"updated_at":     time.Now(),
	}})
	return err
}

// LinkGoogle attaches a Google account to an existing user, switching the
// auth provider so subsequent sign-ins go through OAuth.
func (s *Store) LinkGoogle(ctx context.Context, id primitive.ObjectID, googleID string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"google_id":      googleID,
		"auth_provider":  models.AuthProviderGoogle,
		"email_verified": true,
		"updated_at":     time.Now(),
	}})
	if err != nil && wafflemongo.IsDup(err) {
		return errors.New("this google account is already linked to another user")
	}
	return err
}

// Delete hard-deletes a user by ID. Terminal; no further transitions.
// Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

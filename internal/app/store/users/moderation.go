// internal/app/store/users/moderation.go
package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/escos-india/sthapati/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Moderation actions accepted by the admin endpoints.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionBan     = "ban"
	ActionUnban   = "unban"
)

var (
	// ErrUserNotFound is returned when the target user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrBadAction is returned for an unrecognized moderation action.
	ErrBadAction = errors.New("unknown moderation action")
	// ErrBadTransition is returned when the action is not valid from the
	// user's current status.
	ErrBadTransition = errors.New("action not allowed from current status")
)

// TargetStatus maps a moderation action to the status it produces.
func TargetStatus(action string) (string, error) {
	switch action {
	case ActionApprove, ActionUnban:
		return models.StatusActive, nil
	case ActionReject:
		return models.StatusRejected, nil
	case ActionBan:
		return models.StatusBanned, nil
	default:
		return "", ErrBadAction
	}
}

// allowedFrom lists the statuses each action may be applied from. A retry
// that lands on a user already in the target status is excluded here and
// handled as an idempotent no-op by SetStatus.
var allowedFrom = map[string][]string{
	ActionApprove: {models.StatusPending},
	ActionReject:  {models.StatusPending},
	ActionBan:     {models.StatusActive},
	ActionUnban:   {models.StatusBanned},
}

// ModerationResult reports what SetStatus did.
type ModerationResult struct {
	User    models.User
	Target  string
	Changed bool // false when the user was already in the target status
}

// SetStatus applies a moderation action to the user.
//
// The update is conditional on the current status so concurrent admins
// cannot race a document through an invalid transition. Retrying an action
// whose target status the user already holds succeeds without writing.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, action string, adminID primitive.ObjectID, reason string) (ModerationResult, error) {
	target, err := TargetStatus(action)
	if err != nil {
		return ModerationResult{}, err
	}

	u, err := s.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ModerationResult{}, ErrUserNotFound
		}
		return ModerationResult{}, err
	}

	if u.Status == target {
		return ModerationResult{User: *u, Target: target, Changed: false}, nil
	}

	if !statusIn(u.Status, allowedFrom[action]) {
		return ModerationResult{}, fmt.Errorf("%w: %s from %q", ErrBadTransition, action, u.Status)
	}

	now := time.Now()
	set := bson.M{
		"status":     target,
		"updated_at": now,
	}
	switch action {
	case ActionApprove:
		set["approved_by"] = adminID
		set["approved_at"] = now
	case ActionReject:
		set["rejected_by"] = adminID
		set["rejected_at"] = now
		if reason != "" {
			set["reject_reason"] = reason
		}
	}

	// Conditional on the status we just read; a concurrent transition makes
	// this a no-match and the retry path re-reads.
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": u.Status},
		bson.M{"$set": set},
	)
	if err != nil {
		return ModerationResult{}, err
	}
	if res.MatchedCount == 0 {
		// Lost a race. Re-read and treat an already-at-target document as
		// an idempotent success.
		cur, err := s.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ModerationResult{}, ErrUserNotFound
			}
			return ModerationResult{}, err
		}
		if cur.Status == target {
			return ModerationResult{User: *cur, Target: target, Changed: false}, nil
		}
		return ModerationResult{}, fmt.Errorf("%w: %s from %q", ErrBadTransition, action, cur.Status)
	}

	u.Status = target
	u.UpdatedAt = now
	return ModerationResult{User: *u, Target: target, Changed: true}, nil
}

func statusIn(status string, list []string) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}

func findSortCreatedAsc(limit int64) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(limit)
}

// PendingArchitects lists architect accounts awaiting review, oldest first.
func (s *Store) PendingArchitects(ctx context.Context, limit int64) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"category": models.CategoryArchitect,
		"status":   models.StatusPending,
	}, findSortCreatedAsc(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// internal/app/store/users/stats.go
package userstore

import (
	"context"

	"github.com/escos-india/sthapati/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

// Count returns the number of users matching the filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}

// Stats is the moderation dashboard summary.
type Stats struct {
	Total             int64            `json:"total"`
	ByStatus          map[string]int64 `json:"by_status"`
	ByCategory        map[string]int64 `json:"by_category"`
	PendingArchitects int64            `json:"pending_architects"`
	CompleteProfiles  int64            `json:"complete_profiles"`
}

// GetStats aggregates user counts by status and category in one pass each.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	st := Stats{
		ByStatus:   make(map[string]int64),
		ByCategory: make(map[string]int64),
	}

	groupCount := func(field string, into map[string]int64) error {
		cur, err := s.c.Aggregate(ctx, bson.A{
			bson.M{"$group": bson.M{"_id": "$" + field, "n": bson.M{"$sum": 1}}},
		})
		if err != nil {
			return err
		}
		defer cur.Close(ctx)

		var rows []struct {
			ID string `bson:"_id"`
			N  int64  `bson:"n"`
		}
		if err := cur.All(ctx, &rows); err != nil {
			return err
		}
		for _, r := range rows {
			into[r.ID] = r.N
			if field == "status" {
				st.Total += r.N
			}
		}
		return nil
	}

	if err := groupCount("status", st.ByStatus); err != nil {
		return Stats{}, err
	}
	if err := groupCount("category", st.ByCategory); err != nil {
		return Stats{}, err
	}

	pending, err := s.Count(ctx, bson.M{
		"category": models.CategoryArchitect,
		"status":   models.StatusPending,
	})
	if err != nil {
		return Stats{}, err
	}
	st.PendingArchitects = pending

	complete, err := s.Count(ctx, bson.M{"is_profile_complete": true})
	if err != nil {
		return Stats{}, err
	}
	st.CompleteProfiles = complete

	return st, nil
}

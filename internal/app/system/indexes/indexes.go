// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	run := func(name string, fn func(context.Context, *mongo.Database) error) {
		if err := fn(ctx, db); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", name, err))
			return
		}
		logger.Info("indexes ensured", zap.String("collection", name))
	}

	run("users", ensureUsers)
	run("announcements", ensureAnnouncements)
	run("jobs", ensureJobs)
	run("job_applications", ensureJobApplications)
	run("posts", ensurePosts)
	run("audit_events", ensureAuditEvents)
	run("email_verifications", ensureEmailVerifications)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_users_email").SetUnique(true),
		},
		// phone and google_id are unique only when present.
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetName("uniq_users_phone").SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "google_id", Value: 1}},
			Options: options.Index().SetName("uniq_users_google_id").SetUnique(true).SetSparse(true),
		},
		// Directory listing: active users by category, name-folded search.
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_users_category_status"),
		},
		{
			Keys:    bson.D{{Key: "full_name_ci", Value: 1}},
			Options: options.Index().SetName("idx_users_name_ci"),
		},
		// Architect approval queue.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_users_status_created"),
		},
	})
	return err
}

func ensureAnnouncements(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("announcements").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "active", Value: 1}, {Key: "starts_at", Value: 1}},
			Options: options.Index().SetName("idx_announcements_active"),
		},
	})
	return err
}

func ensureJobs(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("jobs").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_jobs_status_created"),
		},
		{
			Keys:    bson.D{{Key: "posted_by", Value: 1}},
			Options: options.Index().SetName("idx_jobs_posted_by"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_jobs_category"),
		},
	})
	return err
}

func ensureJobApplications(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("job_applications").Indexes().CreateMany(ctx, []mongo.IndexModel{
		// One application per user per job.
		{
			Keys:    bson.D{{Key: "job_id", Value: 1}, {Key: "applicant_id", Value: 1}},
			Options: options.Index().SetName("uniq_applications_job_user").SetUnique(true),
		},
	})
	return err
}

func ensurePosts(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("posts").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_posts_created"),
		},
		{
			Keys:    bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_posts_author"),
		},
	})
	return err
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("audit_events").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_user"),
		},
	})
	return err
}

func ensureEmailVerifications(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("email_verifications").Indexes().CreateMany(ctx, []mongo.IndexModel{
		// TTL cleanup of expired verification codes.
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("idx_emailverify_expires_ttl").SetExpireAfterSeconds(0),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_emailverify_user"),
		},
	})
	return err
}

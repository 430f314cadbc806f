// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"time"

	userstore "github.com/escos-india/sthapati/internal/app/store/users"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time initialization after DB connections and schema
// setup. It promotes the configured superadmin so a fresh deployment has a
// working moderation account.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.SuperAdminEmail == "" {
		return nil
	}

	users := userstore.New(deps.MongoDatabase)
	u, err := users.GetByEmail(ctx, appCfg.SuperAdminEmail)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			logger.Warn("superadmin email not found; register the account first",
				zap.String("email", appCfg.SuperAdminEmail))
			return nil
		}
		return err
	}
	if u.IsAdmin {
		return nil
	}

	_, err = deps.MongoDatabase.Collection("users").UpdateByID(ctx, u.ID, bson.M{"$set": bson.M{
		"is_admin":   true,
		"updated_at": time.Now(),
	}})
	if err != nil {
		return err
	}
	logger.Info("promoted superadmin", zap.String("email", appCfg.SuperAdminEmail))
	return nil
}

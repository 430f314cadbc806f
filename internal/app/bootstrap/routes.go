// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	adminfeature "github.com/escos-india/sthapati/internal/app/features/adminapi"
	announcementsfeature "github.com/escos-india/sthapati/internal/app/features/announcements"
	authfeature "github.com/escos-india/sthapati/internal/app/features/authapi"
	directoryfeature "github.com/escos-india/sthapati/internal/app/features/directory"
	feedfeature "github.com/escos-india/sthapati/internal/app/features/feed"
	healthfeature "github.com/escos-india/sthapati/internal/app/features/health"
	jobsfeature "github.com/escos-india/sthapati/internal/app/features/jobs"
	profilefeature "github.com/escos-india/sthapati/internal/app/features/profileapi"
	userstore "github.com/escos-india/sthapati/internal/app/store/users"
	"github.com/escos-india/sthapati/internal/app/system/auth"
	"github.com/escos-india/sthapati/internal/app/system/mailer"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connection, schema setup, and
// Startup have completed. Everything the handlers need comes in through
// deps and appCfg; no globals.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"

	jwtSecret := appCfg.JWTSecret
	if jwtSecret == "" {
		// ValidateConfig already rejected this in prod.
		jwtSecret = "dev-only-" + appCfg.SessionKey
	}

	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, jwtSecret, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fresh user data on every request so bans take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	mail := mailer.New(
		appCfg.MailSMTPHost, appCfg.MailSMTPPort,
		appCfg.MailSMTPUser, appCfg.MailSMTPPass,
		appCfg.MailFrom, appCfg.MailFromName,
		logger,
	)

	r := chi.NewRouter()
	r.Use(sessionMgr.LoadSessionUser)

	// Health check for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Get("/health", healthHandler.Serve)

	// Authentication: registration, verification, login, Google OAuth.
	authHandler := authfeature.NewHandler(deps.MongoDatabase, sessionMgr, mail, appCfg.EmailVerifyExpiry, logger)
	var googleHandler *authfeature.GoogleHandler
	if appCfg.GoogleClientID != "" {
		googleHandler = authfeature.NewGoogleHandler(deps.MongoDatabase, authHandler, authfeature.GoogleConfig{
			ClientID:     appCfg.GoogleClientID,
			ClientSecret: appCfg.GoogleClientSecret,
			RedirectURL:  appCfg.BaseURL + "/api/auth/google/callback",
		}, logger)
	}
	r.Route("/api/auth", func(ar chi.Router) {
		authHandler.MountRoutes(ar, googleHandler)
	})

	// Public directory of active profiles.
	directoryHandler := directoryfeature.NewHandler(deps.MongoDatabase, logger)
	r.Route("/api/directory", directoryHandler.MountRoutes)

	// Signed-in surfaces.
	profileHandler := profilefeature.NewHandler(deps.MongoDatabase, logger)
	jobsHandler := jobsfeature.NewHandler(deps.MongoDatabase, logger)
	feedHandler := feedfeature.NewHandler(deps.MongoDatabase, logger)
	announcementsHandler := announcementsfeature.NewHandler(deps.MongoDatabase, logger)

	r.Group(func(sr chi.Router) {
		sr.Use(sessionMgr.RequireSignedIn)
		sr.Route("/api/user/profile", profileHandler.MountRoutes)
		sr.Route("/api/jobs", jobsHandler.MountRoutes)
		sr.Route("/api/feed", feedHandler.MountRoutes)
		sr.Route("/api/announcements", announcementsHandler.MountRoutes)
	})

	// Admin surfaces.
	adminHandler := adminfeature.NewHandler(deps.MongoDatabase, logger)
	r.Group(func(ar chi.Router) {
		ar.Use(sessionMgr.RequireAdmin)
		ar.Route("/api/admin", func(admin chi.Router) {
			adminHandler.MountRoutes(admin)
			admin.Route("/announcements", announcementsHandler.MountAdminRoutes)
		})
	})

	return r, nil
}

package app

import (
	"context"

	"gorm.io/gorm"

	apphttp "github.com/mundotea/mundotea-backend/internal/http"
	httpH "github.com/mundotea/mundotea-backend/internal/http/handlers"
	httpMW "github.com/mundotea/mundotea-backend/internal/http/middleware"
	"github.com/mundotea/mundotea-backend/internal/observability"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health      *httpH.HealthHandler
	Auth        *httpH.AuthHandler
	Profile     *httpH.ProfileHandler
	Session     *httpH.SessionHandler
	Achievement *httpH.AchievementHandler
	Activity    *httpH.ActivityHandler
	Preference  *httpH.PreferenceHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	ping := func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
	return Handlers{
		Health:      httpH.NewHealthHandler(ping),
		Auth:        httpH.NewAuthHandler(services.Auth),
		Profile:     httpH.NewProfileHandler(services.Profile),
		Session:     httpH.NewSessionHandler(services.Sessions, services.Images),
		Achievement: httpH.NewAchievementHandler(services.Achievements),
		Activity:    httpH.NewActivityHandler(services.Catalog),
		Preference:  httpH.NewPreferenceHandler(services.Preferences, services.Recommendations),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Tokens),
	}
}

func routerConfig(log *logger.Logger, cfg Config, metrics *observability.Metrics, servedDir string, handlers Handlers, middleware Middleware) apphttp.RouterConfig {
	rc := apphttp.RouterConfig{
		Log:                log,
		Metrics:            metrics,
		CORSOrigins:        cfg.CORSOrigins,
		UploadDir:          servedDir,
		AuthMiddleware:     middleware.Auth,
		HealthHandler:      handlers.Health,
		AuthHandler:        handlers.Auth,
		ProfileHandler:     handlers.Profile,
		SessionHandler:     handlers.Session,
		AchievementHandler: handlers.Achievement,
		ActivityHandler:    handlers.Activity,
		PreferenceHandler:  handlers.Preference,
	}
	if cfg.Otel.Enabled {
		rc.TracingService = cfg.Otel.ServiceName
	}
	return rc
}

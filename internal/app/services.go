package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/mundotea/mundotea-backend/internal/data/cache"
	"github.com/mundotea/mundotea-backend/internal/data/repos"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
	"github.com/mundotea/mundotea-backend/internal/services"
)

type Services struct {
	Tokens          services.TokenService
	Auth            services.AuthService
	Profile         services.ProfileService
	Catalog         services.CatalogService
	Sessions        services.SessionService
	Images          services.ImageService
	Achievements    services.AchievementService
	Preferences     services.PreferenceService
	Recommendations services.RecommendationService
}

// wireCatalogCache returns the Redis-backed cache when REDIS_URL is set.
func wireCatalogCache(ctx context.Context, log *logger.Logger, cfg Config) (cache.CatalogCache, *goredis.Client, error) {
	if cfg.RedisURL == "" {
		log.Info("Catalog cache disabled (REDIS_URL not set)")
		return cache.Noop{}, nil, nil
	}
	rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("init redis: %w", err)
	}
	log.Info("Catalog cache enabled", "ttl", cfg.CatalogCacheTTL)
	return cache.NewRedisCatalog(log, rdb, cfg.CatalogCacheTTL), rdb, nil
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, rs repos.Set, store services.ContentStore, catalogCache cache.CatalogCache) (Services, error) {
	log.Info("Wiring services...")

	rules, err := services.LoadAchievementRules(cfg.AchievementRulesPath)
	if err != nil {
		return Services{}, err
	}

	var badges services.BadgeService
	if cfg.BadgesEnabled {
		badges, err = services.NewBadgeService(log, store, cfg.BadgeFontPath)
		if err != nil {
			return Services{}, fmt.Errorf("init badge service: %w", err)
		}
	}

	tokens := services.NewTokenService(log, cfg.JWTSecretKey, cfg.TokenTTL)
	achievements := services.NewAchievementService(db, log, rs.ChildProfile, rs.Achievement, rules, badges, store)
	preferences := services.NewPreferenceService(db, log, rs.ChildProfile, rs.Preference)
	recommendations := services.NewRecommendationService(db, log, rs.ChildProfile, rs.Activity, rs.Recommendation)

	return Services{
		Tokens:          tokens,
		Auth:            services.NewAuthService(db, log, rs.Account, rs.ChildProfile, achievements, preferences, recommendations, tokens, cfg.BcryptCost),
		Profile:         services.NewProfileService(db, log, rs.ChildProfile),
		Catalog:         services.NewCatalogService(db, log, rs.Activity, catalogCache),
		Sessions:        services.NewSessionService(db, log, rs.ChildProfile, rs.Activity, rs.PracticeSession, achievements),
		Images:          services.NewImageService(db, log, rs.ChildProfile, rs.PracticeSession, achievements, store),
		Achievements:    achievements,
		Preferences:     preferences,
		Recommendations: recommendations,
	}, nil
}

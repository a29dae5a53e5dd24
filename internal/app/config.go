package app

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mundotea/mundotea-backend/internal/data/db"
	"github.com/mundotea/mundotea-backend/internal/observability"
	"github.com/mundotea/mundotea-backend/internal/platform/envutil"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
)

const devJWTSecret = "mundotea-dev-secret"

// Config is read once at startup and passed down explicitly.
type Config struct {
	Port        string
	LogMode     string
	Environment string

	Postgres db.PostgresConfig

	JWTSecretKey string
	TokenTTL     time.Duration
	BcryptCost   int

	CORSOrigins []string

	ObjectStorageMode   string
	UploadDir           string
	UploadPublicBaseURL string
	ImagesBucket        string
	ImagesCDNDomain     string
	GCPCredentials      string
	StorageEmulatorHost string

	RedisURL        string
	CatalogCacheTTL time.Duration

	AchievementRulesPath string
	BadgesEnabled        bool
	BadgeFontPath        string

	MetricsEnabled  bool
	Otel            observability.OtelConfig
	ShutdownTimeout time.Duration
}

func LoadConfig(log *logger.Logger) (Config, error) {
	env := envutil.String("APP_ENV", "development", log)
	cfg := Config{
		Port:        envutil.String("PORT", "3000", log),
		LogMode:     envutil.String("LOG_MODE", "development", log),
		Environment: env,
		Postgres: db.PostgresConfig{
			Host:         envutil.String("POSTGRES_HOST", "localhost", log),
			Port:         envutil.String("POSTGRES_PORT", "5432", log),
			User:         envutil.String("POSTGRES_USER", "postgres", log),
			Password:     envutil.String("POSTGRES_PASSWORD", "", nil),
			Name:         envutil.String("POSTGRES_NAME", "mundotea", log),
			SSLMode:      envutil.String("POSTGRES_SSLMODE", "disable", log),
			MaxOpenConns: envutil.Int("POSTGRES_MAX_OPEN_CONNS", 20, log),
			MaxIdleConns: envutil.Int("POSTGRES_MAX_IDLE_CONNS", 5, log),
		},
		JWTSecretKey: envutil.String("JWT_SECRET_KEY", "", nil),
		TokenTTL:     time.Duration(envutil.Int("TOKEN_EXPIRES_DAYS", 1, log)) * 24 * time.Hour,
		BcryptCost:   envutil.Int("BCRYPT_COST", 10, log),
		CORSOrigins:  envutil.List("CORS_ALLOWED_ORIGINS", nil),

		ObjectStorageMode:   envutil.String("OBJECT_STORAGE_MODE", "local", log),
		UploadDir:           envutil.String("UPLOAD_DIR", "uploads", log),
		UploadPublicBaseURL: envutil.String("UPLOAD_PUBLIC_BASE_URL", "", log),
		ImagesBucket:        envutil.String("IMAGES_GCS_BUCKET_NAME", "", log),
		ImagesCDNDomain:     envutil.String("IMAGES_CDN_DOMAIN", "", log),
		GCPCredentials:      envutil.String("GOOGLE_APPLICATION_CREDENTIALS", "", log),
		StorageEmulatorHost: envutil.String("STORAGE_EMULATOR_HOST", "", log),

		RedisURL:        envutil.String("REDIS_URL", "", nil),
		CatalogCacheTTL: time.Duration(envutil.Int("CATALOG_CACHE_TTL_SECONDS", 60, log)) * time.Second,

		AchievementRulesPath: envutil.String("ACHIEVEMENT_RULES_PATH", "", log),
		BadgesEnabled:        envutil.Bool("BADGES_ENABLED", true),
		BadgeFontPath:        envutil.String("BADGE_FONT_PATH", "", log),

		MetricsEnabled: envutil.Bool("METRICS_ENABLED", true),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "mundotea-backend", log),
			Environment: env,
			Version:     envutil.String("APP_VERSION", "dev", log),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "", nil)),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: float64(envutil.Int("OTEL_SAMPLE_PERCENT", 100, log)) / 100,
		},
		ShutdownTimeout: time.Duration(envutil.Int("SHUTDOWN_TIMEOUT_SECONDS", 15, log)) * time.Second,
	}
	if cfg.JWTSecretKey == "" && !cfg.IsProduction() {
		if log != nil {
			log.Warn("JWT_SECRET_KEY not set; using development secret")
		}
		cfg.JWTSecretKey = devJWTSecret
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func (c Config) Addr() string { return ":" + c.Port }

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
	}
	if c.IsProduction() && c.JWTSecretKey == devJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET_KEY must not use the development secret in production"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_EXPIRES_DAYS must be positive"))
	}
	for _, o := range c.CORSOrigins {
		if o == "*" {
			continue
		}
		u, err := url.Parse(o)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("CORS_ALLOWED_ORIGINS: invalid origin %q", o))
		}
	}
	switch strings.ToLower(strings.TrimSpace(c.ObjectStorageMode)) {
	case storageModeLocal:
		if strings.TrimSpace(c.UploadDir) == "" {
			errs = append(errs, errors.New("UPLOAD_DIR is required for local storage"))
		}
	case "gcs", "gcs_emulator", "":
		if strings.TrimSpace(c.ImagesBucket) == "" {
			errs = append(errs, errors.New("IMAGES_GCS_BUCKET_NAME is required for gcs storage"))
		}
	}
	return errors.Join(errs...)
}

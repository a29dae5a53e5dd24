package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/mundotea/mundotea-backend/internal/data/db"
	"github.com/mundotea/mundotea-backend/internal/data/repos"
	apphttp "github.com/mundotea/mundotea-backend/internal/http"
	"github.com/mundotea/mundotea-backend/internal/observability"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    repos.Set
	Services Services
	Server   *apphttp.Server
	Metrics  *observability.Metrics

	pg            *db.PostgresService
	storage       StorageProvider
	redis         *goredis.Client
	otelShutdown  func(context.Context) error
	collectorStop context.CancelFunc
}

// New loads configuration, connects to Postgres, migrates and wires every
// component. Close releases what New acquired.
func New(ctx context.Context, log *logger.Logger) (*App, error) {
	log.Info("Loading environment variables...")
	cfg, err := LoadConfig(log)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if !cfg.IsProduction() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	a := &App{Log: log, Cfg: cfg}
	a.otelShutdown = observability.InitOTel(ctx, log, cfg.Otel)
	if cfg.MetricsEnabled {
		a.Metrics = observability.Init(log)
	}

	pg, err := db.NewPostgresService(log, cfg.Postgres)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	a.pg = pg
	a.DB = pg.DB()
	if err := pg.AutoMigrateAll(); err != nil {
		a.Close()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	a.Metrics.RegisterDBStats(log, a.DB)

	storage, err := resolveContentStore(ctx, log, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.storage = storage

	catalogCache, rdb, err := wireCatalogCache(ctx, log, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.redis = rdb
	if rdb != nil && a.Metrics != nil {
		collectorCtx, stop := context.WithCancel(context.Background())
		a.collectorStop = stop
		a.Metrics.StartRedisCollector(collectorCtx, log, rdb, 15*time.Second)
	}

	a.Repos = repos.New(a.DB, log)
	a.Services, err = wireServices(a.DB, log, cfg, a.Repos, storage.Store, catalogCache)
	if err != nil {
		a.Close()
		return nil, err
	}
	if err := a.Services.Catalog.EnsureDefaults(ctx); err != nil {
		a.Close()
		return nil, err
	}

	handlers := wireHandlers(log, a.DB, a.Services)
	middleware := wireMiddleware(log, a.Services)
	a.Server = apphttp.NewServer(log, cfg.Addr(), routerConfig(log, cfg, a.Metrics, storage.ServedDir, handlers, middleware))
	return a, nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Server.Run(gctx, a.Cfg.ShutdownTimeout)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.collectorStop != nil {
		a.collectorStop()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if err := a.storage.Close(); err != nil {
		a.Log.Warn("object storage close failed", "error", err)
	}
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.Log.Warn("postgres close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	a.Log.Sync()
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/mundotea/mundotea-backend/internal/domain"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
)

const catalogKey = "mundotea:catalogo:ativas"

// CatalogCache holds the active catalog listing. A miss is (nil, false, nil).
type CatalogCache interface {
	Get(ctx context.Context) ([]*types.Activity, bool, error)
	Set(ctx context.Context, activities []*types.Activity) error
	Invalidate(ctx context.Context) error
}

// Noop never stores anything; every Get is a miss.
type Noop struct{}

func (Noop) Get(context.Context) ([]*types.Activity, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, []*types.Activity) error         { return nil }
func (Noop) Invalidate(context.Context) error                     { return nil }

type redisCatalog struct {
	log *logger.Logger
	rdb goredis.UniversalClient
	ttl time.Duration
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, rawURL string) (*goredis.Client, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("missing REDIS_URL")
	}
	opts, err := goredis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	rdb := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func NewRedisCatalog(log *logger.Logger, rdb goredis.UniversalClient, ttl time.Duration) CatalogCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &redisCatalog{
		log: log.With("cache", "RedisCatalog"),
		rdb: rdb,
		ttl: ttl,
	}
}

func (c *redisCatalog) Get(ctx context.Context) ([]*types.Activity, bool, error) {
	raw, err := c.rdb.Get(ctx, catalogKey).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get catalog: %w", err)
	}
	var out []*types.Activity
	if err := json.Unmarshal(raw, &out); err != nil {
		// A corrupt entry is dropped and treated as a miss.
		c.log.Warn("discarding undecodable catalog cache entry", "error", err)
		_ = c.rdb.Del(ctx, catalogKey).Err()
		return nil, false, nil
	}
	return out, true, nil
}

func (c *redisCatalog) Set(ctx context.Context, activities []*types.Activity) error {
	raw, err := json.Marshal(activities)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := c.rdb.Set(ctx, catalogKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set catalog: %w", err)
	}
	return nil
}

func (c *redisCatalog) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, catalogKey).Err(); err != nil {
		return fmt.Errorf("redis del catalog: %w", err)
	}
	return nil
}

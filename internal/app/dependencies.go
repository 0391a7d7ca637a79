// Package app builds the infrastructure shared by the api, worker and tools.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/tour-inventory/internal/catalog"
	"github.com/noah-isme/tour-inventory/internal/config"
	"github.com/noah-isme/tour-inventory/internal/db"
	"github.com/noah-isme/tour-inventory/internal/lock"
	"github.com/noah-isme/tour-inventory/internal/obs"
	"github.com/noah-isme/tour-inventory/internal/repo"
	"github.com/noah-isme/tour-inventory/internal/resilience"
)

// Dependencies enumerates the clients shared across modules.
type Dependencies struct {
	DB    *pgxpool.Pool
	Redis *redis.Client
	Log   zerolog.Logger
}

// Options tune how dependencies are opened.
type Options struct {
	AppName        string
	RedisMetrics   bool
	ConnectTimeout time.Duration
}

// Open connects to Postgres and Redis and verifies both respond.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts Options) (*Dependencies, error) {
	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := NewPool(ctx, cfg.DatabaseURL, opts.AppName)
	if err != nil {
		return nil, err
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		log.Error().Err(err).Msg("instrument redis tracing")
	}
	if opts.RedisMetrics {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			log.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	if err := client.Ping(ctx).Err(); err != nil {
		pool.Close()
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Dependencies{DB: pool, Redis: client, Log: log}, nil
}

// NewPool opens a traced pgx pool tagged with appName.
func NewPool(ctx context.Context, databaseURL, appName string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	if appName != "" {
		poolConfig.ConnConfig.RuntimeParams["application_name"] = appName
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Close releases every client.
func (d *Dependencies) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Log.Error().Err(err).Msg("close redis")
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
}

// NewCatalogService wires the snapshot service to Postgres, the Redis cache
// and the refresh lock.
func (d *Dependencies) NewCatalogService(cfg *config.Config) (*catalog.Service, error) {
	log := d.Log.With().Str("component", "catalog").Logger()
	loader := resilience.Loader{
		Next:        repo.CatalogRepo{Q: repo.New(d.DB)},
		Breaker:     resilience.NewBreaker(3, 0.5, 30*time.Second).WithTarget("catalog-db").WithLogger(log),
		Attempts:    3,
		BaseBackoff: 200 * time.Millisecond,
		Jitter:      0.2,
		Log:         log,
	}
	return catalog.NewService(catalog.ServiceConfig{
		Loader: loader,
		Cache:  catalog.NewCache(d.Redis, cfg.CatalogCacheTTL),
		Locker: lock.Locker{
			R:            d.Redis,
			RetryBackoff: cfg.LockRetryBackoff,
			MaxWait:      cfg.LockTTL,
		},
		LockTTL:      cfg.LockTTL,
		Logger:       log,
		DefaultLimit: cfg.CatalogDefaultLimit,
		MaxLimit:     cfg.CatalogMaxLimit,
	})
}

// TaskRedis returns the asynq connection options for cfg.RedisURL.
func TaskRedis(cfg *config.Config) (asynq.RedisConnOpt, error) {
	opt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse task redis url: %w", err)
	}
	return opt, nil
}

// RunMigrations applies pending schema migrations.
func RunMigrations(databaseURL string) error {
	m, err := db.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()
	return db.Up(m)
}

package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/noah-isme/tour-inventory/internal/analytics"
	"github.com/noah-isme/tour-inventory/internal/app"
	"github.com/noah-isme/tour-inventory/internal/config"
	"github.com/noah-isme/tour-inventory/internal/obs"
	"github.com/noah-isme/tour-inventory/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()
	obs.MustRegisterDomainMetrics(envOrDefault("OBS_METRICS_NAMESPACE", obs.DefaultNamespace), nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := app.Open(ctx, cfg, logger, app.Options{AppName: "tour-pricing-worker"})
	if err != nil {
		logger.Fatal().Err(err).Msg("open dependencies")
	}
	defer deps.Close()

	catalogService, err := deps.NewCatalogService(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise catalog service")
	}

	taskRedis, err := app.TaskRedis(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("task queue config")
	}
	client := asynq.NewClient(taskRedis)
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("close task client")
		}
	}()

	processor := &tasks.Processor{
		Catalog: catalogService,
		Reports: &analytics.Service{Snapshots: catalogService, R: deps.Redis, TTL: cfg.AnalyticsCacheTTL},
		Queue:   client,
		Log:     logger,
	}
	mux := asynq.NewServeMux()
	processor.Register(mux)

	srv := asynq.NewServer(taskRedis, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues: map[string]int{
			tasks.QueueCatalog: 6,
			"default":          1,
		},
		Logger: tasks.Logger{L: logger},
	})

	scheduler := asynq.NewScheduler(taskRedis, &asynq.SchedulerOpts{Logger: tasks.Logger{L: logger}})
	if cfg.CatalogRefreshInterval > 0 {
		task, err := tasks.NewCatalogRefreshTask("schedule", time.Now())
		if err != nil {
			logger.Fatal().Err(err).Msg("build scheduled refresh")
		}
		cronSpec := "@every " + cfg.CatalogRefreshInterval.String()
		if _, err := scheduler.Register(cronSpec, task); err != nil {
			logger.Fatal().Err(err).Str("schedule", cronSpec).Msg("register scheduled refresh")
		}
	}

	if err := srv.Start(mux); err != nil {
		logger.Fatal().Err(err).Msg("start worker")
	}
	if err := scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("start scheduler")
	}
	logger.Info().Int("concurrency", cfg.WorkerConcurrency).Msg("worker starting")

	<-ctx.Done()
	scheduler.Shutdown()
	srv.Shutdown()
	logger.Info().Msg("worker shutdown complete")
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

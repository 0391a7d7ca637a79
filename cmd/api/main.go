package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/tour-inventory/internal/analytics"
	"github.com/noah-isme/tour-inventory/internal/app"
	"github.com/noah-isme/tour-inventory/internal/catalog"
	"github.com/noah-isme/tour-inventory/internal/common"
	"github.com/noah-isme/tour-inventory/internal/config"
	"github.com/noah-isme/tour-inventory/internal/health"
	"github.com/noah-isme/tour-inventory/internal/obs"
	"github.com/noah-isme/tour-inventory/internal/pricing"
	"github.com/noah-isme/tour-inventory/internal/quote"
	"github.com/noah-isme/tour-inventory/internal/ratelimit"
	"github.com/noah-isme/tour-inventory/internal/security"
	"github.com/noah-isme/tour-inventory/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", obs.DefaultNamespace)
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		sampling := envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0)
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:    "tour-pricing-api",
			ServiceVersion: envOrDefault("SERVICE_VERSION", ""),
			Endpoint:       envOrDefault("OBS_OTLP_ENDPOINT", ""),
			Exporter:       envOrDefault("OBS_TRACING_EXPORTER", "otlp"),
			SamplingRatio:  sampling,
			Environment:    cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	if envBool("DB_AUTO_MIGRATE", false) {
		if err := app.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("run migrations")
		}
	}

	deps, err := app.Open(context.Background(), cfg, logger, app.Options{
		AppName:      "tour-pricing-api",
		RedisMetrics: metricsEnabled,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("open dependencies")
	}
	defer deps.Close()

	catalogService, err := deps.NewCatalogService(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise catalog service")
	}
	warmCtx, cancelWarm := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := catalogService.Current(warmCtx); err != nil {
		// readiness stays red until the background sync succeeds
		logger.Error().Err(err).Msg("initial catalog load")
	}
	cancelWarm()
	catalogHandler := catalog.NewHandler(catalog.HandlerConfig{Service: catalogService})

	quoteHandler := &quote.Handler{Svc: &quote.Service{
		Catalog:   catalogService,
		Engine:    pricing.NewEngine(cfg.PricingDefaultCurrency),
		Validator: quote.NewValidator(),
		Log:       logger.With().Str("component", "quote").Logger(),
	}}
	analyticsHandler := &analytics.Handler{Svc: &analytics.Service{
		Snapshots: catalogService,
		R:         deps.Redis,
		TTL:       cfg.AnalyticsCacheTTL,
	}}

	taskRedis, err := app.TaskRedis(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("task queue config")
	}
	taskClient := asynq.NewClient(taskRedis)
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close task client")
		}
	}()
	adminHandler := &tasks.AdminHandler{Queue: taskClient}

	quoteLimiter, err := ratelimit.NewRedisLimiter(deps.Redis, cfg.QuoteRateLimit, "")
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise quote rate limiter")
	}
	quoteLimit := ratelimit.Handler{
		Limiter: quoteLimiter,
		Key:     ratelimit.KeyByClientIP("quotes"),
		OnError: func(err error) { logger.Warn().Err(err).Msg("rate limiter store error") },
	}
	bodyLimit := security.BodyLimit{Max: cfg.QuoteMaxBodyBytes}
	adminAuth := security.BasicAuth{User: cfg.AdminUser, Password: cfg.AdminPassword, Realm: "admin"}
	idem := common.Idem{R: deps.Redis, TTL: cfg.IdempotencyTTL}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	r.Use(obs.SalesChannelMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{
		Enable:     envBool("SECURE_HEADERS_ENABLE", true),
		EnableHSTS: envBool("SECURE_HSTS_ENABLE", false),
	}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", obs.ChannelHeader},
		ExposedHeaders: []string{"X-Total-Count", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         300,
	}))

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if envBool("OBS_ENABLE_PPROF", false) {
		pprofAuth := security.BasicAuth{
			User:     envOrDefault("SECURE_PPROF_BASIC_AUTH_USER", cfg.AdminUser),
			Password: envOrDefault("SECURE_PPROF_BASIC_AUTH_PASS", cfg.AdminPassword),
		}
		r.Mount("/debug/pprof", pprofAuth.Middleware(newPprofMux()))
	}

	healthHandler := health.Handler{
		Checker:      health.Deps{DB: deps.DB, Redis: deps.Redis},
		Snapshot:     catalogService,
		DBTimeout:    envDurationMillis("HEALTH_READY_DB_TIMEOUT_MS", 500),
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.With(quoteLimit.Middleware, bodyLimit.Middleware).Post("/quotes", quoteHandler.Create)

		v.Route("/pools", func(p chi.Router) {
			p.Get("/profit", analyticsHandler.Overview)
			p.Get("/{poolId}/profit", analyticsHandler.PoolProfit)
			p.Get("/{poolId}/cheapest-supplier", analyticsHandler.CheapestSupplier)
		})

		v.Route("/catalog", func(c chi.Router) {
			c.Get("/rates", catalogHandler.Rates)
			c.Get("/offers", catalogHandler.Offers)
			c.Get("/policies", catalogHandler.Policies)
			c.Get("/pools", catalogHandler.Pools)
		})

		v.Route("/admin", func(admin chi.Router) {
			admin.Use(adminAuth.Middleware)
			admin.With(idem.Middleware).Post("/catalog/refresh", adminHandler.RefreshCatalog)
		})
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go catalogService.Run(ctx, cfg.CatalogRefreshInterval)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		health.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), envDurationMillis("HTTP_SHUTDOWN_TIMEOUT_MS", 10000))
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown server")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
	logger.Info().Msg("server stopped")
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
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

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/allocs", pprof.Handler("allocs"))
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/heap", pprof.Handler("heap"))
	return mux
}

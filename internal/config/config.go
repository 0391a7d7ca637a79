package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	PricingDefaultCurrency string

	CatalogCacheTTL        time.Duration
	CatalogRefreshInterval time.Duration
	CatalogDefaultLimit    int
	CatalogMaxLimit        int
	AnalyticsCacheTTL      time.Duration

	QuoteRateLimit    string
	QuoteMaxBodyBytes int64
	IdempotencyTTL    time.Duration

	LockTTL           time.Duration
	LockRetryBackoff  time.Duration
	WorkerConcurrency int

	AdminUser     string
	AdminPassword string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		PricingDefaultCurrency: strings.ToUpper(valueOrDefault(k.String("PRICING_DEFAULT_CURRENCY"), "EUR")),

		CatalogCacheTTL:        parseDuration(k.String("CATALOG_CACHE_TTL"), "10m"),
		CatalogRefreshInterval: parseDuration(k.String("CATALOG_REFRESH_INTERVAL"), "1m"),
		CatalogDefaultLimit:    parseInt(k.String("CATALOG_DEFAULT_LIMIT"), 50),
		CatalogMaxLimit:        parseInt(k.String("CATALOG_MAX_LIMIT"), 200),
		AnalyticsCacheTTL:      parseDuration(k.String("ANALYTICS_CACHE_TTL"), "5m"),

		QuoteRateLimit:    valueOrDefault(k.String("QUOTE_RATE_LIMIT"), "60-M"),
		QuoteMaxBodyBytes: int64(parseInt(k.String("QUOTE_MAX_BODY_BYTES"), 16<<10)),
		IdempotencyTTL:    parseDuration(k.String("IDEMPOTENCY_TTL"), "10m"),

		LockTTL:           parseDuration(k.String("LOCK_TTL"), "30s"),
		LockRetryBackoff:  parseDuration(k.String("LOCK_RETRY_BACKOFF"), "50ms"),
		WorkerConcurrency: parseInt(k.String("WORKER_CONCURRENCY"), 4),

		AdminUser:     strings.TrimSpace(k.String("ADMIN_BASIC_AUTH_USER")),
		AdminPassword: k.String("ADMIN_BASIC_AUTH_PASS"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if len(cfg.PricingDefaultCurrency) != 3 {
		return nil, fmt.Errorf("PRICING_DEFAULT_CURRENCY must be a 3-letter code, got %q", cfg.PricingDefaultCurrency)
	}
	if cfg.CatalogMaxLimit < cfg.CatalogDefaultLimit {
		cfg.CatalogMaxLimit = cfg.CatalogDefaultLimit
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}

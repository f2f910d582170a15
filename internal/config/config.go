package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Backend modes.
const (
	BackendRemote   = "remote"
	BackendPostgres = "postgres"
)

// Store kinds shared by sessions and rate limiting.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Backend      BackendConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Session      SessionConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	RateLimit    RateLimitConfig
	Metrics      MetricsConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `env:"APP_NAME" envDefault:"staff-admin"`
	Env                   string `env:"APP_ENV" envDefault:"development"`
	Host                  string `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port                  string `env:"APP_PORT" envDefault:"8080"`
	Version               string `env:"APP_VERSION" envDefault:"dev"`
	RequestTimeoutSeconds int    `env:"HTTP_REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
}

// BackendConfig selects and configures the staff API.
type BackendConfig struct {
	Mode            string `env:"BACKEND_MODE" envDefault:"remote"`
	BaseURL         string `env:"BACKEND_BASE_URL" envDefault:"http://localhost:5000/api"`
	TimeoutSeconds  int    `env:"BACKEND_TIMEOUT_SECONDS" envDefault:"10"`
	RequestIDHeader string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
}

// PostgresConfig holds DB connection values for the embedded backend.
type PostgresConfig struct {
	DSN            string `env:"POSTGRES_DSN"`
	MaxConns       int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns       int32  `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	RunMigrations  bool   `env:"POSTGRES_RUN_MIGRATIONS" envDefault:"true"`
	ConnMaxIdleSec int32  `env:"POSTGRES_CONN_MAX_IDLE_SECONDS" envDefault:"30"`
	ConnMaxLifeSec int32  `env:"POSTGRES_CONN_MAX_LIFE_SECONDS" envDefault:"300"`
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
}

// SessionConfig controls the session store and cookie.
type SessionConfig struct {
	Store        string        `env:"SESSION_STORE" envDefault:"memory"`
	TTL          time.Duration `env:"SESSION_TTL" envDefault:"8h"`
	CookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"sid"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	NonceTTL     time.Duration `env:"FORM_NONCE_TTL" envDefault:"30m"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// AuthConfig defines token parameters of the embedded backend.
type AuthConfig struct {
	JWTSecret             string `env:"AUTH_JWT_SECRET" envDefault:"dev-secret"`
	AccessTokenTTLMinutes int    `env:"AUTH_ACCESS_TOKEN_TTL_MINUTES" envDefault:"60"`
	BcryptCost            int    `env:"AUTH_BCRYPT_COST" envDefault:"12"`
}

// RateLimitConfig throttles sign-in attempts per client IP.
type RateLimitConfig struct {
	Enabled    bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	SignInRate string `env:"RATE_LIMIT_SIGN_IN" envDefault:"10-M"`
	Storage    string `env:"RATE_LIMIT_STORAGE" envDefault:"memory"`
}

// MetricsConfig exposes Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	Path    string `env:"METRICS_PATH" envDefault:"/metrics"`
}

// NotificationConfig holds the audit webhook endpoint.
type NotificationConfig struct {
	WebhookURL     string `env:"NOTIFY_WEBHOOK_URL"`
	TimeoutSeconds int    `env:"NOTIFY_WEBHOOK_TIMEOUT_SECONDS" envDefault:"5"`
}

// Load reads configuration from .env and environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Backend.Mode {
	case BackendRemote:
		u, err := url.Parse(c.Backend.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid BACKEND_BASE_URL: %q", c.Backend.BaseURL)
		}
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when BACKEND_MODE is %q", BackendPostgres)
		}
	default:
		return fmt.Errorf("BACKEND_MODE must be %q or %q, got %q", BackendRemote, BackendPostgres, c.Backend.Mode)
	}

	for name, store := range map[string]string{
		"SESSION_STORE":      c.Session.Store,
		"RATE_LIMIT_STORAGE": c.RateLimit.Storage,
	} {
		if store != StoreMemory && store != StoreRedis {
			return fmt.Errorf("%s must be %q or %q, got %q", name, StoreMemory, StoreRedis, store)
		}
		if store == StoreRedis && c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required when %s is %q", name, StoreRedis)
		}
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.Session.TTL)
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME must not be empty")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the per-call timeout for the staff API client.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// Timeout returns the webhook delivery timeout.
func (n NotificationConfig) Timeout() time.Duration {
	if n.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(n.TimeoutSeconds) * time.Second
}

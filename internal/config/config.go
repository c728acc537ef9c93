// Package config loads and validates console config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Token store drivers accepted by TOKEN_STORE_DRIVER.
const (
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds console configuration loaded from the environment.
type Config struct {
	// APIBaseURL is the backend REST base URL (e.g. https://api.example.com). The only value the session layer requires.
	APIBaseURL string `mapstructure:"API_BASE_URL"`
	// HTTPTimeout is the http.Client timeout (e.g. "30s"). "0s" keeps the transport default.
	HTTPTimeout string `mapstructure:"HTTP_TIMEOUT"`

	// TokenStoreDriver selects where session artifacts persist: file, redis, postgres or memory.
	TokenStoreDriver string `mapstructure:"TOKEN_STORE_DRIVER"`
	// TokenStorePath is the JSON file used by the file driver.
	TokenStorePath string `mapstructure:"TOKEN_STORE_PATH"`
	// TokenStoreKey is an optional hex-encoded 32-byte key; when set the file driver encrypts at rest.
	TokenStoreKey string `mapstructure:"TOKEN_STORE_KEY"`
	// TokenNamespace prefixes every storage key (redis key prefix, postgres namespace column).
	TokenNamespace string `mapstructure:"TOKEN_NAMESPACE"`
	// RedisAddr is the Redis address for the redis driver.
	RedisAddr string `mapstructure:"REDIS_ADDR"`
	// DatabaseURL is the Postgres DSN for the postgres driver and cmd/migrate.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// JWTPublicKey is an optional PEM public key (inline or file path). When set, access tokens are signature-verified on decode.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// RefreshSingleFlight collapses concurrent 401-triggered refreshes into one backend call.
	RefreshSingleFlight bool `mapstructure:"REFRESH_SINGLE_FLIGHT"`
	// LandingRoute is the unauthenticated landing route used for hard navigation.
	LandingRoute string `mapstructure:"LANDING_ROUTE"`
	// UnauthorizedRoute is where the route guard sends users lacking the required role.
	UnauthorizedRoute string `mapstructure:"UNAUTHORIZED_ROUTE"`

	// LogLevel is the slog level (debug, info, warn, error).
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// LogFormat is "text" or "json".
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// OTLPEndpoint is the OpenTelemetry collector endpoint; empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces a plaintext connection to the collector.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`

	// Session events (optional). When Kafka brokers are set, session events are published to Kafka.
	// KafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// SessionEventsTopic is the Kafka topic for session events.
	SessionEventsTopic string `mapstructure:"SESSION_EVENTS_TOPIC"`
	// KafkaGroupID is the consumer group ID for the session events worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
	// Worker-only: Loki URL the worker pushes session events to (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`

	// Mock backend (cmd/mockapi) settings.
	MockAPIAddr        string `mapstructure:"MOCK_API_ADDR"`
	MockJWTPrivateKey  string `mapstructure:"MOCK_JWT_PRIVATE_KEY"`
	MockJWTPublicKey   string `mapstructure:"MOCK_JWT_PUBLIC_KEY"`
	MockAccessTTL      string `mapstructure:"MOCK_ACCESS_TTL"`
	MockRefreshTTL     string `mapstructure:"MOCK_REFRESH_TTL"`
	MockSeedEmail      string `mapstructure:"MOCK_SEED_EMAIL"`
	MockSeedPassword   string `mapstructure:"MOCK_SEED_PASSWORD"`
	BcryptCost         int    `mapstructure:"BCRYPT_COST"`
	// Env is the application environment (e.g. "development", "production"). The mock backend refuses to run in production.
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("API_BASE_URL", "http://localhost:8081")
	v.SetDefault("HTTP_TIMEOUT", "0s")
	v.SetDefault("TOKEN_STORE_DRIVER", DriverFile)
	v.SetDefault("TOKEN_STORE_PATH", ".console/session.json")
	v.SetDefault("TOKEN_STORE_KEY", "")
	v.SetDefault("TOKEN_NAMESPACE", "console")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("REFRESH_SINGLE_FLIGHT", true)
	v.SetDefault("LANDING_ROUTE", "/")
	v.SetDefault("UNAUTHORIZED_ROUTE", "/unauthorized")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("SESSION_EVENTS_TOPIC", "console-session-events")
	v.SetDefault("KAFKA_GROUP_ID", "console-session-worker")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("MOCK_API_ADDR", ":8081")
	v.SetDefault("MOCK_JWT_PRIVATE_KEY", "")
	v.SetDefault("MOCK_JWT_PUBLIC_KEY", "")
	v.SetDefault("MOCK_ACCESS_TTL", "15m")
	v.SetDefault("MOCK_REFRESH_TTL", "168h") // 7d
	v.SetDefault("MOCK_SEED_EMAIL", "admin@example.com")
	v.SetDefault("MOCK_SEED_PASSWORD", "password123")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.APIBaseURL = strings.TrimSpace(cfg.APIBaseURL)
	if cfg.APIBaseURL == "" {
		return nil, errors.New("config: API_BASE_URL must be set")
	}
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("config: API_BASE_URL must be an absolute URL")
	}

	cfg.TokenStoreDriver = strings.ToLower(strings.TrimSpace(cfg.TokenStoreDriver))
	switch cfg.TokenStoreDriver {
	case DriverFile, DriverRedis, DriverMemory:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("config: DATABASE_URL must be set when TOKEN_STORE_DRIVER=postgres")
		}
	default:
		return nil, errors.New("config: TOKEN_STORE_DRIVER must be one of file, redis, postgres, memory")
	}

	if cfg.TokenStoreKey != "" && len(cfg.TokenStoreKey) != 64 {
		return nil, errors.New("config: TOKEN_STORE_KEY must be 64 hex characters")
	}

	if cfg.LandingRoute == "" {
		cfg.LandingRoute = "/"
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// HTTPTimeoutDuration parses HTTPTimeout. Returns 0 (transport default) if unset, invalid or negative.
func (c *Config) HTTPTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// MockAccessTTLDuration parses MockAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) MockAccessTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.MockAccessTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// MockRefreshTTLDuration parses MockRefreshTTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) MockRefreshTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.MockRefreshTTL)
	if err != nil || d <= 0 {
		return 168 * time.Hour
	}
	return d
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if session event publishing is enabled (non-empty list) and to create the producer.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

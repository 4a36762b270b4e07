package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/medigo/backend/pkg/config"
)

// Lock backends for per-user cart serialization.
const (
	LockBackendRedis = "redis"
	LockBackendLocal = "local"
)

// Config holds all configuration for the MediGo backend.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"medigo-backend"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int           `env:"PORT" envDefault:"5000"`
	RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// Redis (cart documents and locks)
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// PostgreSQL (users, consultations, lab bookings)
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     int    `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME" envDefault:"medigo"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	DBMaxConns int32  `env:"DB_MAX_CONNS" envDefault:"10"`

	SlowQueryThreshold time.Duration `env:"DB_SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Cart locking
	CartLockBackend string        `env:"CART_LOCK_BACKEND" envDefault:"redis"`
	CartLockTTL     time.Duration `env:"CART_LOCK_TTL" envDefault:"5s"`
	CartLockWait    time.Duration `env:"CART_LOCK_WAIT" envDefault:"3s"`

	// Symptom-advice model
	ChatModelURL     string        `env:"CHAT_MODEL_URL"`
	ChatModelToken   string        `env:"HUGGINGFACE_API_TOKEN"`
	ChatModelTimeout time.Duration `env:"CHAT_MODEL_TIMEOUT" envDefault:"30s"`
	ChatMaxRetries   int           `env:"CHAT_MAX_RETRIES" envDefault:"2"`
	ChatRateRPS      float64       `env:"CHAT_RATE_LIMIT_RPS" envDefault:"1"`
	ChatRateBurst    int           `env:"CHAT_RATE_LIMIT_BURST" envDefault:"5"`
	TrustProxy       bool          `env:"TRUST_PROXY" envDefault:"false"`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// CORS and debug endpoints
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	PprofAllowedCIDRs  []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,::1/128" envSeparator:","`
}

// Load reads configuration from environment variables. When environment is
// given it replaces the process environment.
func Load(environment ...map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, environment...); err != nil {
		return nil, fmt.Errorf("load medigo config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.DBPort < 1 || c.DBPort > 65535 {
		return fmt.Errorf("invalid DB_PORT: %d", c.DBPort)
	}
	if c.DBName == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	switch c.CartLockBackend {
	case LockBackendRedis, LockBackendLocal:
	default:
		return fmt.Errorf("CART_LOCK_BACKEND must be %q or %q, got %q", LockBackendRedis, LockBackendLocal, c.CartLockBackend)
	}
	if c.CartLockTTL <= 0 {
		return fmt.Errorf("CART_LOCK_TTL must be positive")
	}
	if c.CartLockWait < 0 {
		return fmt.Errorf("CART_LOCK_WAIT must not be negative")
	}
	if c.ChatMaxRetries < 0 {
		return fmt.Errorf("CHAT_MAX_RETRIES must not be negative")
	}
	if c.ChatRateRPS < 0 || c.ChatRateBurst < 0 {
		return fmt.Errorf("CHAT_RATE_LIMIT_RPS and CHAT_RATE_LIMIT_BURST must not be negative")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %v", c.OTELSampleRate)
	}
	return nil
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(map[string]string{})

	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.HTTPPort)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "medigo", cfg.DBName)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, LockBackendRedis, cfg.CartLockBackend)
	assert.Equal(t, 3*time.Second, cfg.CartLockWait)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.ChatModelURL)
	assert.False(t, cfg.OTELEnabled)
	assert.InDelta(t, 1.0, cfg.ChatRateRPS, 1e-9)
	assert.Equal(t, 5, cfg.ChatRateBurst)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(map[string]string{
		"PORT":                  "8080",
		"REDIS_ADDR":            "redis.prod:6380",
		"DB_HOST":               "pg.internal",
		"KAFKA_BROKERS":         "k1:9092,k2:9092",
		"CART_LOCK_BACKEND":     "local",
		"CART_LOCK_WAIT":        "500ms",
		"HUGGINGFACE_API_TOKEN": "hf_secret",
		"CORS_ALLOWED_ORIGINS":  "https://medigo.example,http://localhost:3000",
	})

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "redis.prod:6380", cfg.RedisAddr)
	assert.Equal(t, "pg.internal", cfg.DBHost)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, LockBackendLocal, cfg.CartLockBackend)
	assert.Equal(t, 500*time.Millisecond, cfg.CartLockWait)
	assert.Equal(t, "hf_secret", cfg.ChatModelToken)
	assert.Len(t, cfg.CORSAllowedOrigins, 2)
}

func TestLoad_ProcessEnvironment(t *testing.T) {
	t.Setenv("PORT", "6000")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 6000, cfg.HTTPPort)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"port zero", map[string]string{"PORT": "0"}, "invalid HTTP port"},
		{"port too large", map[string]string{"PORT": "70000"}, "invalid HTTP port"},
		{"db port", map[string]string{"DB_PORT": "-1"}, "invalid DB_PORT"},
		{"lock backend", map[string]string{"CART_LOCK_BACKEND": "etcd"}, "CART_LOCK_BACKEND"},
		{"lock ttl", map[string]string{"CART_LOCK_TTL": "0s"}, "CART_LOCK_TTL"},
		{"lock wait", map[string]string{"CART_LOCK_WAIT": "-1s"}, "CART_LOCK_WAIT"},
		{"retries", map[string]string{"CHAT_MAX_RETRIES": "-2"}, "CHAT_MAX_RETRIES"},
		{"rate limit", map[string]string{"CHAT_RATE_LIMIT_RPS": "-1"}, "CHAT_RATE_LIMIT_RPS"},
		{"sample rate", map[string]string{"OTEL_SAMPLE_RATE": "2.0"}, "OTEL_SAMPLE_RATE must be between 0.0 and 1.0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(tc.env)

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad_MalformedValue(t *testing.T) {
	cfg, err := Load(map[string]string{"REDIS_DB": "zero"})

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load medigo config")
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost:5432/sora?sslmode=disable")
	t.Setenv("DB_SCHEMA", "sora")
	t.Setenv("DISCORD_BOT_TOKEN", "token")

	for _, key := range []string{
		"PORT", "CORS_ALLOWED_ORIGINS", "ENVIRONMENT", "LOG_LEVEL", "LOG_FORMAT", "CACHE_BACKEND",
		"REDIS_URL", "CACHE_EVICTION_INTERVAL", "STARBOARD_WORKERS", "STARBOARD_SUPPRESSION_TTL",
		"CLERK_SECRET_KEY", "SLACK_ALERT_WEBHOOK_URL", "SERVER_LOGS_URL", "API_RATE_LIMIT_RPS",
		"API_RATE_LIMIT_BURST", "USE_STRICT_CONFIG", "TESTING_MODE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "sora", cfg.DatabaseSchema)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, CacheBackendMemory, cfg.CacheConfig.Backend)
	assert.Equal(t, time.Minute, cfg.CacheConfig.EvictionInterval)
	assert.Equal(t, 8, cfg.StarboardConfig.Workers)
	assert.Equal(t, time.Hour, cfg.StarboardConfig.SuppressionTTL)
	assert.Equal(t, float64(10), cfg.RateLimitConfig.RequestsPerSecond)
	assert.Equal(t, 20, cfg.RateLimitConfig.Burst)
	assert.False(t, cfg.UseStrictConfig)
	assert.False(t, cfg.TestingMode)
	assert.False(t, cfg.ClerkConfig.IsConfigured())
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("CACHE_BACKEND", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("STARBOARD_WORKERS", "16")
	t.Setenv("STARBOARD_SUPPRESSION_TTL", "90m")
	t.Setenv("CLERK_SECRET_KEY", "sk_test")
	t.Setenv("SLACK_ALERT_WEBHOOK_URL", "https://hooks.slack.com/services/x")
	t.Setenv("USE_STRICT_CONFIG", "true")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, CacheBackendRedis, cfg.CacheConfig.Backend)
	assert.Equal(t, 16, cfg.StarboardConfig.Workers)
	assert.Equal(t, 90*time.Minute, cfg.StarboardConfig.SuppressionTTL)
	assert.True(t, cfg.UseStrictConfig)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name          string
		env           map[string]string
		expectedError string
	}{
		{name: "missing database url", env: map[string]string{"DB_URL": ""}, expectedError: "DB_URL is not set"},
		{name: "missing bot token", env: map[string]string{"DISCORD_BOT_TOKEN": ""}, expectedError: "DISCORD_BOT_TOKEN is not set"},
		{name: "invalid duration", env: map[string]string{"STARBOARD_SUPPRESSION_TTL": "soon"}, expectedError: "invalid STARBOARD_SUPPRESSION_TTL"},
		{name: "invalid workers", env: map[string]string{"STARBOARD_WORKERS": "0"}, expectedError: "STARBOARD_WORKERS must be at least 1"},
		{name: "redis without url", env: map[string]string{"CACHE_BACKEND": "redis"}, expectedError: "REDIS_URL is required"},
		{name: "unknown backend", env: map[string]string{"CACHE_BACKEND": "memcached"}, expectedError: "unknown CACHE_BACKEND"},
		{name: "strict without clerk", env: map[string]string{"USE_STRICT_CONFIG": "true"}, expectedError: "clerk authentication"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			cfg, err := LoadConfig()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
			assert.Nil(t, cfg)
		})
	}
}

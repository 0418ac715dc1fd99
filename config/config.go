package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

type DiscordConfig struct {
	BotToken string
}

type CacheConfig struct {
	Backend          string
	RedisURL         string
	EvictionInterval time.Duration
}

type StarboardConfig struct {
	Workers        int
	SuppressionTTL time.Duration
}

type ClerkConfig struct {
	SecretKey string
}

// IsConfigured returns true if all required Clerk configuration is present
func (c ClerkConfig) IsConfigured() bool {
	return c.SecretKey != ""
}

type AlertConfig struct {
	SlackWebhookURL string
	ServerLogsURL   string
}

// IsConfigured returns true if error alerts have somewhere to go
func (c AlertConfig) IsConfigured() bool {
	return c.SlackWebhookURL != ""
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type AppConfig struct {
	// Core configuration (always required)
	DatabaseURL        string
	DatabaseSchema     string
	Port               string
	CORSAllowedOrigins []string
	Environment        string
	LogLevel           string
	LogFormat          string
	UseStrictConfig    bool // If true, error when an optional integration is not configured
	TestingMode        bool

	DiscordConfig   DiscordConfig
	CacheConfig     CacheConfig
	StarboardConfig StarboardConfig
	ClerkConfig     ClerkConfig
	AlertConfig     AlertConfig
	RateLimitConfig RateLimitConfig
}

func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("⚠️ Could not load .env file, continuing with system env vars")
	}

	databaseURL, err := getEnvRequired("DB_URL")
	if err != nil {
		return nil, err
	}
	databaseSchema, err := getEnvRequired("DB_SCHEMA")
	if err != nil {
		return nil, err
	}
	// the bot application needs the privileged Message Content intent enabled in the developer portal
	botToken, err := getEnvRequired("DISCORD_BOT_TOKEN")
	if err != nil {
		return nil, err
	}

	evictionInterval, err := getEnvDuration("CACHE_EVICTION_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}
	suppressionTTL, err := getEnvDuration("STARBOARD_SUPPRESSION_TTL", time.Hour)
	if err != nil {
		return nil, err
	}
	workers, err := getEnvInt("STARBOARD_WORKERS", 8)
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		return nil, fmt.Errorf("STARBOARD_WORKERS must be at least 1, got %d", workers)
	}
	burst, err := getEnvInt("API_RATE_LIMIT_BURST", 20)
	if err != nil {
		return nil, err
	}
	rps, err := getEnvFloat("API_RATE_LIMIT_RPS", 10)
	if err != nil {
		return nil, err
	}

	config := &AppConfig{
		DatabaseURL:        databaseURL,
		DatabaseSchema:     databaseSchema,
		Port:               getEnvWithDefault("PORT", "8080"),
		CORSAllowedOrigins: splitList(getEnvWithDefault("CORS_ALLOWED_ORIGINS", "*")),
		Environment:        getEnvWithDefault("ENVIRONMENT", "dev"),
		LogLevel:           getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat:          getEnvWithDefault("LOG_FORMAT", "text"),
		UseStrictConfig:    getEnvWithDefault("USE_STRICT_CONFIG", "false") == "true",
		TestingMode:        getEnvWithDefault("TESTING_MODE", "false") == "true",

		DiscordConfig: DiscordConfig{
			BotToken: botToken,
		},
		CacheConfig: CacheConfig{
			Backend:          strings.ToLower(getEnvWithDefault("CACHE_BACKEND", CacheBackendMemory)),
			RedisURL:         os.Getenv("REDIS_URL"),
			EvictionInterval: evictionInterval,
		},
		StarboardConfig: StarboardConfig{
			Workers:        workers,
			SuppressionTTL: suppressionTTL,
		},
		ClerkConfig: ClerkConfig{
			SecretKey: os.Getenv("CLERK_SECRET_KEY"),
		},
		AlertConfig: AlertConfig{
			SlackWebhookURL: os.Getenv("SLACK_ALERT_WEBHOOK_URL"),
			ServerLogsURL:   os.Getenv("SERVER_LOGS_URL"),
		},
		RateLimitConfig: RateLimitConfig{
			RequestsPerSecond: rps,
			Burst:             burst,
		},
	}

	switch config.CacheConfig.Backend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if config.CacheConfig.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when CACHE_BACKEND=redis")
		}
	default:
		return nil, fmt.Errorf("unknown CACHE_BACKEND %q", config.CacheConfig.Backend)
	}

	if config.ClerkConfig.IsConfigured() {
		slog.Info("✅ Clerk authentication configured")
	} else {
		slog.Warn("⚠️ Clerk authentication not configured - Dashboard authentication will be disabled")
		if config.UseStrictConfig {
			return nil, fmt.Errorf("clerk authentication is not fully configured (USE_STRICT_CONFIG=true)")
		}
	}

	if config.AlertConfig.IsConfigured() {
		slog.Info("✅ Slack error alerts configured")
	} else {
		slog.Warn("⚠️ Slack error alerts not configured - errors will only be logged")
		if config.UseStrictConfig {
			return nil, fmt.Errorf("slack error alerts are not configured (USE_STRICT_CONFIG=true)")
		}
	}

	return config, nil
}

func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set", key)
	}
	return value, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

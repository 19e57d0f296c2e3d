package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Database
	DatabaseURL    string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBWaitTimeout  time.Duration
	DBWaitInterval time.Duration

	// Clerk webhooks (svix signed)
	ClerkWebhookSecret string

	// Optional bearer auth; X-User-Id is used when empty
	AuthJWTSecret string

	// Search index
	RedisURL    string
	MeiliURL    string
	MeiliAPIKey string

	// AI chat
	OpenAIAPIKey string
	OpenAIAPIURL string
	OpenAIModel  string
	AITimeout    time.Duration

	// Logging
	LogLevel         string
	LogRetentionDays int

	// Error tracking
	SentryDSN string
	AppEnv    string

	// Server
	Port        string
	CORSOrigins string
}

// Load reads defaults, an optional config.yaml and the environment, in
// increasing order of precedence.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:    v.GetString("DATABASE_URL"),
		DBHost:         v.GetString("POSTGRES_HOST"),
		DBPort:         v.GetString("POSTGRES_PORT"),
		DBUser:         v.GetString("POSTGRES_USER"),
		DBPassword:     v.GetString("POSTGRES_PASSWORD"),
		DBName:         v.GetString("POSTGRES_DB"),
		DBSSLMode:      v.GetString("DB_SSLMODE"),
		DBWaitTimeout:  parseDuration(v.GetString("DB_WAIT_TIMEOUT"), 60*time.Second),
		DBWaitInterval: parseDuration(v.GetString("DB_WAIT_INTERVAL"), 2*time.Second),

		ClerkWebhookSecret: v.GetString("CLERK_WEBHOOK_SECRET"),
		AuthJWTSecret:      v.GetString("AUTH_JWT_SECRET"),

		RedisURL:    v.GetString("REDIS_URL"),
		MeiliURL:    v.GetString("MEILI_URL"),
		MeiliAPIKey: v.GetString("MEILI_API_KEY"),

		OpenAIAPIKey: v.GetString("OPENAI_API_KEY"),
		OpenAIAPIURL: v.GetString("OPENAI_API_URL"),
		OpenAIModel:  v.GetString("OPENAI_MODEL"),
		AITimeout:    parseDuration(v.GetString("AI_TIMEOUT"), 60*time.Second),

		LogLevel:         v.GetString("LOG_LEVEL"),
		LogRetentionDays: v.GetInt("LOG_RETENTION_DAYS"),

		SentryDSN: v.GetString("SENTRY_DSN"),
		AppEnv:    v.GetString("APP_ENV"),

		Port:        v.GetString("PORT"),
		CORSOrigins: v.GetString("CORS_ORIGINS"),
	}

	if cfg.DBWaitInterval <= 0 {
		cfg.DBWaitInterval = 2 * time.Second
	}
	if cfg.LogRetentionDays <= 0 {
		cfg.LogRetentionDays = 30
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "originhub")
	v.SetDefault("POSTGRES_PASSWORD", "originhub123")
	v.SetDefault("POSTGRES_DB", "originhub")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_WAIT_TIMEOUT", "60s")
	v.SetDefault("DB_WAIT_INTERVAL", "2s")

	v.SetDefault("OPENAI_API_URL", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("AI_TIMEOUT", "60s")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_RETENTION_DAYS", 30)

	v.SetDefault("PORT", "8000")
	v.SetDefault("CORS_ORIGINS", "*")
}

// DSN prefers DATABASE_URL and falls back to the discrete POSTGRES_* settings.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

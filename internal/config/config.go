// Package config loads runtime configuration from the environment, with
// an optional .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/sakshee44566/CareerHub/internal/session"
)

// Storage drivers.
const (
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Notifier transports.
const (
	NotifierLog   = "log"
	NotifierSMTP  = "smtp"
	NotifierRedis = "redis"
)

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
	"http://localhost:8080",
	"http://127.0.0.1:8080",
	"https://animated-moonbeam-a6d4b0.netlify.app",
}

type Config struct {
	Port     string
	Env      string
	LogLevel slog.Level

	StorageDriver string
	DataFile      string
	SQLitePath    string
	DatabaseURL   string

	AdminUser         string
	AdminPass         string
	SessionSigningKey string
	SessionSweep      string

	CorsAllowedOrigins []string

	Notifier      string
	SMTPProvider  string
	SMTPHost      string
	SMTPPort      int
	EmailUser     string
	EmailPass     string
	EmailFrom     string
	EmailTo       string
	RedisURL      string
	NotifyChannel string
}

// Production reports whether APP_ENV is "production".
func (c Config) Production() bool {
	return c.Env == "production"
}

// Load reads .env (if present) and the environment and validates the result.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port: getEnv("PORT", "5000"),
		Env:  strings.ToLower(getEnv("APP_ENV", "development")),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageFile)),
		DataFile:      getEnv("DATA_FILE", "data/posts.json"),
		SQLitePath:    getEnv("SQLITE_PATH", "data/careerhub.db"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		AdminUser:         getEnv("ADMIN_USER", ""),
		AdminPass:         getEnv("ADMIN_PASS", ""),
		SessionSigningKey: getEnv("SESSION_SIGNING_KEY", ""),
		SessionSweep:      getEnv("SESSION_SWEEP", session.DefaultSweepSpec),

		CorsAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),

		Notifier:      strings.ToLower(getEnv("NOTIFIER", NotifierLog)),
		SMTPProvider:  strings.ToLower(getEnv("SMTP_PROVIDER", "gmail")),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		EmailUser:     getEnv("EMAIL_USER", ""),
		EmailPass:     getEnv("EMAIL_PASS", getEnv("APP_PASSWORD", "")),
		EmailFrom:     getEnv("EMAIL_FROM", ""),
		EmailTo:       getEnv("EMAIL_TO", ""),
		RedisURL:      getEnv("REDIS_URL", ""),
		NotifyChannel: getEnv("NOTIFY_CHANNEL", ""),
	}

	if len(cfg.CorsAllowedOrigins) == 0 {
		cfg.CorsAllowedOrigins = defaultOrigins
	}

	level, err := parseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	if raw := getEnv("SMTP_PORT", ""); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 {
			return Config{}, fmt.Errorf("SMTP_PORT must be a positive integer, got %q", raw)
		}
		cfg.SMTPPort = port
	}

	if err := cfg.applyAdminDefaults(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyAdminDefaults falls back to the built-in admin credentials outside
// production. In production both must be set explicitly.
func (c *Config) applyAdminDefaults() error {
	if c.AdminUser != "" && c.AdminPass != "" {
		return nil
	}
	if c.Production() {
		return errors.New("ADMIN_USER and ADMIN_PASS are required in production")
	}
	if c.AdminUser == "" {
		c.AdminUser = session.DefaultUsername
	}
	if c.AdminPass == "" {
		slog.Warn("ADMIN_PASS not set, using default password")
		c.AdminPass = session.DefaultPassword
	}
	return nil
}

func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageFile:
		if c.DataFile == "" {
			return errors.New("DATA_FILE is required for the file storage driver")
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite storage driver")
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres storage driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.Notifier {
	case NotifierLog:
	case NotifierSMTP:
		if c.EmailUser == "" || c.EmailPass == "" {
			return errors.New("EMAIL_USER and EMAIL_PASS are required for the smtp notifier")
		}
	case NotifierRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis notifier")
		}
	default:
		return fmt.Errorf("unknown NOTIFIER %q", c.Notifier)
	}
	return nil
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

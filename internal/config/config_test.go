package config

import (
	"log/slog"
	"os"
	"reflect"
	"testing"
)

var configKeys = []string{
	"PORT", "APP_ENV", "LOG_LEVEL",
	"STORAGE_DRIVER", "DATA_FILE", "SQLITE_PATH", "DATABASE_URL",
	"ADMIN_USER", "ADMIN_PASS", "SESSION_SIGNING_KEY", "SESSION_SWEEP",
	"CORS_ALLOWED_ORIGINS",
	"NOTIFIER", "SMTP_PROVIDER", "SMTP_HOST", "SMTP_PORT",
	"EMAIL_USER", "EMAIL_PASS", "APP_PASSWORD", "EMAIL_FROM", "EMAIL_TO",
	"REDIS_URL", "NOTIFY_CHANNEL",
}

// clearEnv blanks every key Load reads and runs from an empty directory so
// a stray .env file cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "5000" {
		t.Errorf("Port = %q, want 5000", cfg.Port)
	}
	if cfg.Production() {
		t.Error("expected development by default")
	}
	if cfg.StorageDriver != StorageFile || cfg.DataFile != "data/posts.json" {
		t.Errorf("storage = %s %s", cfg.StorageDriver, cfg.DataFile)
	}
	if cfg.AdminUser != "admin" || cfg.AdminPass != "admin123" {
		t.Errorf("admin = %s/%s, want default credentials", cfg.AdminUser, cfg.AdminPass)
	}
	if cfg.SessionSweep != "@every 1m" {
		t.Errorf("SessionSweep = %q", cfg.SessionSweep)
	}
	if cfg.Notifier != NotifierLog {
		t.Errorf("Notifier = %q, want log", cfg.Notifier)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want INFO", cfg.LogLevel)
	}
	if !reflect.DeepEqual(cfg.CorsAllowedOrigins, defaultOrigins) {
		t.Errorf("CorsAllowedOrigins = %v", cfg.CorsAllowedOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ADMIN_USER", "root")
	t.Setenv("ADMIN_PASS", "s3cret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("STORAGE_DRIVER", "SQLite")
	t.Setenv("APP_PASSWORD", "fallback-pass")
	t.Setenv("SMTP_PORT", "2525")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "8081" || cfg.LogLevel != slog.LevelDebug {
		t.Errorf("got port %s level %v", cfg.Port, cfg.LogLevel)
	}
	if cfg.AdminUser != "root" || cfg.AdminPass != "s3cret" {
		t.Errorf("admin = %s/%s", cfg.AdminUser, cfg.AdminPass)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.CorsAllowedOrigins, want) {
		t.Errorf("CorsAllowedOrigins = %v, want %v", cfg.CorsAllowedOrigins, want)
	}
	if cfg.StorageDriver != StorageSQLite {
		t.Errorf("StorageDriver = %q", cfg.StorageDriver)
	}
	if cfg.EmailPass != "fallback-pass" {
		t.Errorf("EmailPass = %q, want APP_PASSWORD fallback", cfg.EmailPass)
	}
	if cfg.SMTPPort != 2525 {
		t.Errorf("SMTPPort = %d", cfg.SMTPPort)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"production without credentials", map[string]string{"APP_ENV": "production"}},
		{"production without password", map[string]string{"APP_ENV": "production", "ADMIN_USER": "root"}},
		{"unknown storage driver", map[string]string{"STORAGE_DRIVER": "mongo"}},
		{"postgres without url", map[string]string{"STORAGE_DRIVER": "postgres"}},
		{"smtp without credentials", map[string]string{"NOTIFIER": "smtp"}},
		{"redis without url", map[string]string{"NOTIFIER": "redis"}},
		{"unknown notifier", map[string]string{"NOTIFIER": "pigeon"}},
		{"bad smtp port", map[string]string{"SMTP_PORT": "abc"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected Load() to fail")
			}
		})
	}
}

func TestLoad_ProductionWithCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("ADMIN_USER", "root")
	t.Setenv("ADMIN_PASS", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.Production() {
		t.Error("expected production")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables already present, so unset PORT.
	os.Unsetenv("PORT")
	if err := os.WriteFile(".env", []byte("PORT=9090\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want value from .env", cfg.Port)
	}
}

func TestSplitCSV(t *testing.T) {
	if got := splitCSV(""); len(got) != 0 {
		t.Errorf("splitCSV(\"\") = %v", got)
	}
	if got := splitCSV(" a ,b,,"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("splitCSV = %v", got)
	}
}

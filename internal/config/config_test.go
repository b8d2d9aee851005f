package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET_KEY", "jwt-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "hr_portal", cfg.Database.Name)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.App.AllowedOrigins)
	assert.Equal(t, "1h", cfg.JWT.AccessExpiration)
	assert.Equal(t, "168h", cfg.JWT.RefreshExpiration)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, 30*time.Minute, cfg.Redis.TTL)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Notification.WorkerCount)
	assert.Equal(t, 5*time.Second, cfg.Notification.FlushInterval)
	assert.True(t, cfg.Cron.Enabled)
	assert.Equal(t, time.Hour, cfg.Cron.Interval)
	assert.False(t, cfg.OAuth2Google.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://hr.example.com, https://admin.example.com,")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CRON_ENABLED", "false")
	t.Setenv("CLIENT_ID", "id")
	t.Setenv("CLIENT_SECRET", "secret")
	t.Setenv("REDIRECT_URL", "http://localhost:8080/api/v1/auth/google/callback")
	t.Setenv("SCOPES", "email,profile")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://hr.example.com", "https://admin.example.com"}, cfg.App.AllowedOrigins)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.False(t, cfg.Cron.Enabled)
	assert.True(t, cfg.OAuth2Google.Enabled())
	assert.Equal(t, []string{"email", "profile"}, cfg.OAuth2Google.Scopes)
}

func TestLoad_Invalid(t *testing.T) {
	for name, env := range map[string]map[string]string{
		"missing db password":  {"DB_PASSWORD": ""},
		"missing jwt secret":   {"JWT_SECRET_KEY": ""},
		"bad port":             {"APP_PORT": "http"},
		"bad access ttl":       {"JWT_ACCESS_EXPIRATION_TIME": "soon"},
		"bad cache ttl":        {"PERMISSION_CACHE_TTL": "forever"},
		"unsupported storage":  {"STORAGE_TYPE": "s3"},
		"scopes required":      {"CLIENT_ID": "id"},
		"no notification pool": {"NOTIFICATION_WORKERS": "0"},
	} {
		t.Run(name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestConfig_DatabaseURL(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "hr",
		Password: "pw",
		Name:     "portal",
		SSLMode:  "require",
	}}
	assert.Equal(t, "postgres://hr:pw@db:5433/portal?sslmode=require", cfg.DatabaseURL())
}

func TestConfig_SlogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	} {
		cfg := &Config{App: AppConfig{LogLevel: in}}
		assert.Equal(t, want, cfg.SlogLevel(), in)
	}
}

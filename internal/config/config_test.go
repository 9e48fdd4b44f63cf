package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("AUTH_JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Empty(t, cfg.Postgres.DSN)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "admin@cityfeedback.de", cfg.Bootstrap.AdminEmail)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("LOG_FILE", "/tmp/feedback.log")
	t.Setenv("AUTH_LOGIN_REQUESTS_PER_MINUTE", "3")
	t.Setenv("OTEL_ENABLED", "yes-please")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.App.Port)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "/tmp/feedback.log", cfg.Logger.File)
	assert.Equal(t, 3, cfg.Auth.LoginRequestsPerMin)
	assert.False(t, cfg.Tracing.Enabled, "unparsable booleans fall back to the default")
}

func TestProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("AUTH_JWT_SECRET", "s3cr3t-value")
	_, err = Load()
	require.NoError(t, err)
}

func TestInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")
	_, err := Load()
	require.Error(t, err)
}

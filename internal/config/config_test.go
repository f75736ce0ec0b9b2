package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DASHBOARD_CACHE_SECONDS", "")
	t.Setenv("S3_BUCKET", "")
	t.Setenv("MERCADOPAGO_ACCESS_TOKEN", "")

	cfg := Load()

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 30*time.Second, cfg.DashboardCacheTTL)
	assert.False(t, cfg.StorageEnabled())
	assert.False(t, cfg.PaymentsEnabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "15")
	t.Setenv("WORKER_INTERVAL_SECONDS", "5")
	t.Setenv("S3_BUCKET", "docs")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 5*time.Second, cfg.WorkerInterval)
	assert.True(t, cfg.StorageEnabled())
}

func TestGetEnvInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("REFRESH_TOKEN_TTL_DAYS", "abc")
	assert.Equal(t, 30, getEnvInt("REFRESH_TOKEN_TTL_DAYS", 30))

	t.Setenv("REFRESH_TOKEN_TTL_DAYS", "-2")
	assert.Equal(t, 30, getEnvInt("REFRESH_TOKEN_TTL_DAYS", 30))
}

package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aroraumang/payment-gateway-stripe/internal/config"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := config.LoadFromEnv()

	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "payment_gateway", cfg.Database.Database)
	assert.Equal(t, "https://api.stripe.com/v1", cfg.Stripe.BaseURL)
	assert.Equal(t, 30, cfg.Stripe.Timeout)
	assert.Equal(t, 9090, cfg.Server.MetricsPort)
	assert.Equal(t, "env", cfg.Secrets.Backend)
	assert.Empty(t, cfg.Redis.Addr, "redis guard is disabled by default")
}

func TestLoadFromEnv_RequiresPassword(t *testing.T) {
	t.Setenv("DB_PASSWORD", "")

	_, err := config.LoadFromEnv()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_MAX_CONNS", "50")
	t.Setenv("STRIPE_BASE_URL", "http://localhost:12111/v1")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("LOG_DEVELOPMENT", "true")

	cfg, err := config.LoadFromEnv()

	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, int32(50), cfg.Database.MaxConns)
	assert.Equal(t, "http://localhost:12111/v1", cfg.Stripe.BaseURL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.True(t, cfg.Logger.Development)
}

func TestLoadFromEnv_VaultBackendRequiresAddress(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("SECRETS_BACKEND", "vault")
	t.Setenv("VAULT_ADDR", "")

	_, err := config.LoadFromEnv()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "VAULT_ADDR")
}

func TestLoadFromEnv_UnknownBackendRejected(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("SECRETS_BACKEND", "consul")

	_, err := config.LoadFromEnv()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown secrets backend")
}

func TestConnectionString(t *testing.T) {
	dbCfg := config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "secret",
		Database: "payment_gateway",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=secret dbname=payment_gateway sslmode=disable",
		dbCfg.ConnectionString())
}

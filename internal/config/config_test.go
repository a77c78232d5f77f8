package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("AUTH_SESSION_TTL_MINUTES", "")
	t.Setenv("AUTHZ_RESTRICT_TICKET_VIEW", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "helpdesk_session", cfg.Auth.CookieName)
	assert.Equal(t, 8*time.Hour, cfg.Auth.SessionTTL())
	assert.False(t, cfg.Authz.RestrictTicketView)
	assert.Equal(t, "migrations", cfg.Postgres.MigrationsDir)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_HOST", "127.0.0.1")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("AUTH_SESSION_TTL_MINUTES", "15")
	t.Setenv("AUTHZ_RESTRICT_TICKET_VIEW", "true")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.App.Addr())
	assert.Equal(t, 15*time.Minute, cfg.Auth.SessionTTL())
	assert.Equal(t, 5*time.Second, cfg.App.RequestTimeout())
	assert.True(t, cfg.Authz.RestrictTicketView)
}

func TestLoadRejectsDevSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBcryptCostOutOfRange(t *testing.T) {
	t.Setenv("AUTH_BCRYPT_COST", "2")

	_, err := Load()
	assert.Error(t, err)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gcs", cfg.MediaDriver)
	assert.Equal(t, 3, cfg.GraphRetryAttempts)
	assert.Equal(t, 50*time.Millisecond, cfg.GraphRetryBackoff)
	assert.Equal(t, 10, cfg.SuggestedLimit)
	assert.True(t, cfg.MailSendEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GRAPH_RETRY_ATTEMPTS", "0")
	t.Setenv("JWT_ACCESS_TTL", "15m")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 1, cfg.GraphRetryAttempts, "attempts are clamped to at least one")
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.True(t, cfg.CookieSecure)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("JWT_ACCESS_TTL", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_BypassCIDRs(t *testing.T) {
	t.Setenv("RATE_LIMIT_BYPASS_CIDRS", "10.0.0.0/8,203.0.113.0/24")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "203.0.113.0/24"}, cfg.RateLimitBypassCIDRs)
	assert.Equal(t, "warn", cfg.LogLevel)

	t.Setenv("RATE_LIMIT_BYPASS_CIDRS", "10.0.0.0/8,office")
	_, err = Load()
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "d", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.PostgresDSN())
}

func TestCORSOrigins(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: " http://a.test, ,http://b.test "}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
}

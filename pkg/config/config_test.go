package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/petshop")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/petshop")
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("SESSION_SECRET", "session")
	t.Setenv("PORT", "")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("FREE_DELIVERY_THRESHOLD", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5500", cfg.Port)
	assert.True(t, cfg.CookieSecure)
	assert.False(t, cfg.EnableMobileTokenReturn)
	assert.Equal(t, 999.0, cfg.FreeDeliveryThreshold)
}

func TestEnvironmentHelpers(t *testing.T) {
	prev := AppConfig
	defer func() { AppConfig = prev }()

	AppConfig = &Config{Environment: "production"}
	assert.True(t, IsProduction())
	assert.False(t, IsDevelopment())

	AppConfig = &Config{Environment: ""}
	assert.True(t, IsDevelopment())
}

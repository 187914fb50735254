package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, envFileLoaded, err := Load()
	require.NoError(t, err)

	assert.False(t, envFileLoaded)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite://bookit.db", cfg.DatabaseURL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 20, cfg.AuthRateLimit)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("CORS_ORIGIN", "http://a.test, http://b.test")
	t.Setenv("APP_ENV", "production")

	cfg, _, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
	assert.True(t, cfg.IsProduction())
}

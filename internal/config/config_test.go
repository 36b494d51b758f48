package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/circle-miniapp/internal/config"
	"github.com/stretchr/testify/require"
)

func TestEnvVars(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("PORT", "")
		t.Setenv("ENV", "")
		c := config.New()
		require.Equal(t, ":3000", c.GetPort())
		require.Equal(t, config.EnvDev, c.GetEnv())
		require.True(t, c.IsDev())
		require.Equal(t, "http://127.0.0.1:8001/api/v1", c.GetAPIBaseURL())
		require.Equal(t, time.Duration(0), c.GetAPITimeout())
		require.Equal(t, config.SessionStoreMemory, c.GetSessionStore())
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("PORT", ":9000")
		t.Setenv("ENV", "prod")
		t.Setenv("API_TIMEOUT", "15s")
		t.Setenv("REDIS_HOST", "cache")
		t.Setenv("REDIS_DB", "3")
		c := config.New()
		require.Equal(t, ":9000", c.GetPort())
		require.Equal(t, "PROD", c.GetEnv())
		require.False(t, c.IsDev())
		require.True(t, c.GetSecureCookies())
		require.Equal(t, 15*time.Second, c.GetAPITimeout())
		require.Equal(t, "cache:6379", c.GetRedisAddr())
		require.Equal(t, 3, c.GetRedisDB())
	})

	t.Run("bad numbers fall back", func(t *testing.T) {
		t.Setenv("REDIS_DB", "three")
		t.Setenv("SESSION_MAX_AGE", "forever")
		c := config.New()
		require.Equal(t, 0, c.GetRedisDB())
		require.Equal(t, 30*24*time.Hour, c.GetSessionMaxAge())
	})
}

func TestAllowedOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://circle.example.com, https://admin.example.com")
	origins := config.New().GetAllowedOrigins()
	require.True(t, origins.IsAllowedOrigin("https://web.telegram.org"))
	require.True(t, origins.IsAllowedOrigin("https://circle.example.com"))
	require.True(t, origins.IsAllowedOrigin("https://admin.example.com"))
	require.False(t, origins.IsAllowedOrigin("https://evil.example.com"))
}

func TestSessionSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	require.False(t, config.New().HasSessionSecret())

	t.Setenv("SESSION_SECRET", "a-real-secret")
	require.True(t, config.New().HasSessionSecret())
	require.Equal(t, "a-real-secret", config.New().GetSessionSecret())
}

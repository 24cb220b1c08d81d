package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"SERVER_PORT", "DB_DRIVER", "DATABASE_URL", "REDIS_URL", "CORS_ALLOWED_ORIGINS", "API_PREFIX", "ENVIRONMENT"} {
		t.Setenv(k, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 8787, cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, "", cfg.RedisURL)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 5*time.Minute, cfg.StageCacheTTL)
	assert.Equal(t, "user_1", cfg.DefaultUserID)
	assert.True(t, cfg.IsDevelopment())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://crm@localhost/crm?sslmode=disable")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://crm.example.com , ,https://admin.example.com")
	t.Setenv("API_PREFIX", "v1/")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("RATE_LIMIT_WINDOW_SECONDS", "10")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, []string{"https://crm.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "/v1", cfg.APIPrefix)
	assert.Equal(t, 10*time.Second, cfg.RateLimitWindow)
	assert.False(t, cfg.IsDevelopment())
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"SERVER_PORT":             "eighty",
		"RATE_LIMIT_REQUESTS":     "lots",
		"STAGE_CACHE_TTL_SECONDS": "1m",
		"DB_DRIVER":               "mysql",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SERVER_PORT=7001\n"), 0o600))
	t.Chdir(dir)
	t.Setenv("SERVER_PORT", "")
	os.Unsetenv("SERVER_PORT")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.ServerPort)
}

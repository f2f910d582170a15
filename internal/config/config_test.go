package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "staff-admin", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, BackendRemote, cfg.Backend.Mode)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout())
	assert.Equal(t, StoreMemory, cfg.Session.Store)
	assert.Equal(t, 8*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "sid", cfg.Session.CookieName)
	assert.Equal(t, "10-M", cfg.RateLimit.SignInRate)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_PORT", "9090")
	t.Setenv("BACKEND_BASE_URL", "https://api.example.edu/v1")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "https://api.example.edu/v1", cfg.Backend.BaseURL)
	assert.Equal(t, StoreRedis, cfg.Session.Store)
	assert.Equal(t, 45*time.Minute, cfg.Session.TTL)
	assert.Zero(t, cfg.App.RequestTimeout())
}

func TestValidate(t *testing.T) {
	chdir(t, t.TempDir())

	cases := map[string]map[string]string{
		"unknown backend mode":     {"BACKEND_MODE": "grpc"},
		"postgres without dsn":     {"BACKEND_MODE": "postgres"},
		"relative backend url":     {"BACKEND_BASE_URL": "/api"},
		"redis sessions w/o redis": {"SESSION_STORE": "redis"},
		"redis limiter w/o redis":  {"RATE_LIMIT_STORAGE": "redis"},
		"unknown session store":    {"SESSION_STORE": "file"},
		"non-positive session ttl": {"SESSION_TTL": "0s"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("SESSION_BACKEND", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8091", cfg.ServerPort)
	assert.Equal(t, "http://localhost:5000/api", cfg.API.BaseURL)
	assert.Equal(t, "cookie", cfg.Session.Backend)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.GreaterOrEqual(t, len(cfg.Session.Secret), 32)
	assert.False(t, cfg.Session.SecureCookie)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "Redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("API_TIMEOUT", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Session.Backend)
	assert.Equal(t, 3, cfg.Session.Redis.DB)
	assert.Equal(t, 2*time.Second, cfg.API.Timeout)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown backend", env: map[string]string{"SESSION_BACKEND": "file"}},
		{name: "bad duration", env: map[string]string{"API_TIMEOUT": "soon"}},
		{name: "short secret", env: map[string]string{"SESSION_SECRET": "short"}},
		{name: "production without secret", env: map[string]string{"APP_ENV": "production", "SESSION_SECRET": ""}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

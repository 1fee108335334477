package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30*time.Second, cfg.Session.ProfileTTL)
	assert.Equal(t, 5*time.Second, cfg.Session.PollInterval)
}

func TestLoadYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cash4edu.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: http://localhost:9000/api
  timeout: 3s
storage:
  backend: sqlite
  sqlite_path: /tmp/c4e.db
session:
  poll_interval: 1s
`), 0o644))

	t.Setenv("CASH4EDU_LOG_LEVEL", "debug")
	t.Setenv("CASH4EDU_PROFILE_TTL", "10s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/api", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, "/tmp/c4e.db", cfg.Storage.SQLitePath)
	assert.Equal(t, time.Second, cfg.Session.PollInterval)
	assert.Equal(t, 10*time.Second, cfg.Session.ProfileTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestApplyEnvRejectsBadDuration(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(func(k string) string {
		if k == "CASH4EDU_POLL_INTERVAL" {
			return "soon"
		}
		return ""
	})
	assert.ErrorContains(t, err, "CASH4EDU_POLL_INTERVAL")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative base url", func(c *Config) { c.API.BaseURL = "/api" }},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "etcd" }},
		{"redis without addr", func(c *Config) { c.Storage.Backend = "redis"; c.Storage.RedisAddr = "" }},
		{"negative ttl", func(c *Config) { c.Session.ProfileTTL = -time.Second }},
		{"negative poll", func(c *Config) { c.Session.PollInterval = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

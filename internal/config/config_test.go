package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.UserAPI.BaseURL)
	assert.Equal(t, "/api/user", cfg.UserAPI.Path)
	assert.Equal(t, 0, cfg.UserAPI.TimeoutSeconds)
	assert.False(t, cfg.UserAPI.StrictSchema)
	assert.Equal(t, "8080", cfg.App.HTTPPort)
	assert.Equal(t, "50051", cfg.App.GRPCPort)
	assert.Equal(t, 10, cfg.App.ShutdownTimeoutSeconds)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "stderr", cfg.Logger.OutputPath)
	assert.Equal(t, "user-view", cfg.Logger.ServiceName)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := "USER_API_BASE_URL=http://users.internal:9000\nUSER_API_STRICT_SCHEMA=true\nHTTP_PORT=9090\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("USER_API_TIMEOUT_SECONDS", "5")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://users.internal:9000", cfg.UserAPI.BaseURL)
	assert.True(t, cfg.UserAPI.StrictSchema)
	assert.Equal(t, 5, cfg.UserAPI.TimeoutSeconds)
	// Environment wins over the file
	assert.Equal(t, "7070", cfg.App.HTTPPort)
}

func TestLoadConfig_ProductionLoggerDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.True(t, cfg.Logger.EnableSampling)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:     AppConfig{HTTPPort: "8080", GRPCPort: "50051", ShutdownTimeoutSeconds: 10},
			UserAPI: UserAPIConfig{BaseURL: "http://localhost:3000", Path: "/api/user"},
			Redis:   RedisConfig{Host: "localhost", Port: "6379"},
		}
	}

	tests := []struct {
		name     string
		mutate   func(c *Config)
		errorMsg string
	}{
		{"valid", func(c *Config) {}, ""},
		{"relative base url", func(c *Config) { c.UserAPI.BaseURL = "localhost:3000" }, "USER_API_BASE_URL"},
		{"ftp base url", func(c *Config) { c.UserAPI.BaseURL = "ftp://host" }, "USER_API_BASE_URL"},
		{"path without slash", func(c *Config) { c.UserAPI.Path = "api/user" }, "USER_API_PATH"},
		{"negative timeout", func(c *Config) { c.UserAPI.TimeoutSeconds = -1 }, "USER_API_TIMEOUT_SECONDS"},
		{"missing http port", func(c *Config) { c.App.HTTPPort = "" }, "HTTP_PORT"},
		{"zero shutdown timeout", func(c *Config) { c.App.ShutdownTimeoutSeconds = 0 }, "SHUTDOWN_TIMEOUT_SECONDS"},
		{"rate limit without rps", func(c *Config) {
			c.RateLimit = RateLimitConfig{Enabled: true, BurstCapacity: 5}
		}, "RATE_LIMIT_RPS"},
		{"rate limit without redis", func(c *Config) {
			c.RateLimit = RateLimitConfig{Enabled: true, RequestsPerSecond: 1, BurstCapacity: 1}
			c.Redis.Host = ""
		}, "REDIS_HOST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestUserURL(t *testing.T) {
	c := UserAPIConfig{BaseURL: "http://localhost:3000/", Path: "/api/user"}
	assert.Equal(t, "http://localhost:3000/api/user", c.UserURL())
}

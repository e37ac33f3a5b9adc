package di

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-view/internal/config"
)

func validConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{HTTPPort: "8080", GRPCPort: "50051", ShutdownTimeoutSeconds: 10},
		UserAPI: config.UserAPIConfig{BaseURL: "http://localhost:3000", Path: "/api/user"},
		Redis:   config.RedisConfig{Host: "localhost", Port: "6379"},
	}
}

func TestNewContainer(t *testing.T) {
	c, err := NewContainer(validConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000/api/user", c.Source.URL())
	assert.NotNil(t, c.UserUC)
	assert.Nil(t, c.RedisClient)
	assert.NoError(t, c.Close())
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	cfg := validConfig()
	cfg.UserAPI.BaseURL = "not a url"

	c, err := NewContainer(cfg, zaptest.NewLogger(t))
	assert.Nil(t, c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestInitPreviewHost_WithoutRateLimit(t *testing.T) {
	c, err := NewContainer(validConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, c.InitPreviewHost(context.Background()))

	assert.NotNil(t, c.ViewHandler)
	assert.Nil(t, c.RedisClient)
	assert.False(t, c.RateLimiter.Enabled())
}

func TestInitPreviewHost_WithRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := validConfig()
	cfg.Redis = config.RedisConfig{Host: mr.Host(), Port: mr.Port(), PoolSize: 2}
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 5, BurstCapacity: 5}

	c, err := NewContainer(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, c.InitPreviewHost(context.Background()))

	assert.NotNil(t, c.RedisClient)
	assert.True(t, c.RateLimiter.Enabled())
	assert.NoError(t, c.Close())
}

func TestInitPreviewHost_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := validConfig()
	cfg.Redis = config.RedisConfig{Host: mr.Host(), Port: mr.Port()}
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 5, BurstCapacity: 5}
	mr.Close()

	c, err := NewContainer(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	err = c.InitPreviewHost(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize Redis")
}

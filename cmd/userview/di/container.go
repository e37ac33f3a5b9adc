package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"user-view/cmd/userview/infrastructure"
	ginhandler "user-view/internal/adapter/gin/handler"
	"user-view/internal/adapter/ratelimit"
	"user-view/internal/adapter/userapi"
	"user-view/internal/config"
	"user-view/internal/usecase/user"
	redisclient "user-view/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Source      *userapi.Client
	UserUC      *user.Usecase
	RedisClient *redisclient.Client
	RateLimiter *ratelimit.Limiter
	ViewHandler *ginhandler.ViewHandler
}

// NewContainer wires the user source and use case shared by every host.
func NewContainer(cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	source := userapi.NewClient(
		cfg.UserAPI.UserURL(),
		l,
		userapi.WithTimeout(time.Duration(cfg.UserAPI.TimeoutSeconds)*time.Second),
	)

	userUC := user.New(source, l, user.WithStrictSchema(cfg.UserAPI.StrictSchema))

	return &Container{
		Config: cfg,
		Logger: l,
		Source: source,
		UserUC: userUC,
	}, nil
}

// InitPreviewHost wires what only the serve command needs. Redis is dialed
// only when rate limiting is enabled.
func (c *Container) InitPreviewHost(ctx context.Context) error {
	if c.Config.RateLimit.Enabled {
		rdb, err := infrastructure.NewRedisClient(ctx, c.Config, c.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize Redis: %w", err)
		}
		c.RedisClient = rdb

		c.RateLimiter = ratelimit.NewLimiter(
			rdb.Client,
			ratelimit.Config{
				RequestsPerSecond: c.Config.RateLimit.RequestsPerSecond,
				BurstCapacity:     c.Config.RateLimit.BurstCapacity,
				Enabled:           c.Config.RateLimit.Enabled,
			},
			c.Logger,
		)
	}

	c.ViewHandler = ginhandler.NewViewHandler(c.UserUC, c.Logger)
	return nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	return errors.Join(errs...)
}

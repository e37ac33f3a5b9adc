package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-view/internal/adapter/gin/handler"
	"user-view/internal/adapter/gin/middleware"
	"user-view/internal/adapter/ratelimit"
	"user-view/pkg/logger"
)

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	viewHandler *handler.ViewHandler,
	rateLimiter *ratelimit.Limiter,
	serviceName string,
	log *zap.Logger,
) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(logger.RequestIDMiddleware())
	router.Use(middleware.Logger(log))
	router.Use(middleware.RateLimiter(rateLimiter, log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": serviceName,
		})
	})

	v1 := router.Group("/v1")
	{
		user := v1.Group("/user")
		{
			user.GET("", viewHandler.GetUser)
			user.GET("/state", viewHandler.GetState)
			user.GET("/stream", viewHandler.StreamUser)
		}
	}

	router.NoRoute(handler.NotFound)

	return router
}

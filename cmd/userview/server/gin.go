package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	ginhandler "user-view/internal/adapter/gin/handler"
	ginrouter "user-view/internal/adapter/gin/router"
	"user-view/internal/adapter/ratelimit"
)

// SetupGinServer creates the preview HTTP server
func SetupGinServer(
	handler *ginhandler.ViewHandler,
	rateLimiter *ratelimit.Limiter,
	serviceName string,
	ginAddr string,
	l *zap.Logger,
) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	router := ginrouter.SetupRouter(handler, rateLimiter, serviceName, l)

	l.Info("preview HTTP server configured", zap.String("address", ginAddr))

	// No WriteTimeout: /v1/user/stream stays open until the view settles.
	return &http.Server{
		Addr:              ginAddr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

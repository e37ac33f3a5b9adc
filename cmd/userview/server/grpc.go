package server

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	grpcmiddleware "user-view/internal/adapter/grpc/middleware"
	"user-view/internal/adapter/ratelimit"
	"user-view/pkg/logger"
)

// SetupGRPC creates the gRPC server exposing grpc.health.v1.Health.
// Every service starts NOT_SERVING until the listeners are up.
func SetupGRPC(serviceName string, rateLimiter *ratelimit.Limiter, l *zap.Logger) (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
			grpcmiddleware.RateLimit(rateLimiter, l),
		),
	)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	return grpcServer, healthServer
}

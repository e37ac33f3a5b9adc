package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	ginhandler "user-view/internal/adapter/gin/handler"
	"user-view/internal/adapter/ratelimit"
	"user-view/internal/config"
)

// Server struct holds the preview HTTP server and the gRPC health server
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	GRPC   *grpc.Server
	Health *health.Server
	HTTP   *http.Server

	ready    chan struct{}
	grpcAddr net.Addr
	httpAddr net.Addr
}

// New creates a new server instance
func New(cfg *config.Config, l *zap.Logger, viewHandler *ginhandler.ViewHandler, rateLimiter *ratelimit.Limiter) *Server {
	serviceName := cfg.Logger.ServiceName
	grpcServer, healthServer := SetupGRPC(serviceName, rateLimiter, l)

	return &Server{
		Config: cfg,
		Logger: l,
		GRPC:   grpcServer,
		Health: healthServer,
		HTTP:   SetupGinServer(viewHandler, rateLimiter, serviceName, ":"+cfg.App.HTTPPort, l),
		ready:  make(chan struct{}),
	}
}

// Start binds both listeners, marks the service SERVING and serves until
// Shutdown is called or one of the servers fails.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}

	grpcLis, err := lc.Listen(ctx, "tcp", s.grpcAddress())
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC: %w", err)
	}
	httpLis, err := lc.Listen(ctx, "tcp", s.HTTP.Addr)
	if err != nil {
		_ = grpcLis.Close()
		return fmt.Errorf("failed to listen for HTTP: %w", err)
	}
	s.grpcAddr = grpcLis.Addr()
	s.httpAddr = httpLis.Addr()

	s.setServing(healthpb.HealthCheckResponse_SERVING)
	close(s.ready)

	var g errgroup.Group
	g.Go(func() error {
		s.Logger.Info("gRPC health server running", zap.String("address", s.grpcAddr.String()))
		if err := s.GRPC.Serve(grpcLis); err != nil {
			return fmt.Errorf("gRPC server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		s.Logger.Info("preview HTTP server running", zap.String("address", s.httpAddr.String()))
		if err := s.HTTP.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Ready is closed once both listeners are bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// GRPCAddr returns the bound gRPC address. Valid after Ready.
func (s *Server) GRPCAddr() net.Addr {
	return s.grpcAddr
}

// HTTPAddr returns the bound HTTP address. Valid after Ready.
func (s *Server) HTTPAddr() net.Addr {
	return s.httpAddr
}

// Shutdown reports NOT_SERVING, drains HTTP requests within ctx and stops gRPC.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Health.Shutdown()

	var errs []error

	s.Logger.Info("shutting down preview HTTP server...")
	if err := s.HTTP.Shutdown(ctx); err != nil {
		s.Logger.Error("failed to shutdown HTTP server", zap.Error(err))
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}

	s.Logger.Info("shutting down gRPC server...")
	stopped := make(chan struct{})
	go func() {
		s.GRPC.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		s.GRPC.Stop()
		errs = append(errs, fmt.Errorf("gRPC shutdown: %w", ctx.Err()))
	}

	return errors.Join(errs...)
}

func (s *Server) setServing(status healthpb.HealthCheckResponse_ServingStatus) {
	s.Health.SetServingStatus("", status)
	s.Health.SetServingStatus(s.Config.Logger.ServiceName, status)
}

// grpcAddress returns the gRPC server address
func (s *Server) grpcAddress() string {
	return ":" + s.Config.App.GRPCPort
}

package grpc

import (
	"context"
	"fmt"
	"net"

	"github.com/wekeepgrowing/uxpilot-billing/internal/config"
	apperrors "github.com/wekeepgrowing/uxpilot-billing/pkg/errors"
	pkglogger "github.com/wekeepgrowing/uxpilot-billing/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health-checked service name.
const ServiceName = "billing.v1.Billing"

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
}

func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	s := &Server{
		config: cfg,
		logger: logger,
		health: health.NewServer(),
	}

	s.server = grpc.NewServer(
		grpc.ChainUnaryInterceptor(pkglogger.NewGrpcUnaryServerInterceptor(logger), errorUnaryInterceptor),
		grpc.ChainStreamInterceptor(pkglogger.NewGrpcStreamServerInterceptor(logger), errorStreamInterceptor),
	)
	healthpb.RegisterHealthServer(s.server, s.health)
	if !cfg.IsProduction() {
		reflection.Register(s.server)
	}

	return s
}

// errorUnaryInterceptor turns application errors into gRPC status errors
// so clients see the same codes the HTTP API uses.
func errorUnaryInterceptor(ctx context.Context, req interface{}, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	resp, err := handler(ctx, req)
	return resp, apperrors.ToGRPCError(err)
}

func errorStreamInterceptor(srv interface{}, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	return apperrors.ToGRPCError(handler(srv, ss))
}

// Start listens on the configured address. A zero port disables the server.
func (s *Server) Start() error {
	if s.config.Server.GRPC.Port == 0 {
		s.logger.Info("gRPC server disabled")
		return nil
	}

	addr := fmt.Sprintf("%s:%d", s.config.Server.GRPC.Host, s.config.Server.GRPC.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(listener)
}

// Serve runs the server on an existing listener.
func (s *Server) Serve(listener net.Listener) error {
	s.listener = listener
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	s.logger.Info("Starting gRPC server", zap.String("address", listener.Addr().String()))
	return s.server.Serve(listener)
}

// SetServing flips the health status, e.g. when the database goes away.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
		s.server.Stop()
	}
	return nil
}

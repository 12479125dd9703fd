// Package health exposes the standard gRPC health service so supervisors
// can probe the bot process.
package health

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dmitrijs2005/gembot/internal/logging"
)

// ServiceName is reported alongside the overall ("") status.
const ServiceName = "gembot"

type Server struct {
	address string
	logger  logging.Logger
	health  *health.Server
}

func NewServer(address string, l logging.Logger) *Server {
	return &Server{
		address: address,
		logger:  l.With("module", "health_server"),
		health:  health.NewServer(),
	}
}

// SetServing flips the reported status of the bot service.
func (s *Server) SetServing(ok bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve answers health checks on lis until ctx is cancelled, then reports
// NOT_SERVING and stops gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)
	s.SetServing(true)

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping health server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting health server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}

func (s *Server) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	if err != nil {
		s.logger.Warn(ctx, "health rpc failed", "method", info.FullMethod, "error", err)
	} else {
		s.logger.Debug(ctx, "health rpc", "method", info.FullMethod)
	}
	return resp, err
}

package grpcserver

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// AssistantService is the health service name reported for the chat assistant.
const AssistantService = "skylark.Assistant"

// Server serves grpc.health.v1.Health.
type Server struct {
	srv    *grpc.Server
	health *health.Server
	lis    net.Listener
}

// StartGRPC listens on addr and serves health checks. The overall status is
// SERVING; AssistantService is SERVING only when oracleConfigured is true.
func StartGRPC(addr string, oracleConfigured bool, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if addr == "" {
		addr = ":50051"
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv := grpc.NewServer(grpc.UnaryInterceptor(unaryLogger(log)))
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s := &Server{srv: srv, health: hs, lis: lis}
	s.SetAssistantServing(oracleConfigured)
	healthpb.RegisterHealthServer(srv, hs)

	go func() {
		if err := srv.Serve(lis); err != nil && err != grpc.ErrServerStopped {
			log.Error("grpc serve failed", zap.Error(err))
		}
	}()
	log.Info("grpc health server listening", zap.String("addr", lis.Addr().String()))
	return s, nil
}

// Addr is the bound listen address.
func (s *Server) Addr() string { return s.lis.Addr().String() }

// SetAssistantServing updates the assistant's reported status.
func (s *Server) SetAssistantServing(ok bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(AssistantService, st)
}

// Shutdown marks every service NOT_SERVING and stops gracefully, forcing a
// stop if ctx ends first.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.Shutdown()
	done := make(chan struct{})
	go func() { s.srv.GracefulStop(); close(done) }()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.srv.Stop()
		return ctx.Err()
	}
}

func unaryLogger(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug("grpc request", zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()), zap.Duration("latency", time.Since(start)))
		return resp, err
	}
}

package grpcserver

import (
	"context"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

func startTestServer(t *testing.T, configured bool) (*Server, healthpb.HealthClient) {
	t.Helper()
	s, err := StartGRPC("127.0.0.1:0", configured, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	conn, err := grpc.NewClient(s.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return s, healthpb.NewHealthClient(conn)
}

func check(t *testing.T, c healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := c.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		t.Fatalf("check %q: %v", service, err)
	}
	return resp.GetStatus()
}

func TestHealth_OracleConfigured(t *testing.T) {
	_, c := startTestServer(t, true)
	if got := check(t, c, ""); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("overall = %s", got)
	}
	if got := check(t, c, AssistantService); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("assistant = %s", got)
	}
}

func TestHealth_OracleMissing(t *testing.T) {
	s, c := startTestServer(t, false)
	if got := check(t, c, ""); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("overall = %s", got)
	}
	if got := check(t, c, AssistantService); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("assistant = %s", got)
	}
	s.SetAssistantServing(true)
	if got := check(t, c, AssistantService); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("assistant after update = %s", got)
	}
}

func TestHealth_UnknownService(t *testing.T) {
	_, c := startTestServer(t, true)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := c.Check(ctx, &healthpb.HealthCheckRequest{Service: "nope"})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

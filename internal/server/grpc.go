package server

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Service name reported by the health server alongside the overall status.
const HealthService = "wildsync.Intake"

// NewGRPCServer registers the health and reflection services.
func NewGRPCServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(HealthService, healthpb.HealthCheckResponse_SERVING)
	// Reflection for grpcurl
	reflection.Register(srv)
	return srv, hs
}

// WatchHealth pings db every interval and mirrors the result into hs until ctx is done.
func WatchHealth(ctx context.Context, hs *health.Server, db Pinger, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := healthpb.HealthCheckResponse_SERVING
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-ticker.C:
		}
		next := healthpb.HealthCheckResponse_SERVING
		if err := db.HealthCheck(ctx, 2*time.Second); err != nil {
			next = healthpb.HealthCheckResponse_NOT_SERVING
		}
		if next != last {
			logger.Warn("health.status.changed", zap.String("status", next.String()))
			last = next
		}
		hs.SetServingStatus("", next)
		hs.SetServingStatus(HealthService, next)
	}
}

package fspqd

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// healthServer implements grpc_health_v1.HealthServer. Both Check and
// Watch always report SERVING: this process has no notion of a degraded
// queue (spec.md §6). An invariant-violation panic in a handler is
// recovered by the server's interceptor chain and reported to that one
// caller as INTERNAL; it does not change the health status.
//
// Watch deviates from grpc_health_v1's usual "push on status change"
// semantics and instead pushes one SERVING message per second (spec.md
// §6), mirroring the teacher's HealthMonitor check-loop shape
// (internal/coordinator/health_monitor.go) repurposed as a ticker-driven
// stream instead of a periodic prober.
type healthServer struct {
	grpc_health_v1.UnimplementedHealthServer
	logger *zap.Logger
}

func newHealthServer(logger *zap.Logger) *healthServer {
	return &healthServer{logger: logger}
}

func (h *healthServer) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_SERVING}, nil
}

func (h *healthServer) Watch(req *grpc_health_v1.HealthCheckRequest, stream grpc_health_v1.Health_WatchServer) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	resp := &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_SERVING}
	if err := stream.Send(resp); err != nil {
		return err
	}
	for {
		select {
		case <-stream.Context().Done():
			return stream.Context().Err()
		case <-ticker.C:
			if err := stream.Send(resp); err != nil {
				h.logger.Warn("health watch send failed", zap.Error(err))
				return err
			}
		}
	}
}

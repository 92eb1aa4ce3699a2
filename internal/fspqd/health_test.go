package fspqd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/health/grpc_health_v1"
)

type fakeWatchStream struct {
	grpc_health_v1.Health_WatchServer
	ctx  context.Context
	sent chan *grpc_health_v1.HealthCheckResponse
}

func (f *fakeWatchStream) Context() context.Context { return f.ctx }

func (f *fakeWatchStream) Send(resp *grpc_health_v1.HealthCheckResponse) error {
	f.sent <- resp
	return nil
}

func TestHealthCheckReturnsServing(t *testing.T) {
	h := newHealthServer(zap.NewNop())
	resp, err := h.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	require.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)
}

func TestHealthWatchSendsOneServingPerSecond(t *testing.T) {
	h := newHealthServer(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := &fakeWatchStream{ctx: ctx, sent: make(chan *grpc_health_v1.HealthCheckResponse, 4)}
	done := make(chan error, 1)
	go func() { done <- h.Watch(&grpc_health_v1.HealthCheckRequest{}, stream) }()

	first := <-stream.sent
	require.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, first.Status)

	select {
	case <-stream.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a second SERVING tick within 2s")
	}

	cancel()
	require.Error(t, <-done)
}

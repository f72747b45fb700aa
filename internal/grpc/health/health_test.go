package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/health/grpc_health_v1"

	"phonetracer/pkg/logger"
)

type flakyPinger struct {
	down atomic.Bool
}

func (p *flakyPinger) Ping(context.Context) error {
	if p.down.Load() {
		return errors.New("unreachable")
	}
	return nil
}

func statusOf(t *testing.T, c *Checker, service string) grpc_health_v1.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := c.Server().Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.Status
}

func TestChecker_Refresh(t *testing.T) {
	store := &flakyPinger{}
	c := NewChecker(map[string]Pinger{"reports": store, "cache": nil}, time.Minute, logger.NewNop())
	ctx := context.Background()

	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, statusOf(t, c, ""))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, statusOf(t, c, ServiceName))

	store.down.Store(true)
	c.Refresh(ctx)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, statusOf(t, c, ""))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, statusOf(t, c, ServiceName))

	store.down.Store(false)
	c.Refresh(ctx)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, statusOf(t, c, ""))
}

func TestChecker_RunStopsOnCancel(t *testing.T) {
	store := &flakyPinger{}
	store.down.Store(true)
	c := NewChecker(map[string]Pinger{"reports": store}, 10*time.Millisecond, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return statusOf(t, c, "") == grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

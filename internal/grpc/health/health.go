// Package health exposes the standard grpc.health.v1 service, driven by
// periodic dependency pings.
package health

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"phonetracer/pkg/logger"
)

// ServiceName is the health-check name of the phone tracer service
const ServiceName = "phonetracer.v1.PhoneTracer"

const defaultInterval = 10 * time.Second

// Pinger is a dependency whose reachability gates serving status
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker keeps the health server's status in sync with its dependencies
type Checker struct {
	server   *health.Server
	deps     map[string]Pinger
	interval time.Duration
	logger   *logger.Logger
}

// NewChecker creates a checker over named dependencies
func NewChecker(deps map[string]Pinger, interval time.Duration, log *logger.Logger) *Checker {
	if interval <= 0 {
		interval = defaultInterval
	}
	c := &Checker{
		server:   health.NewServer(),
		deps:     deps,
		interval: interval,
		logger:   log.WithComponent("grpc-health"),
	}
	c.setStatus(grpc_health_v1.HealthCheckResponse_SERVING)
	return c
}

// Register registers the health service with a gRPC server
func (c *Checker) Register(grpcServer *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(grpcServer, c.server)
}

// Server returns the underlying health server
func (c *Checker) Server() *health.Server {
	return c.server
}

// Run refreshes the status every interval until ctx is done, then marks
// the service as not serving.
func (c *Checker) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			c.server.Shutdown()
			return
		case <-ticker.C:
			c.Refresh(ctx)
		}
	}
}

// Refresh pings every dependency once and updates the serving status
func (c *Checker) Refresh(ctx context.Context) {
	healthy := true
	for name, dep := range c.deps {
		if dep == nil {
			continue
		}
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := dep.Ping(pingCtx)
		cancel()
		if err != nil {
			healthy = false
			c.logger.Warn().Err(err).Str("dependency", name).Msg("health check failed")
		}
	}

	if healthy {
		c.setStatus(grpc_health_v1.HealthCheckResponse_SERVING)
	} else {
		c.setStatus(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	}
}

func (c *Checker) setStatus(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	c.server.SetServingStatus("", status)
	c.server.SetServingStatus(ServiceName, status)
}

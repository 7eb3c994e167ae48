package healthcheck

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"checkcheck-api/pkg/logger"
)

// ServiceName is the health-checked service name besides the empty overall name
const ServiceName = "checkcheck.v1.CheckCheckService"

const defaultCheckInterval = 10 * time.Second

// Dependency is a backing store whose reachability decides the serving status
type Dependency struct {
	Name string
	Ping func(ctx context.Context) error
}

// Checker keeps the gRPC health status in sync with the dependencies
type Checker struct {
	server   *health.Server
	deps     []Dependency
	interval time.Duration
	logger   *logger.Logger
}

// NewChecker creates a checker. Nil Ping funcs are skipped.
func NewChecker(deps []Dependency, log *logger.Logger) *Checker {
	c := &Checker{
		server:   health.NewServer(),
		interval: defaultCheckInterval,
		logger:   log.WithComponent("grpc-health"),
	}
	for _, d := range deps {
		if d.Ping != nil {
			c.deps = append(c.deps, d)
		}
	}
	c.setStatus(grpc_health_v1.HealthCheckResponse_SERVING)
	return c
}

// Register registers the health service on grpcServer
func (c *Checker) Register(grpcServer *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(grpcServer, c.server)
}

// Server exposes the underlying health server
func (c *Checker) Server() *health.Server {
	return c.server
}

// Run re-checks the dependencies until ctx is done, then marks the service
// as not serving
func (c *Checker) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		c.CheckOnce(ctx)
		select {
		case <-ctx.Done():
			c.server.Shutdown()
			return
		case <-ticker.C:
		}
	}
}

// CheckOnce pings every dependency and updates the status
func (c *Checker) CheckOnce(ctx context.Context) {
	status := grpc_health_v1.HealthCheckResponse_SERVING
	for _, d := range c.deps {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := d.Ping(pingCtx)
		cancel()
		if err != nil {
			c.logger.Warn().Err(err).Str("dependency", d.Name).Msg("dependency unhealthy")
			status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		}
	}
	c.setStatus(status)
}

func (c *Checker) setStatus(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	c.server.SetServingStatus("", status)
	c.server.SetServingStatus(ServiceName, status)
}

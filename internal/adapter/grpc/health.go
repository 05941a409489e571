package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name reported to grpc.health.v1 clients alongside the
// overall ("") status.
const ServiceName = "users-api"

// Pinger reports whether the user store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthReporter keeps the gRPC health status in line with database reachability
type HealthReporter struct {
	server   *health.Server
	db       Pinger
	interval time.Duration
	log      *zap.Logger
}

// NewHealthReporter creates a reporter that starts in NOT_SERVING until the
// first successful probe.
func NewHealthReporter(db Pinger, interval time.Duration, log *zap.Logger) *HealthReporter {
	srv := health.NewServer()
	srv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	srv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &HealthReporter{
		server:   srv,
		db:       db,
		interval: interval,
		log:      log,
	}
}

// Server returns the grpc.health.v1 implementation to register on a gRPC server
func (h *HealthReporter) Server() *health.Server {
	return h.server
}

// Probe pings the database once and updates the serving status
func (h *HealthReporter) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if err := h.db.Ping(ctx); err != nil {
		h.log.Warn("database health probe failed", zap.Error(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
	return status
}

// Run probes on every interval until ctx is done, then marks the service as
// shutting down so clients stop routing to it.
func (h *HealthReporter) Run(ctx context.Context) error {
	h.Probe(ctx)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return nil
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}

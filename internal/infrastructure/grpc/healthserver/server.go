package healthserver

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// SchedulerService is the health service name that tracks the refresh loop.
const SchedulerService = "marketdata.Scheduler"

// Health reports the worker's status over grpc.health.v1. Both the overall
// status ("") and SchedulerService start as NOT_SERVING.
type Health struct {
	hs *health.Server
}

func New() *Health {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(SchedulerService, healthpb.HealthCheckResponse_NOT_SERVING)
	return &Health{hs: hs}
}

func (h *Health) Register(gs *grpc.Server) { healthpb.RegisterHealthServer(gs, h.hs) }

func (h *Health) SetServing() {
	h.hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.hs.SetServingStatus(SchedulerService, healthpb.HealthCheckResponse_SERVING)
}

func (h *Health) SetNotServing() {
	h.hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	h.hs.SetServingStatus(SchedulerService, healthpb.HealthCheckResponse_NOT_SERVING)
}

// Shutdown flips every service to NOT_SERVING and ignores later updates.
func (h *Health) Shutdown() { h.hs.Shutdown() }

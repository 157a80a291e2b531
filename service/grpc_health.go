package service

import (
	"sync"

	"stickyproxy/domain"
	"stickyproxy/helpers"

	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServiceName is the gRPC health service reporting whether the proxy can accept new sessions.
const HealthServiceName = "stickyproxy"

// GRPCHealthReporter is an interfaces.NodeStateObserver that keeps a grpc health.Server in line with node liveness:
// SERVING while at least one node is Up, NOT_SERVING otherwise. Both HealthServiceName and the overall ("") service
// are updated.
type GRPCHealthReporter struct {
	server *health.Server

	mu   sync.Mutex
	live map[string]struct{}
}

// NewGRPCHealthReporter creates the reporter and marks the proxy NOT_SERVING until a node comes up.
// Panics on nil server.
func NewGRPCHealthReporter(server *health.Server) *GRPCHealthReporter {
	r := &GRPCHealthReporter{
		server: helpers.NilPanic(server, "service.grpc_health.go: health server is required"),
		live:   make(map[string]struct{}),
	}
	r.publish()
	return r
}

func (r *GRPCHealthReporter) NodeStateChanged(node domain.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if node.State == domain.NodeUp {
		r.live[node.Host] = struct{}{}
	} else {
		delete(r.live, node.Host)
	}
	r.publish()
}

func (r *GRPCHealthReporter) publish() {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if len(r.live) > 0 {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	r.server.SetServingStatus("", status)
	r.server.SetServingStatus(HealthServiceName, status)
}

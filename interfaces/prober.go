package interfaces

import (
	"context"

	"stickyproxy/domain"
)

// Prober performs one liveness check against a backend node.
//
// Implemented by adapters.HTTPProber. Called from service.healthMonitor for every node on every probe round.
//
//go:generate moq -stub -out mock/prober.go -pkg mock . Prober
type Prober interface {
	// Probe issues a minimal request to the node.
	// Parameters: ctx - carries the per-probe timeout and is cancelled by HealthMonitor.Stop; node - target (Hostname, Port).
	// Returns: nil when any response was received, whatever its status; error on transport failure, timeout or cancellation.
	Probe(ctx context.Context, node domain.Node) error
}

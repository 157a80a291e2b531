package interfaces

import (
	"time"

	"stickyproxy/domain"
)

// NodeMonitor is the read side of the health monitor used by request handling and the admin surface.
// All methods read in-memory state only and never block on I/O.
//
// Implemented by service.healthMonitor. Called from service.Router (PickLiveNode) and handlers.AdminServer (Nodes,
// LiveCount).
//
//go:generate moq -stub -out mock/node_monitor.go -pkg mock . NodeMonitor
type NodeMonitor interface {
	// PickLiveNode returns a node chosen uniformly at random among nodes currently Up.
	// Returns: (node, nil); (domain.Node{}, error matching service.IsNoNodeAvailable) when no node is Up.
	PickLiveNode() (domain.Node, error)

	// Nodes returns a snapshot of every configured node with its current state, in configuration order.
	Nodes() []domain.Node

	// LiveCount returns the number of nodes currently Up.
	LiveCount() int
}

// HealthMonitor is a NodeMonitor that owns the probing lifecycle.
//
// Implemented by service.healthMonitor. Started and stopped from cmd/main.
type HealthMonitor interface {
	NodeMonitor

	// Start records nodes, every one Down, and probes them right away and then every interval; a probe exceeding
	// timeout marks its node Down. May be called once.
	Start(nodes []domain.Node, interval, timeout time.Duration) error

	// Stop cancels probing and returns once no probe is in flight.
	Stop()
}

// NodeStateObserver is notified after a node changes state. Calls are made from probe goroutines, possibly
// concurrently for different nodes; implementations must be safe for concurrent use and must not block.
// Calls for one node are serialized and arrive in transition order.
//
// Implemented by service.Metrics and service.GRPCHealthReporter. Called from service.healthMonitor.
//
//go:generate moq -stub -out mock/node_state_observer.go -pkg mock . NodeStateObserver
type NodeStateObserver interface {
	// NodeStateChanged receives the node with its new State.
	NodeStateChanged(node domain.Node)
}

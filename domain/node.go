package domain

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// NodeState is the liveness of a backend node as last observed by a health probe.
// The zero value is NodeDown so that a freshly configured node is never picked before its first probe completes.
type NodeState int32

const (
	NodeDown NodeState = iota
	NodeUp
)

// String returns "up" or "down"; any other value (never produced by the monitor) renders as "unknown".
func (s NodeState) String() string {
	switch s {
	case NodeUp:
		return "up"
	case NodeDown:
		return "down"
	default:
		return "unknown"
	}
}

// Node is one backend target. Host is the canonical "hostname:port" used as the binding value and as the
// forwarding target; Hostname and Port are its parsed parts used by the prober.
type Node struct {
	Host     string
	Hostname string
	Port     int
	State    NodeState
}

// ParseNode builds a Down node from a "hostname:port" address taken from configuration.
//
// Parameter addr - address from the nodes list; surrounding spaces are trimmed. IPv6 literals must be bracketed.
//
// Returns: (Node, nil) with Host in canonical form; (Node{}, error) when the address has no port, an empty hostname or
// a port outside 1-65535.
//
// Called from cmd.LoadConfig for every configured node.
func ParseNode(addr string) (Node, error) {
	hostname, portStr, err := net.SplitHostPort(strings.TrimSpace(addr))
	if err != nil {
		return Node{}, fmt.Errorf("invalid node address %q: %w", addr, err)
	}
	if hostname == "" {
		return Node{}, fmt.Errorf("invalid node address %q: hostname is empty", addr)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return Node{}, fmt.Errorf("invalid node address %q: port must be 1-65535", addr)
	}
	return Node{
		Host:     net.JoinHostPort(hostname, portStr),
		Hostname: hostname,
		Port:     port,
		State:    NodeDown,
	}, nil
}

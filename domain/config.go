package domain

import (
	"strconv"
	"strings"
	"time"
)

// Defaults applied by cmd.LoadConfig when the YAML file omits a field.
const (
	DefaultPath          = "/socket.io/"
	DefaultCheckInterval = 2 * time.Second
	DefaultCheckTimeout  = time.Second
	DefaultKeyPrefix     = "socket.io#"
	DefaultKeyExpiry     = 60 * time.Second
	DefaultStoreTimeout  = time.Second
)

// ProxyConfig is the routing configuration consumed by the core: the static node list, the routing path prefix,
// health-check cadence, and the binding key namespace and TTL.
type ProxyConfig struct {
	Nodes         []Node
	Path          string
	CheckInterval time.Duration
	CheckTimeout  time.Duration
	KeyPrefix     string
	KeyExpiry     time.Duration
	StoreTimeout  time.Duration
}

// ValidateProxyConfig checks a fully defaulted ProxyConfig: at least one node, no duplicate hosts, a path starting
// with "/", positive interval/timeout/store timeout, a non-empty key prefix and a key expiry of at least one whole
// second (Redis EX granularity).
//
// Parameter cfg - config built by cmd.LoadConfig after defaults are applied.
//
// Returns: nil when valid; *ConfigError naming the offending field otherwise (first error found).
//
// Called from cmd.LoadConfig.
func ValidateProxyConfig(cfg ProxyConfig) error {
	if len(cfg.Nodes) == 0 {
		return &ConfigError{Field: "nodes", Reason: "at least one node is required"}
	}
	seen := make(map[string]struct{}, len(cfg.Nodes))
	for i, n := range cfg.Nodes {
		if n.Host == "" {
			return &ConfigError{Field: "nodes[" + strconv.Itoa(i) + "]", Reason: "host must be non-empty"}
		}
		if _, dup := seen[n.Host]; dup {
			return &ConfigError{Field: "nodes[" + strconv.Itoa(i) + "]", Reason: "duplicate node " + n.Host}
		}
		seen[n.Host] = struct{}{}
	}
	if !strings.HasPrefix(cfg.Path, "/") {
		return &ConfigError{Field: "path", Reason: "must start with /"}
	}
	if cfg.CheckInterval <= 0 {
		return &ConfigError{Field: "check_interval_ms", Reason: "must be positive"}
	}
	if cfg.CheckTimeout <= 0 {
		return &ConfigError{Field: "check_timeout_ms", Reason: "must be positive"}
	}
	if cfg.KeyPrefix == "" {
		return &ConfigError{Field: "key_prefix", Reason: "must be non-empty"}
	}
	if cfg.KeyExpiry < time.Second {
		return &ConfigError{Field: "key_expiry_s", Reason: "must be at least 1"}
	}
	if cfg.StoreTimeout <= 0 {
		return &ConfigError{Field: "store_timeout_ms", Reason: "must be positive"}
	}
	return nil
}

// ConfigError is returned by ValidateProxyConfig. Field is the YAML field name (with index for nodes).
type ConfigError struct {
	Field  string
	Reason string
}

// Error returns "config <field>: <reason>".
func (e *ConfigError) Error() string {
	return "config " + e.Field + ": " + e.Reason
}

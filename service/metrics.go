package service

import (
	"stickyproxy/domain"
	"stickyproxy/helpers"

	"github.com/prometheus/client_golang/prometheus"
)

// Request path labels of stickyproxy_requests_total and stickyproxy_forward_errors_total.
const (
	PathFirstContact = "first_contact"
	PathBound        = "bound"
	PathRejected     = "rejected"
)

// OutcomeForwarded is the outcome label of a request handed to the forwarder; rejected requests use their error code.
const OutcomeForwarded = "forwarded"

// Binding operation labels of stickyproxy_bindings_total.
const (
	BindingCreate = "create"
	BindingDelete = "delete"
)

// Metrics holds the proxy's Prometheus collectors. It is also an interfaces.NodeStateObserver and keeps
// stickyproxy_node_up in sync with the health monitor.
type Metrics struct {
	requests      *prometheus.CounterVec
	nodeUp        *prometheus.GaugeVec
	bindings      *prometheus.CounterVec
	forwardErrors *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg. Every configured node starts at 0 (down).
// Panics on nil registerer or on duplicate registration.
//
// Called from cmd/main with a dedicated prometheus.Registry that is also served on the telemetry path.
func NewMetrics(reg prometheus.Registerer, nodes []domain.Node) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stickyproxy_requests_total",
			Help: "Requests received on the routing path, by routing path and outcome (forwarded or error code).",
		}, []string{"path", "outcome"}),
		nodeUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stickyproxy_node_up",
			Help: "Backend node liveness as seen by the health monitor (1=up, 0=down).",
		}, []string{"node"}),
		bindings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stickyproxy_bindings_total",
			Help: "Session binding writes acknowledged by the binding store, by operation.",
		}, []string{"op"}),
		forwardErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stickyproxy_forward_errors_total",
			Help: "Requests the forwarder failed to relay, by routing path.",
		}, []string{"path"}),
	}
	helpers.NilPanic(reg, "service.metrics.go: registerer is required").MustRegister(m.requests, m.nodeUp, m.bindings, m.forwardErrors)
	for _, n := range nodes {
		m.nodeUp.WithLabelValues(n.Host).Set(0)
	}
	return m
}

// NodeStateChanged implements interfaces.NodeStateObserver.
func (m *Metrics) NodeStateChanged(node domain.Node) {
	v := 0.0
	if node.State == domain.NodeUp {
		v = 1
	}
	m.nodeUp.WithLabelValues(node.Host).Set(v)
}

func (m *Metrics) ObserveRequest(path, outcome string) {
	m.requests.WithLabelValues(path, outcome).Inc()
}

// ObserveBinding counts one acknowledged binding write. Passed to the binding store as its write hook.
func (m *Metrics) ObserveBinding(op string) {
	m.bindings.WithLabelValues(op).Inc()
}

func (m *Metrics) ObserveForwardError(path string) {
	m.forwardErrors.WithLabelValues(path).Inc()
}

// requestPath returns the routing path label of a routed request.
func requestPath(rc domain.RequestContext) string {
	if rc.HasSession {
		return PathBound
	}
	return PathFirstContact
}

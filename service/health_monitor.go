package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"stickyproxy/domain"
	"stickyproxy/helpers"
	"stickyproxy/interfaces"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// ErrMonitorStarted is returned by Start when the monitor has already been started once.
var ErrMonitorStarted = errors.New("health monitor already started")

// trackedNode is a configured node plus its live state. node is immutable after Start; state holds a domain.NodeState.
// transition is held across a state change and the observer calls it triggers.
type trackedNode struct {
	node       domain.Node
	state      atomic.Int32
	transition sync.Mutex
}

func (n *trackedNode) snapshot() domain.Node {
	s := n.node
	s.State = domain.NodeState(n.state.Load())
	return s
}

// healthMonitor implements interfaces.NodeMonitor. A single loop goroutine fires a probe round immediately and
// then on every tick; each probe in a round runs in its own goroutine so that a slow node never delays the others.
// Rounds are not synchronized: when probes for one node overlap, the one completing last decides its state.
// Observers see the transitions of a node in the order they were applied, so the last notification always matches
// the state held by the monitor.
type healthMonitor struct {
	prober    interfaces.Prober
	observers []interfaces.NodeStateObserver
	logger    log.Logger
	intn      func(n int) int

	nodes atomic.Pointer[[]*trackedNode]

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewHealthMonitor creates a stopped health monitor. Panics on nil prober, logger or observer.
//
// Parameters: prober - liveness check (adapters.HTTPProber in production); logger - transitions are logged at info
// and warn level; observers - notified on every state transition (metrics, gRPC health).
//
// Returns: interfaces.HealthMonitor; call Start to begin probing.
//
// Called from cmd/main.
func NewHealthMonitor(prober interfaces.Prober, logger log.Logger, observers ...interfaces.NodeStateObserver) interfaces.HealthMonitor {
	return newHealthMonitor(prober, logger, observers...)
}

func newHealthMonitor(prober interfaces.Prober, logger log.Logger, observers ...interfaces.NodeStateObserver) *healthMonitor {
	for _, o := range observers {
		helpers.NilPanic(o, "service.health_monitor.go: observer is required")
	}
	m := &healthMonitor{
		prober:    helpers.NilPanic(prober, "service.health_monitor.go: prober is required"),
		observers: observers,
		logger:    log.With(helpers.NilPanic(logger, "service.health_monitor.go: logger is required"), "component", "health_monitor"),
		intn:      rand.IntN,
	}
	empty := []*trackedNode{}
	m.nodes.Store(&empty)
	return m
}

// Start records the node set, every node Down, and starts probing: one round right away, then one every interval.
//
// Parameters: nodes - configured nodes, at least one; interval - delay between rounds; timeout - bound of a single
// probe, exceeding it marks the node Down.
//
// Returns: nil; ErrMonitorStarted when called a second time (even after Stop); bad_parameter error on invalid input.
func (m *healthMonitor) Start(nodes []domain.Node, interval, timeout time.Duration) error {
	if len(nodes) == 0 {
		return NewBadParameterError("at least one node is required", nil)
	}
	if interval <= 0 || timeout <= 0 {
		return NewBadParameterError("check interval and timeout must be positive", nil)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return ErrMonitorStarted
	}
	m.started = true

	tracked := make([]*trackedNode, len(nodes))
	for i, n := range nodes {
		tracked[i] = &trackedNode{node: n}
		tracked[i].node.State = domain.NodeDown
	}
	m.nodes.Store(&tracked)

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.wg.Add(1)
	go m.probeLoop(ctx, tracked, interval, timeout)

	level.Info(m.logger).Log("msg", "health monitor started", "nodes", len(nodes), "interval", interval, "timeout", timeout)
	return nil
}

// Stop cancels probing and waits for the loop and every in-flight probe to return. Results of cancelled probes are
// discarded. Safe to call more than once and before Start.
func (m *healthMonitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	m.wg.Wait()
}

func (m *healthMonitor) probeLoop(ctx context.Context, nodes []*trackedNode, interval, timeout time.Duration) {
	defer m.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.probeRound(ctx, nodes, timeout)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probeRound(ctx, nodes, timeout)
		}
	}
}

func (m *healthMonitor) probeRound(ctx context.Context, nodes []*trackedNode, timeout time.Duration) {
	for _, n := range nodes {
		m.wg.Add(1)
		go m.probe(ctx, n, timeout)
	}
}

func (m *healthMonitor) probe(ctx context.Context, n *trackedNode, timeout time.Duration) {
	defer m.wg.Done()

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	err := m.prober.Probe(probeCtx, n.node)

	n.transition.Lock()
	defer n.transition.Unlock()
	if ctx.Err() != nil {
		return
	}
	next := domain.NodeUp
	if err != nil {
		next = domain.NodeDown
	}
	if prev := domain.NodeState(n.state.Swap(int32(next))); prev == next {
		return
	}

	if next == domain.NodeUp {
		level.Info(m.logger).Log("msg", "node is now UP", "node", n.node.Host)
	} else {
		level.Warn(m.logger).Log("msg", "node is now DOWN", "node", n.node.Host, "err", err)
	}
	changed := n.node
	changed.State = next
	for _, o := range m.observers {
		o.NodeStateChanged(changed)
	}
}

// PickLiveNode returns a node picked uniformly at random among the nodes currently Up, or a no_node_available
// error. It only reads in-memory state.
func (m *healthMonitor) PickLiveNode() (domain.Node, error) {
	tracked := *m.nodes.Load()
	live := make([]domain.Node, 0, len(tracked))
	for _, n := range tracked {
		if s := n.snapshot(); s.State == domain.NodeUp {
			live = append(live, s)
		}
	}
	if len(live) == 0 {
		return domain.Node{}, NewNoNodeAvailableError()
	}
	return live[m.intn(len(live))], nil
}

// Nodes returns every configured node with its current state, in configuration order.
func (m *healthMonitor) Nodes() []domain.Node {
	tracked := *m.nodes.Load()
	out := make([]domain.Node, len(tracked))
	for i, n := range tracked {
		out[i] = n.snapshot()
	}
	return out
}

func (m *healthMonitor) LiveCount() int {
	count := 0
	for _, n := range *m.nodes.Load() {
		if domain.NodeState(n.state.Load()) == domain.NodeUp {
			count++
		}
	}
	return count
}

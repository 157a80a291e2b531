package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"stickyproxy/domain"
	"stickyproxy/interfaces"
	"stickyproxy/interfaces/mock"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testInterval = 10 * time.Millisecond
	testTimeout  = 20 * time.Millisecond
	waitFor      = 2 * time.Second
	tick         = 5 * time.Millisecond
)

var (
	nodeA = domain.Node{Host: "a:3001", Hostname: "a", Port: 3001}
	nodeB = domain.Node{Host: "b:3002", Hostname: "b", Port: 3002}
)

// gatedObserver holds back its first notification until release is closed, then forwards every call to next.
type gatedObserver struct {
	next    interfaces.NodeStateObserver
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedObserver(next interfaces.NodeStateObserver) *gatedObserver {
	return &gatedObserver{next: next, entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedObserver) NodeStateChanged(node domain.Node) {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	g.next.NodeStateChanged(node)
}

// healthTable is a prober whose answer per host can be flipped while the monitor runs.
type healthTable struct {
	mu   sync.Mutex
	down map[string]bool
	hang map[string]bool
}

func newHealthTable() *healthTable {
	return &healthTable{down: map[string]bool{}, hang: map[string]bool{}}
}

func (h *healthTable) set(host string, up bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.down[host] = !up
}

func (h *healthTable) setHang(host string, hang bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hang[host] = hang
}

func (h *healthTable) prober() *mock.ProberMock {
	return &mock.ProberMock{
		ProbeFunc: func(ctx context.Context, node domain.Node) error {
			h.mu.Lock()
			down, hang := h.down[node.Host], h.hang[node.Host]
			h.mu.Unlock()
			if hang {
				<-ctx.Done()
				return ctx.Err()
			}
			if down {
				return errors.New("connection refused")
			}
			return nil
		},
	}
}

func stateOf(m interfaces.NodeMonitor, host string) domain.NodeState {
	for _, n := range m.Nodes() {
		if n.Host == host {
			return n.State
		}
	}
	return domain.NodeState(-1)
}

func startMonitor(t *testing.T, h *healthTable, observers ...*mock.NodeStateObserverMock) *healthMonitor {
	t.Helper()
	obs := make([]interfaces.NodeStateObserver, 0, len(observers))
	for _, o := range observers {
		obs = append(obs, o)
	}
	m := newHealthMonitor(h.prober(), log.NewNopLogger(), obs...)
	require.NoError(t, m.Start([]domain.Node{nodeA, nodeB}, testInterval, testTimeout))
	t.Cleanup(m.Stop)
	return m
}

func TestNewHealthMonitor_Panics(t *testing.T) {
	t.Run("prober_nil", func(t *testing.T) {
		assert.PanicsWithValue(t, "service.health_monitor.go: prober is required", func() {
			NewHealthMonitor(nil, log.NewNopLogger())
		})
	})
	t.Run("logger_nil", func(t *testing.T) {
		assert.PanicsWithValue(t, "service.health_monitor.go: logger is required", func() {
			NewHealthMonitor(&mock.ProberMock{}, nil)
		})
	})
	t.Run("observer_nil", func(t *testing.T) {
		var o *mock.NodeStateObserverMock
		assert.PanicsWithValue(t, "service.health_monitor.go: observer is required", func() {
			NewHealthMonitor(&mock.ProberMock{}, log.NewNopLogger(), o)
		})
	})
}

func TestHealthMonitor_Start_InvalidArguments(t *testing.T) {
	m := NewHealthMonitor(&mock.ProberMock{}, log.NewNopLogger())

	err := m.Start(nil, testInterval, testTimeout)
	assert.True(t, IsBadParameter(err))
	err = m.Start([]domain.Node{nodeA}, 0, testTimeout)
	assert.True(t, IsBadParameter(err))
	err = m.Start([]domain.Node{nodeA}, testInterval, -time.Second)
	assert.True(t, IsBadParameter(err))

	assert.Empty(t, m.Nodes())
}

func TestHealthMonitor_StartTwice(t *testing.T) {
	h := newHealthTable()
	m := startMonitor(t, h)

	err := m.Start([]domain.Node{nodeA}, testInterval, testTimeout)
	assert.ErrorIs(t, err, ErrMonitorStarted)

	m.Stop()
	err = m.Start([]domain.Node{nodeA}, testInterval, testTimeout)
	assert.ErrorIs(t, err, ErrMonitorStarted)
}

func TestHealthMonitor_NodesStartDown(t *testing.T) {
	h := newHealthTable()
	h.setHang(nodeA.Host, true)
	h.setHang(nodeB.Host, true)
	m := NewHealthMonitor(h.prober(), log.NewNopLogger())
	require.NoError(t, m.Start([]domain.Node{nodeA, nodeB}, time.Hour, time.Hour))
	defer m.Stop()

	nodes := m.Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, nodeA.Host, nodes[0].Host)
	assert.Equal(t, nodeB.Host, nodes[1].Host)
	for _, n := range nodes {
		assert.Equal(t, domain.NodeDown, n.State)
	}
	assert.Equal(t, 0, m.LiveCount())

	_, err := m.PickLiveNode()
	assert.True(t, IsNoNodeAvailable(err))
}

func TestHealthMonitor_SuccessfulProbeMarksUp(t *testing.T) {
	m := startMonitor(t, newHealthTable())

	require.Eventually(t, func() bool { return m.LiveCount() == 2 }, waitFor, tick)
	assert.Equal(t, domain.NodeUp, stateOf(m, nodeA.Host))
	assert.Equal(t, domain.NodeUp, stateOf(m, nodeB.Host))
}

func TestHealthMonitor_FailedProbeMarksDown(t *testing.T) {
	h := newHealthTable()
	m := startMonitor(t, h)
	require.Eventually(t, func() bool { return m.LiveCount() == 2 }, waitFor, tick)

	h.set(nodeA.Host, false)
	require.Eventually(t, func() bool { return stateOf(m, nodeA.Host) == domain.NodeDown }, waitFor, tick)

	h.set(nodeA.Host, true)
	require.Eventually(t, func() bool { return stateOf(m, nodeA.Host) == domain.NodeUp }, waitFor, tick)
}

func TestHealthMonitor_TimedOutProbeMarksDown(t *testing.T) {
	h := newHealthTable()
	m := startMonitor(t, h)
	require.Eventually(t, func() bool { return m.LiveCount() == 2 }, waitFor, tick)

	h.setHang(nodeB.Host, true)
	require.Eventually(t, func() bool { return stateOf(m, nodeB.Host) == domain.NodeDown }, waitFor, tick)
	assert.Equal(t, domain.NodeUp, stateOf(m, nodeA.Host))
}

func TestHealthMonitor_PickLiveNode_NeverReturnsDownNode(t *testing.T) {
	h := newHealthTable()
	h.set(nodeB.Host, false)
	m := startMonitor(t, h)
	require.Eventually(t, func() bool { return stateOf(m, nodeA.Host) == domain.NodeUp }, waitFor, tick)

	for i := 0; i < 200; i++ {
		n, err := m.PickLiveNode()
		require.NoError(t, err)
		require.Equal(t, nodeA.Host, n.Host)
		require.Equal(t, domain.NodeUp, n.State)
	}
}

func TestHealthMonitor_PickLiveNode_UsesEveryLiveNode(t *testing.T) {
	m := startMonitor(t, newHealthTable())
	require.Eventually(t, func() bool { return m.LiveCount() == 2 }, waitFor, tick)

	var idx atomic.Int32
	m.intn = func(n int) int {
		return int(idx.Add(1)) % n
	}
	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		n, err := m.PickLiveNode()
		require.NoError(t, err)
		seen[n.Host] = true
	}
	assert.Equal(t, map[string]bool{nodeA.Host: true, nodeB.Host: true}, seen)
}

func TestHealthMonitor_Failover(t *testing.T) {
	h := newHealthTable()
	m := startMonitor(t, h)
	require.Eventually(t, func() bool { return m.LiveCount() == 2 }, waitFor, tick)

	h.set(nodeA.Host, false)
	require.Eventually(t, func() bool { return m.LiveCount() == 1 }, waitFor, tick)

	for i := 0; i < 50; i++ {
		n, err := m.PickLiveNode()
		require.NoError(t, err)
		require.Equal(t, nodeB.Host, n.Host)
	}
}

func TestHealthMonitor_ReprobesEveryInterval(t *testing.T) {
	h := newHealthTable()
	prober := h.prober()
	m := NewHealthMonitor(prober, log.NewNopLogger())
	require.NoError(t, m.Start([]domain.Node{nodeA}, testInterval, testTimeout))
	defer m.Stop()

	require.Eventually(t, func() bool { return len(prober.ProbeCalls()) >= 3 }, waitFor, tick)
	for _, c := range prober.ProbeCalls() {
		assert.Equal(t, nodeA, c.Node)
	}
}

func TestHealthMonitor_StopDuringInFlightProbe(t *testing.T) {
	h := newHealthTable()
	h.setHang(nodeA.Host, true)
	prober := h.prober()
	m := NewHealthMonitor(prober, log.NewNopLogger())
	require.NoError(t, m.Start([]domain.Node{nodeA}, time.Hour, time.Hour))
	require.Eventually(t, func() bool { return len(prober.ProbeCalls()) == 1 }, waitFor, tick)

	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("Stop did not return while a probe was in flight")
	}

	assert.Equal(t, domain.NodeDown, stateOf(m, nodeA.Host))
	calls := len(prober.ProbeCalls())
	time.Sleep(5 * testInterval)
	assert.Equal(t, calls, len(prober.ProbeCalls()))

	m.Stop()
}

func TestHealthMonitor_StopBeforeStart(t *testing.T) {
	m := NewHealthMonitor(&mock.ProberMock{}, log.NewNopLogger())
	assert.NotPanics(t, m.Stop)
}

func TestHealthMonitor_NotifiesObserversOnTransitionOnly(t *testing.T) {
	h := newHealthTable()
	h.set(nodeB.Host, false)
	observer := &mock.NodeStateObserverMock{}
	m := startMonitor(t, h, observer)

	require.Eventually(t, func() bool { return stateOf(m, nodeA.Host) == domain.NodeUp }, waitFor, tick)
	time.Sleep(5 * testInterval)

	h.set(nodeA.Host, false)
	require.Eventually(t, func() bool { return stateOf(m, nodeA.Host) == domain.NodeDown }, waitFor, tick)
	m.Stop()

	calls := observer.NodeStateChangedCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, nodeA.Host, calls[0].Node.Host)
	assert.Equal(t, domain.NodeUp, calls[0].Node.State)
	assert.Equal(t, nodeA.Host, calls[1].Node.Host)
	assert.Equal(t, domain.NodeDown, calls[1].Node.State)
}

func TestHealthMonitor_OverlappingProbesNotifyInTransitionOrder(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry(), []domain.Node{nodeA})
	observer := newGatedObserver(metrics)
	var probes atomic.Int32
	prober := &mock.ProberMock{
		ProbeFunc: func(ctx context.Context, node domain.Node) error {
			if probes.Add(1) == 1 {
				return nil
			}
			return errors.New("connection refused")
		},
	}
	m := NewHealthMonitor(prober, log.NewNopLogger(), observer)
	require.NoError(t, m.Start([]domain.Node{nodeA}, testInterval, testTimeout))
	defer m.Stop()

	select {
	case <-observer.entered:
	case <-time.After(waitFor):
		t.Fatal("first transition was not notified")
	}
	// later rounds fail while the Up notification is still being delivered
	require.Eventually(t, func() bool { return probes.Load() >= 3 }, waitFor, tick)
	close(observer.release)

	require.Eventually(t, func() bool { return stateOf(m, nodeA.Host) == domain.NodeDown }, waitFor, tick)
	m.Stop()

	assert.Equal(t, domain.NodeDown, stateOf(m, nodeA.Host))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.nodeUp.WithLabelValues(nodeA.Host)))
}

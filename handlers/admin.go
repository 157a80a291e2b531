// Package handlers contains the admin http handlers of stickyproxy.
package handlers

import (
	"net/http"

	"stickyproxy/domain"
	"stickyproxy/helpers"
	"stickyproxy/interfaces"
	"stickyproxy/service"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AdminServer serves the operator API: node snapshot, readiness and manual unbind.
type AdminServer struct {
	monitor interfaces.NodeMonitor
	store   interfaces.BindingStore
	logger  log.Logger
}

// NewAdminServer creates a new AdminServer. Panics on nil dependency.
func NewAdminServer(monitor interfaces.NodeMonitor, store interfaces.BindingStore, logger log.Logger) *AdminServer {
	return &AdminServer{
		monitor: helpers.NilPanic(monitor, "handlers.admin.go: monitor is required"),
		store:   helpers.NilPanic(store, "handlers.admin.go: store is required"),
		logger:  log.WithPrefix(helpers.NilPanic(logger, "handlers.admin.go: logger is required"), "component", "AdminServer"),
	}
}

// RegisterHandlers mounts the admin routes and the metrics endpoint on e.
func RegisterHandlers(e *echo.Echo, server *AdminServer, telemetryPath string, gatherer prometheus.Gatherer) {
	e.GET("/v1/nodes", server.GetNodes)
	e.GET("/healthz", server.Healthz)
	e.DELETE("/v1/bindings/:sid", server.DeleteBinding)
	e.GET(telemetryPath, echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

type nodesResponse struct {
	Nodes []nodeInfo `json:"nodes"`
}

type nodeInfo struct {
	Host  string `json:"host"`
	State string `json:"state"`
}

func toNodesResponse(nodes []domain.Node) nodesResponse {
	resp := nodesResponse{Nodes: make([]nodeInfo, 0, len(nodes))}
	for _, n := range nodes {
		resp.Nodes = append(resp.Nodes, nodeInfo{Host: n.Host, State: n.State.String()})
	}
	return resp
}

// GetNodes (GET /v1/nodes) returns every configured node with its current state.
func (s *AdminServer) GetNodes(ectx echo.Context) error {
	return ectx.JSON(http.StatusOK, toNodesResponse(s.monitor.Nodes()))
}

// Healthz (GET /healthz) returns 200 when at least one node is up, 503 otherwise.
func (s *AdminServer) Healthz(ectx echo.Context) error {
	if s.monitor.LiveCount() == 0 {
		return ectx.NoContent(http.StatusServiceUnavailable)
	}
	return ectx.NoContent(http.StatusOK)
}

// DeleteBinding (DELETE /v1/bindings/{sid}) drops a session binding. The store is best-effort, so this always
// answers 204 for a well-formed request.
func (s *AdminServer) DeleteBinding(ectx echo.Context) error {
	sid := ectx.Param("sid")
	if sid == "" {
		return service.NewBadParameterError("sid is required", nil)
	}
	s.store.Delete(ectx.Request().Context(), sid)
	level.Info(s.logger).Log("msg", "binding dropped by operator", "sid", sid)
	return ectx.NoContent(http.StatusNoContent)
}

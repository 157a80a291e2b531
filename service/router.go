package service

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"stickyproxy/domain"
	"stickyproxy/helpers"
	"stickyproxy/interfaces"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// sessionQueryKey is the query parameter that carries an established session identifier.
const sessionQueryKey = "sid"

// sessionMarker finds the session identifier a backend announces in its handshake response body.
var sessionMarker = regexp.MustCompile(`"sid":"([\w-]+)"`)

// Router is the routing engine. Route classifies a request as first contact (no sid) or bound (sid present) and
// resolves its target: a random live node for the former, the stored binding for the latter. OnResponse records the
// binding announced in a first-contact response and OnForwardError drops the binding of a bound request whose
// forwarding failed. There is no retry and no re-classification.
type Router struct {
	path    string
	monitor interfaces.NodeMonitor
	store   interfaces.BindingStore
	logger  log.Logger
}

// NewRouter creates the routing engine. Panics on empty path or nil dependency.
//
// Parameters: path - routing prefix (e.g. /socket.io/); monitor - live node source; store - session bindings;
// logger - routing decisions are logged at debug level.
//
// Returns: *Router.
//
// Called from cmd/main; the result is shared by the proxy handler and the forwarder.
func NewRouter(path string, monitor interfaces.NodeMonitor, store interfaces.BindingStore, logger log.Logger) *Router {
	return &Router{
		path:    helpers.StrPanic(path, "service.router.go: path is required"),
		monitor: helpers.NilPanic(monitor, "service.router.go: monitor is required"),
		store:   helpers.NilPanic(store, "service.router.go: store is required"),
		logger:  log.With(helpers.NilPanic(logger, "service.router.go: logger is required"), "component", "router"),
	}
}

// Route resolves the target of r.
//
// Parameters: r - inbound request; its context bounds the binding lookup.
//
// Returns: (r with a domain.RequestContext in its context, nil); (nil, error) with one of the codes bad_path,
// no_node_available, unknown_binding or store_error. The request must then be rejected.
//
// Called from Proxy.ServeHTTP for every inbound request.
func (rt *Router) Route(r *http.Request) (*http.Request, error) {
	if !strings.HasPrefix(r.URL.Path, rt.path) {
		return nil, NewBadPathError(r.URL.Path)
	}

	query := r.URL.Query()
	if _, ok := query[sessionQueryKey]; !ok {
		node, err := rt.monitor.PickLiveNode()
		if err != nil {
			return nil, err
		}
		level.Debug(rt.logger).Log("msg", "first contact", "target", node.Host)
		rc := domain.RequestContext{Track: true, Target: node.Host}
		return r.WithContext(domain.WithRequestContext(r.Context(), rc)), nil
	}

	sessionID := query.Get(sessionQueryKey)
	host, err := rt.store.Lookup(r.Context(), sessionID)
	if err != nil {
		return nil, err
	}
	level.Debug(rt.logger).Log("msg", "bound request", "sid", sessionID, "target", host)
	rc := domain.RequestContext{SessionID: sessionID, HasSession: true, Target: host}
	return r.WithContext(domain.WithRequestContext(r.Context(), rc)), nil
}

// OnResponse inspects the fully buffered body of a first-contact response and, when it announces a session
// identifier, binds it to the node that produced it. Untracked requests and bodies without a marker are ignored.
//
// Called from the forwarder before the response is released to the client.
func (rt *Router) OnResponse(ctx context.Context, body []byte) {
	rc, ok := domain.RequestContextFrom(ctx)
	if !ok || !rc.Track {
		return
	}
	match := sessionMarker.FindSubmatch(body)
	if match == nil {
		level.Debug(rt.logger).Log("msg", "no session identifier in response", "target", rc.Target)
		return
	}
	sessionID := string(match[1])
	rt.store.Create(ctx, sessionID, rc.Target)
	level.Debug(rt.logger).Log("msg", "session bound", "sid", sessionID, "target", rc.Target)
}

// OnForwardError drops the binding of a bound request that could not be relayed. First-contact failures leave
// the store untouched.
//
// Called from the forwarder's error handler.
func (rt *Router) OnForwardError(ctx context.Context, err error) {
	rc, ok := domain.RequestContextFrom(ctx)
	if !ok || !rc.HasSession {
		return
	}
	level.Debug(rt.logger).Log("msg", "dropping binding after forwarding error", "sid", rc.SessionID, "target", rc.Target, "err", err)
	rt.store.Delete(ctx, rc.SessionID)
}

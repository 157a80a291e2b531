package service

import (
	"bytes"
	"io"
	stdlog "log"
	"net/http"
	"net/http/httputil"
	"net/url"

	"stickyproxy/domain"
	"stickyproxy/helpers"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Forwarder relays a routed request to the target chosen by the Router. Plain HTTP exchanges and protocol upgrades
// (WebSocket) both go through httputil.ReverseProxy. The Host header is rewritten to the target.
//
// The body of a tracked (first-contact) response is read in full and given to Router.OnResponse before anything is
// written to the client, so that the binding exists by the time the client can send its next request. A 101
// response is never inspected.
type Forwarder struct {
	router  *Router
	errors  *HTTPErrorHandler
	metrics *Metrics
	logger  log.Logger
	proxy   *httputil.ReverseProxy
}

// NewForwarder creates the forwarding engine. Panics on nil dependency.
//
// Parameters: router - receives response and error callbacks; transport - round tripper to the nodes
// (http.DefaultTransport clone in production); errHandler - writes the 502 on relay failure; metrics - forward
// error counter; logger - relay failures are logged at debug level.
//
// Returns: *Forwarder, an http.Handler that expects requests returned by Router.Route.
//
// Called from cmd/main.
func NewForwarder(router *Router, transport http.RoundTripper, errHandler *HTTPErrorHandler, metrics *Metrics, logger log.Logger) *Forwarder {
	f := &Forwarder{
		router:  helpers.NilPanic(router, "service.forwarder.go: router is required"),
		errors:  helpers.NilPanic(errHandler, "service.forwarder.go: error handler is required"),
		metrics: helpers.NilPanic(metrics, "service.forwarder.go: metrics is required"),
		logger:  log.With(helpers.NilPanic(logger, "service.forwarder.go: logger is required"), "component", "forwarder"),
	}
	f.proxy = &httputil.ReverseProxy{
		Rewrite:        f.rewrite,
		Transport:      helpers.NilPanic(transport, "service.forwarder.go: transport is required"),
		ModifyResponse: f.inspectResponse,
		ErrorHandler:   f.handleError,
		ErrorLog:       stdlog.New(log.NewStdlibAdapter(level.Debug(f.logger)), "", 0),
	}
	return f
}

func (f *Forwarder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.proxy.ServeHTTP(w, r)
}

func (f *Forwarder) rewrite(pr *httputil.ProxyRequest) {
	rc, _ := domain.RequestContextFrom(pr.In.Context())
	pr.SetURL(&url.URL{Scheme: "http", Host: rc.Target})
	pr.SetXForwarded()
}

// inspectResponse buffers a tracked response body, hands it to the router and puts it back untouched.
// A returned error is routed to handleError by the reverse proxy.
func (f *Forwarder) inspectResponse(resp *http.Response) error {
	if resp.StatusCode == http.StatusSwitchingProtocols {
		return nil
	}
	ctx := resp.Request.Context()
	rc, ok := domain.RequestContextFrom(ctx)
	if !ok || !rc.Track {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return NewForwardingError(rc.Target, err)
	}
	f.router.OnResponse(ctx, body)

	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	return nil
}

// handleError answers 502 and drops the binding of a bound request the node failed to serve. A request the client
// abandoned is not a node failure: nothing is written and the binding is kept.
func (f *Forwarder) handleError(w http.ResponseWriter, r *http.Request, err error) {
	rc, _ := domain.RequestContextFrom(r.Context())
	if r.Context().Err() != nil {
		level.Debug(f.logger).Log("msg", "client went away", "target", rc.Target, "sid", rc.SessionID, "err", err)
		return
	}
	level.Debug(f.logger).Log("msg", "forwarding failed", "target", rc.Target, "sid", rc.SessionID, "err", err)

	f.router.OnForwardError(r.Context(), err)
	f.metrics.ObserveForwardError(requestPath(rc))
	if !IsForwardingError(err) {
		err = NewForwardingError(rc.Target, err)
	}
	f.errors.WriteProxyError(w, r, err)
}

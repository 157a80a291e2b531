package service

import (
	"net/http"

	"stickyproxy/domain"
	"stickyproxy/helpers"
)

// Proxy is the public http.Handler: every request is routed, then either rejected with an empty-body status or
// handed to the forwarder.
type Proxy struct {
	router    *Router
	forwarder http.Handler
	errors    *HTTPErrorHandler
	metrics   *Metrics
}

// NewProxy creates the public handler. Panics on nil dependency.
//
// Called from cmd/main; the result is served on the public port.
func NewProxy(router *Router, forwarder http.Handler, errHandler *HTTPErrorHandler, metrics *Metrics) *Proxy {
	return &Proxy{
		router:    helpers.NilPanic(router, "service.proxy.go: router is required"),
		forwarder: helpers.NilPanic(forwarder, "service.proxy.go: forwarder is required"),
		errors:    helpers.NilPanic(errHandler, "service.proxy.go: error handler is required"),
		metrics:   helpers.NilPanic(metrics, "service.proxy.go: metrics is required"),
	}
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	routed, err := p.router.Route(r)
	if err != nil {
		code := ToProxyErrorCode(err)
		if code == "" {
			code = ErrInternalServerError
		}
		p.metrics.ObserveRequest(PathRejected, code)
		p.errors.WriteProxyError(w, r, err)
		return
	}

	rc, _ := domain.RequestContextFrom(routed.Context())
	p.metrics.ObserveRequest(requestPath(rc), OutcomeForwarded)
	p.forwarder.ServeHTTP(w, routed)
}

package domain

import "context"

// RequestContext is the routing state of one in-flight request. It lives in the request's context.Context from the
// routing decision until the exchange finishes and is never persisted.
//
// SessionID is the value of the sid query parameter and HasSession reports whether the parameter was present at all
// (an empty value still selects the bound path). Track marks a first-contact request whose response body must be
// inspected for a new session identifier. Target is the "hostname:port" the request is forwarded to.
type RequestContext struct {
	SessionID  string
	HasSession bool
	Track      bool
	Target     string
}

type requestContextKey struct{}

// WithRequestContext returns a copy of ctx carrying rc.
func WithRequestContext(ctx context.Context, rc RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// RequestContextFrom extracts the RequestContext stored by WithRequestContext; ok is false when none is present.
func RequestContextFrom(ctx context.Context) (RequestContext, bool) {
	rc, ok := ctx.Value(requestContextKey{}).(RequestContext)
	return rc, ok
}

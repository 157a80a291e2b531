package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"stickyproxy/domain"
	"stickyproxy/helpers"
	"stickyproxy/interfaces"
)

// HTTPProber creates an interfaces.Prober that checks a node with HEAD http://host/. Panics on nil client.
//
// Parameters: client - HTTP client used for probes; per-probe deadline comes from the ctx given to Probe, so the
// client timeout may stay zero. Redirects are not followed.
//
// Returns: interfaces.Prober (*httpProber).
//
// Called from cmd/main when building the health monitor.
func HTTPProber(client *http.Client) interfaces.Prober {
	c := *helpers.NilPanic(client, "adapters.prober.go: http client is required")
	c.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &httpProber{client: &c}
}

type httpProber struct {
	client *http.Client
}

// Probe reports nil when the node answered at all. The status code is ignored: a 404 or 500 still proves the
// process is there. Transport errors and ctx expiry are returned as is.
func (p *httpProber) Probe(ctx context.Context, node domain.Node) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, "http://"+node.Host+"/", nil)
	if err != nil {
		return fmt.Errorf("can't build probe request for %s: %w", node.Host, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/smishguard/internal/httputil"
	"github.com/pdiddy/smishguard/pkg/types"
)

const maxRedirects = 30

// NormalizeURL prepends http:// when raw has neither an http nor an https
// scheme. Anything else passes through unchanged.
func NormalizeURL(raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "http://" + raw
}

// Reachable reports whether status is in the 200–399 success range.
func Reachable(status int) bool {
	return status >= 200 && status < 400
}

// Tracer follows redirects with a browser-like header set.
type Tracer struct {
	client     *http.Client
	headers    http.Header
	maxRetries int
}

// NewTracer creates a Tracer. A nil client uses a default client; headers
// nil uses httputil.BrowserHeaders("").
func NewTracer(client *http.Client, headers http.Header, maxRetries int) *Tracer {
	if client == nil {
		client = &http.Client{}
	}
	if headers == nil {
		headers = httputil.BrowserHeaders("")
	}
	return &Tracer{client: client, headers: headers, maxRetries: maxRetries}
}

// Resolve returns the destination of rawURL after following redirects,
// whatever its final status. It fails only when no response was received.
func (t *Tracer) Resolve(ctx context.Context, rawURL string, timeout time.Duration) (string, int, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	hops, err := t.Trace(ctx, rawURL)
	if err != nil {
		return "", 0, err
	}
	final := hops[len(hops)-1]
	return final.URL, final.Status, nil
}

// Chain returns the redirect history of rawURL as a RedirectChain.
func (t *Tracer) Chain(ctx context.Context, rawURL string) (*types.RedirectChain, error) {
	hops, err := t.Trace(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return &types.RedirectChain{Hops: hops}, nil
}

// Trace issues a redirect-following HEAD request and returns every response
// in order, ending with the final one. Servers that reject HEAD (405, 501)
// are retried with GET.
func (t *Tracer) Trace(ctx context.Context, rawURL string) ([]types.RedirectHop, error) {
	hops, err := t.trace(ctx, http.MethodHead, rawURL)
	if err != nil {
		return nil, err
	}
	if s := hops[len(hops)-1].Status; s == http.StatusMethodNotAllowed || s == http.StatusNotImplemented {
		return t.trace(ctx, http.MethodGet, rawURL)
	}
	return hops, nil
}

func (t *Tracer) trace(ctx context.Context, method, rawURL string) ([]types.RedirectHop, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httputil.ApplyHeaders(req, t.headers)

	client := *t.client
	client.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	}

	resp, err := httputil.DoWithRetry(ctx, &client, req, t.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()

	return history(resp), nil
}

// history walks back from the final response through the redirect
// responses that produced it.
func history(resp *http.Response) []types.RedirectHop {
	var rev []types.RedirectHop
	rev = append(rev, types.RedirectHop{URL: resp.Request.URL.String(), Status: resp.StatusCode})
	for prev := resp.Request.Response; prev != nil; prev = prev.Request.Response {
		rev = append(rev, types.RedirectHop{URL: prev.Request.URL.String(), Status: prev.StatusCode})
	}

	hops := make([]types.RedirectHop, len(rev))
	for i, h := range rev {
		hops[len(rev)-1-i] = h
	}
	return hops
}

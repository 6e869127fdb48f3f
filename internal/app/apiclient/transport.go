package apiclient

import (
	"context"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// TokenSource yields the bearer token for the request being sent, or "" when
// the caller has no session.
type TokenSource interface {
	Token(ctx context.Context) string
}

// TokenSourceFunc adapts a function to a TokenSource.
type TokenSourceFunc func(ctx context.Context) string

func (f TokenSourceFunc) Token(ctx context.Context) string { return f(ctx) }

// BearerTransport decorates outgoing requests with an Authorization header. It
// only touches headers: method, URL and body go through as the caller built
// them. It does not look at responses, so a 401 comes back to the caller as is
// and nothing is retried or refreshed.
type BearerTransport struct {
	Base   http.RoundTripper
	Source TokenSource
}

func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.Source == nil {
		return base.RoundTrip(req)
	}

	token := t.Source.Token(req.Context())
	if token == "" {
		return base.RoundTrip(req)
	}

	// RoundTrippers must not mutate the caller's request.
	decorated := req.Clone(req.Context())
	decorated.Header.Set("Authorization", "Bearer "+token)
	return base.RoundTrip(decorated)
}

// newTransport is the one place the client's request pipeline is assembled:
// bearer decoration first, then tracing, then the network.
func newTransport(base http.RoundTripper, source TokenSource) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &BearerTransport{
		Base:   otelhttp.NewTransport(base),
		Source: source,
	}
}

package middleware

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"inferdesk/internal/domain"
)

// RequestIDHeader carries the per-call correlation id.
const RequestIDHeader = "X-Request-ID"

// Middleware decorates an outbound transport.
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripFunc adapts a function to http.RoundTripper.
type RoundTripFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Chain wraps base with mws. The first middleware is the outermost. The
// result forwards CloseIdleConnections to base.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	rt := base
	for i := len(mws) - 1; i >= 0; i-- {
		rt = mws[i](rt)
	}
	return &chained{RoundTripper: rt, base: base}
}

type chained struct {
	http.RoundTripper
	base http.RoundTripper
}

// CloseIdleConnections closes idle connections on the underlying transport.
func (c *chained) CloseIdleConnections() {
	if ci, ok := c.base.(interface{ CloseIdleConnections() }); ok {
		ci.CloseIdleConnections()
	}
}

// RequestID stamps every request with a fresh UUID unless the caller set one.
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get(RequestIDHeader) != "" {
				return next.RoundTrip(r)
			}
			r = r.Clone(r.Context())
			r.Header.Set(RequestIDHeader, uuid.NewString())
			return next.RoundTrip(r)
		})
	}
}

// Headers sets fixed headers on every request. Empty values are skipped.
func Headers(h map[string]string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			r = r.Clone(r.Context())
			for k, v := range h {
				if v != "" {
					r.Header.Set(k, v)
				}
			}
			return next.RoundTrip(r)
		})
	}
}

// BearerAuth sets the Authorization header when token is non-empty.
func BearerAuth(token string) Middleware {
	if token == "" {
		return func(next http.RoundTripper) http.RoundTripper { return next }
	}
	return Headers(map[string]string{"Authorization": "Bearer " + token})
}

// RateLimit applies a token bucket of requestsPerMin spread over 60 seconds.
// Calls over the limit fail immediately with domain.ErrRateLimit and never
// reach the network. requestsPerMin <= 0 disables the limit.
func RateLimit(requestsPerMin, burst int) Middleware {
	if requestsPerMin <= 0 {
		return func(next http.RoundTripper) http.RoundTripper { return next }
	}
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(requestsPerMin)/60.0, burst)
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			if !limiter.Allow() {
				return nil, fmt.Errorf("%w: client limit of %d requests/min", domain.ErrRateLimit, requestsPerMin)
			}
			return next.RoundTrip(r)
		})
	}
}

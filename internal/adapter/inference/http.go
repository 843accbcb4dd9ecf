package inference

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"inferdesk/internal/domain"
	"inferdesk/internal/infra/config"
	"inferdesk/internal/infra/middleware"
)

// maxResponseBody is the maximum response body size read from the service.
const maxResponseBody = 10 * 1024 * 1024 // 10 MB

// Default connection pool settings: one host, one request at a time per
// session, long-lived connections.
const (
	defaultMaxIdleConns        = 10
	defaultMaxIdleConnsPerHost = 4
	defaultMaxConnsPerHost     = 8
	defaultIdleConnTimeout     = 90 * time.Second
	defaultConnTimeout         = 30 * time.Second
	defaultRespTimeout         = 120 * time.Second
)

// userAgent identifies the client to the inference service.
const userAgent = "inferdesk/1.0"

// NewPooledTransport creates an http.Transport with connection pooling.
func NewPooledTransport(connTimeout, respTimeout time.Duration, pool config.PoolConfig) *http.Transport {
	if connTimeout <= 0 {
		connTimeout = defaultConnTimeout
	}
	if respTimeout <= 0 {
		respTimeout = defaultRespTimeout
	}
	maxIdle := pool.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = defaultMaxIdleConns
	}
	maxIdlePerHost := pool.MaxIdleConnsPerHost
	if maxIdlePerHost <= 0 {
		maxIdlePerHost = defaultMaxIdleConnsPerHost
	}
	maxConnsPerHost := pool.MaxConnsPerHost
	if maxConnsPerHost <= 0 {
		maxConnsPerHost = defaultMaxConnsPerHost
	}
	idleTimeout := pool.IdleConnTimeout
	if idleTimeout <= 0 {
		idleTimeout = defaultIdleConnTimeout
	}

	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: respTimeout,
		MaxIdleConns:          maxIdle,
		MaxIdleConnsPerHost:   maxIdlePerHost,
		MaxConnsPerHost:       maxConnsPerHost,
		IdleConnTimeout:       idleTimeout,
		ForceAttemptHTTP2:     true,
	}
}

// NewHTTPClient builds the outbound client: pooled transport wrapped with
// request ids, identification headers, optional bearer auth and the
// client-side rate limit.
func NewHTTPClient(cfg config.ServiceConfig) *http.Client {
	connTimeout := cfg.ConnTimeout
	if connTimeout <= 0 {
		connTimeout = defaultConnTimeout
	}
	respTimeout := cfg.RespTimeout
	if respTimeout <= 0 {
		respTimeout = defaultRespTimeout
	}

	base := NewPooledTransport(connTimeout, respTimeout, cfg.Pool)
	return &http.Client{
		Transport: middleware.Chain(base,
			middleware.RateLimit(cfg.RequestsPerMinute, cfg.Burst),
			middleware.RequestID(),
			middleware.Headers(map[string]string{"User-Agent": userAgent}),
			middleware.BearerAuth(cfg.APIKey),
		),
		Timeout: connTimeout + respTimeout,
	}
}

// mapHTTPError maps a non-2xx status and body to a domain error. FastAPI
// style {"detail": "..."} bodies contribute their detail text.
func mapHTTPError(statusCode int, body []byte) error {
	detail := strings.TrimSpace(string(body))
	var fe struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(body, &fe) == nil && fe.Detail != nil {
		if s, ok := fe.Detail.(string); ok {
			detail = s
		} else if b, err := json.Marshal(fe.Detail); err == nil {
			detail = string(b)
		}
	}
	if len(detail) > 512 {
		detail = detail[:512] + "..."
	}
	msg := fmt.Sprintf("API error %d: %s", statusCode, detail)

	switch {
	case statusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimit, msg)
	default:
		return fmt.Errorf("%w: %s", domain.ErrProviderError, msg)
	}
}

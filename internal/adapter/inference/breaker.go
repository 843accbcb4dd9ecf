package inference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"inferdesk/internal/domain"
	"inferdesk/internal/infra/config"
)

// Default circuit breaker settings.
const (
	defaultCBMaxFailures uint32        = 5
	defaultCBTimeout     time.Duration = 30 * time.Second
	defaultCBInterval    time.Duration = 60 * time.Second
)

// BreakerClient wraps an InferenceService with circuit breaker protection.
// After repeated server failures the circuit opens and calls fail fast with
// domain.ErrCircuitOpen without reaching the network. It never retries.
type BreakerClient struct {
	inner   domain.InferenceService
	breaker *gobreaker.CircuitBreaker[any]
}

// NewBreakerClient wraps inner with a circuit breaker. Zero-valued settings
// fall back to defaults.
func NewBreakerClient(inner domain.InferenceService, cfg config.CircuitBreakerConfig, logger *slog.Logger) *BreakerClient {
	if logger == nil {
		logger = slog.Default()
	}
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultCBMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultCBTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultCBInterval
	}

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "inference",
		MaxRequests: 1, // one probe in half-open state
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: isBreakerSuccess,
	})

	return &BreakerClient{inner: inner, breaker: cb}
}

// isBreakerSuccess counts only service-side failures against the circuit.
// Caller cancellation and client-side throttling say nothing about the
// service's health.
func isBreakerSuccess(err error) bool {
	return err == nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, domain.ErrRateLimit)
}

// execute runs fn through the breaker and restores its typed result.
func execute[T any](b *BreakerClient, fn func() (T, error)) (T, error) {
	var zero T
	v, err := b.breaker.Execute(func() (any, error) {
		out, err := fn()
		return out, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %w", domain.ErrCircuitOpen, err)
		}
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, nil
	}
	return out, nil
}

// Generate implements domain.InferenceService.
func (b *BreakerClient) Generate(ctx context.Context, query string) (string, error) {
	return execute(b, func() (string, error) { return b.inner.Generate(ctx, query) })
}

// Humanize implements domain.InferenceService.
func (b *BreakerClient) Humanize(ctx context.Context, query string) (string, error) {
	return execute(b, func() (string, error) { return b.inner.Humanize(ctx, query) })
}

// Code implements domain.InferenceService.
func (b *BreakerClient) Code(ctx context.Context, query string, mode domain.CodeMode) (string, error) {
	return execute(b, func() (string, error) { return b.inner.Code(ctx, query, mode) })
}

// SummarizePDF implements domain.InferenceService.
func (b *BreakerClient) SummarizePDF(ctx context.Context, file domain.Attachment, query string) (string, error) {
	return execute(b, func() (string, error) { return b.inner.SummarizePDF(ctx, file, query) })
}

// LitReview implements domain.InferenceService.
func (b *BreakerClient) LitReview(ctx context.Context, query string) (string, error) {
	return execute(b, func() (string, error) { return b.inner.LitReview(ctx, query) })
}

// Search implements domain.InferenceService.
func (b *BreakerClient) Search(ctx context.Context, query string) ([]domain.Paper, error) {
	return execute(b, func() ([]domain.Paper, error) { return b.inner.Search(ctx, query) })
}

// State returns the current circuit breaker state for monitoring.
func (b *BreakerClient) State() gobreaker.State {
	return b.breaker.State()
}

// Counts returns the current circuit breaker failure/success counts.
func (b *BreakerClient) Counts() gobreaker.Counts {
	return b.breaker.Counts()
}

var _ domain.InferenceService = (*BreakerClient)(nil)

// New builds the service stack from config: the HTTP client, wrapped in a
// circuit breaker when enabled.
func New(cfg config.ServiceConfig, logger *slog.Logger) (domain.InferenceService, func()) {
	client := NewClient(cfg, logger)
	if !cfg.CircuitBreaker.Enabled {
		return client, client.Close
	}
	return NewBreakerClient(client, cfg.CircuitBreaker, logger), client.Close
}

package inference

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inferdesk/internal/domain"
	"inferdesk/internal/infra/config"
)

// stubService fails or succeeds on demand and counts calls.
type stubService struct {
	calls atomic.Int32
	fail  atomic.Bool
	err   error
}

func (s *stubService) result() (string, error) {
	s.calls.Add(1)
	if s.fail.Load() {
		if s.err != nil {
			return "", s.err
		}
		return "", domain.ErrProviderError
	}
	return "ok", nil
}

func (s *stubService) Generate(context.Context, string) (string, error) { return s.result() }
func (s *stubService) Humanize(context.Context, string) (string, error) { return s.result() }
func (s *stubService) Code(context.Context, string, domain.CodeMode) (string, error) {
	return s.result()
}
func (s *stubService) SummarizePDF(context.Context, domain.Attachment, string) (string, error) {
	return s.result()
}
func (s *stubService) LitReview(context.Context, string) (string, error) { return s.result() }
func (s *stubService) Search(context.Context, string) ([]domain.Paper, error) {
	if _, err := s.result(); err != nil {
		return nil, err
	}
	return []domain.Paper{{Title: "T"}}, nil
}

func TestBreakerPassesThrough(t *testing.T) {
	inner := &stubService{}
	b := NewBreakerClient(inner, config.CircuitBreakerConfig{}, discardLogger())

	text, err := b.Generate(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)

	papers, err := b.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []domain.Paper{{Title: "T"}}, papers)
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	inner := &stubService{}
	inner.fail.Store(true)
	b := NewBreakerClient(inner, config.CircuitBreakerConfig{MaxFailures: 3, Timeout: 5 * time.Second}, discardLogger())

	for i := 0; i < 3; i++ {
		_, err := b.Humanize(context.Background(), "q")
		assert.ErrorIs(t, err, domain.ErrProviderError)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.LitReview(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrCircuitOpen)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, int32(3), inner.calls.Load(), "open circuit must not reach the service")
}

func TestBreakerHalfOpenRecovers(t *testing.T) {
	inner := &stubService{}
	inner.fail.Store(true)
	b := NewBreakerClient(inner, config.CircuitBreakerConfig{MaxFailures: 1, Timeout: 20 * time.Millisecond}, discardLogger())

	_, err := b.Generate(context.Background(), "q")
	require.Error(t, err)
	require.Equal(t, gobreaker.StateOpen, b.State())

	time.Sleep(40 * time.Millisecond)
	inner.fail.Store(false)

	_, err = b.Generate(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerIgnoresCancelAndThrottle(t *testing.T) {
	for _, e := range []error{context.Canceled, domain.ErrRateLimit} {
		inner := &stubService{err: e}
		inner.fail.Store(true)
		b := NewBreakerClient(inner, config.CircuitBreakerConfig{MaxFailures: 1}, discardLogger())

		for i := 0; i < 3; i++ {
			_, err := b.Code(context.Background(), "q", domain.CodeModeDebug)
			assert.ErrorIs(t, err, e)
		}
		assert.Equal(t, gobreaker.StateClosed, b.State(), "%v must not trip the breaker", e)
		assert.Equal(t, int32(3), inner.calls.Load())
	}
}

func TestNewStack(t *testing.T) {
	svc, closeFn := New(config.ServiceConfig{BaseURL: "http://localhost:1", CircuitBreaker: config.CircuitBreakerConfig{Enabled: true}}, discardLogger())
	defer closeFn()
	_, ok := svc.(*BreakerClient)
	assert.True(t, ok)

	svc, closeFn2 := New(config.ServiceConfig{BaseURL: "http://localhost:1"}, discardLogger())
	defer closeFn2()
	_, ok = svc.(*Client)
	assert.True(t, ok)
}

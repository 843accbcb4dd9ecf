package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"inferdesk/internal/domain"
)

// DefaultRequestTimeout force-settles a request that never completes.
const DefaultRequestTimeout = 120 * time.Second

// SessionConfig carries the tunables shared by every session kind.
type SessionConfig struct {
	// Timeout bounds a single dispatch. Zero means DefaultRequestTimeout;
	// negative disables the bound.
	Timeout time.Duration
	// ClipLength is the collapsed disclosure length for single-shot sessions.
	ClipLength int
	Logger     *slog.Logger
}

// Outcome is the settled result of one submit cycle.
type Outcome struct {
	Seq      uint64
	Text     string // trimmed response text; empty on failure
	Err      error
	Duration time.Duration
}

// OK reports whether the cycle settled successfully.
func (o Outcome) OK() bool { return o.Err == nil }

// engine holds what chat and single-shot sessions share: the variant, the
// guard, and the guarded dispatch path.
type engine struct {
	variant Variant
	guard   *RequestGuard
	logger  *slog.Logger
	timeout time.Duration
}

func newEngine(v Variant, cfg SessionConfig) engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultRequestTimeout
	}
	return engine{
		variant: v,
		guard:   NewRequestGuard(),
		logger:  logger.With("session", v.Name),
		timeout: timeout,
	}
}

// State returns the session's status and last error.
func (e *engine) State() domain.SessionState { return e.guard.State() }

// Variant returns the variant the session was built for.
func (e *engine) Variant() Variant { return e.variant }

// admit validates draft and acquires the guard.
func (e *engine) admit(op string, draft domain.Draft) (*Permit, error) {
	if err := e.variant.Validate(draft); err != nil {
		e.logger.Debug("draft rejected", "op", op, "code", domain.ErrorCodeOf(err))
		return nil, domain.WrapOp(op, err)
	}
	permit, ok := e.guard.BeginRequest()
	if !ok {
		return nil, domain.NewDomainError(op, domain.ErrBusy, "")
	}
	e.logger.Debug("dispatch started", "op", op, "seq", permit.Seq(), "operation", e.variant.Operation)
	return permit, nil
}

// dispatch runs the variant's call once, bounded by the session timeout.
// It never panics and never returns before the call settles or times out.
func (e *engine) dispatch(ctx context.Context, permit *Permit, draft domain.Draft) Outcome {
	text, err := callBounded(ctx, e.timeout, func(ctx context.Context) (string, error) {
		return e.variant.Call(ctx, draft)
	})

	out := Outcome{Seq: permit.Seq(), Duration: permit.Elapsed()}
	if err != nil {
		out.Err = err
	} else {
		out.Text = strings.TrimSpace(text)
	}
	return out
}

// callBounded runs fn on its own goroutine and waits for it or for the
// timeout, whichever comes first. A panic in fn is returned as a provider
// error. A call abandoned at the timeout finishes in the background and
// its result is discarded.
func callBounded[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: domain.NewDomainError("dispatch", domain.ErrProviderError, fmt.Sprintf("panic: %v", r))}
			}
		}()
		val, err := fn(ctx)
		done <- result{val: val, err: err}
	}()

	var r result
	select {
	case r = <-done:
	case <-ctx.Done():
		r = result{err: ctx.Err()}
	}
	if r.err != nil {
		var zero T
		return zero, classifyContextErr(r.err)
	}
	return r.val, nil
}

// settle releases the guard and logs the cycle.
func (e *engine) settle(permit *Permit, out Outcome) {
	if out.OK() {
		permit.Resolve()
		e.logger.Info("dispatch settled",
			"seq", out.Seq,
			"status", "ok",
			"duration", out.Duration,
			"chars", len(out.Text),
		)
		return
	}
	permit.Reject(out.Err.Error())
	e.logger.Warn("dispatch settled",
		"seq", out.Seq,
		"status", "error",
		"code", domain.ErrorCodeOf(out.Err),
		"duration", out.Duration,
		"error", out.Err,
	)
}

func classifyContextErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrTimeout) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	return err
}

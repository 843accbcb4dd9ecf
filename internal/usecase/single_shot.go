package usecase

import (
	"context"
	"sync"

	"inferdesk/internal/domain"
)

// SingleShotSession is the one-query/one-response session controller. A
// successful response replaces the disclosure wholesale; a failure sets
// the visible error and leaves the previous text in place.
type SingleShotSession struct {
	engine

	mu         sync.Mutex
	disclosure domain.Disclosure
	errText    string
	replaced   int
}

// NewSingleShotSession creates an idle session with an empty disclosure.
func NewSingleShotSession(v Variant, cfg SessionConfig) *SingleShotSession {
	clip := cfg.ClipLength
	if clip <= 0 {
		clip = domain.DefaultClipLength
	}
	return &SingleShotSession{
		engine:     newEngine(v, cfg),
		disclosure: domain.NewDisclosure(clip),
	}
}

// Disclosure returns a copy of the current disclosure state.
func (s *SingleShotSession) Disclosure() domain.Disclosure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disclosure
}

// Toggle flips the disclosure between collapsed and expanded.
func (s *SingleShotSession) Toggle() {
	s.mu.Lock()
	s.disclosure.Toggle()
	s.mu.Unlock()
}

// ErrorText returns the visible error banner, empty when there is none.
func (s *SingleShotSession) ErrorText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errText
}

// Replacements returns how many times a response replaced the disclosure.
func (s *SingleShotSession) Replacements() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaced
}

// CanSubmit reports whether the submit control should be enabled for
// draft: not busy and within the word limit.
func (s *SingleShotSession) CanSubmit(draft domain.Draft) bool {
	return !s.guard.Busy() && !s.variant.OverLimit(draft.Text)
}

// SingleShotDispatch is an admitted single-shot request. Run must be
// called exactly once.
type SingleShotDispatch struct {
	session *SingleShotSession
	permit  *Permit
	draft   domain.Draft
}

// Prepare validates draft and acquires the guard. The error banner from a
// previous failure is cleared once the request is admitted.
func (s *SingleShotSession) Prepare(draft domain.Draft) (*SingleShotDispatch, error) {
	permit, err := s.admit("SingleShotSession.Submit", draft)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.errText = ""
	s.mu.Unlock()
	return &SingleShotDispatch{session: s, permit: permit, draft: draft}, nil
}

// Run performs the outbound call and integrates the result.
func (d *SingleShotDispatch) Run(ctx context.Context) Outcome {
	s := d.session
	out := s.dispatch(ctx, d.permit, d.draft)

	s.mu.Lock()
	if out.OK() {
		s.disclosure.Replace(out.Text)
		s.replaced++
	} else {
		s.errText = s.variant.Fallback
		if s.errText == "" {
			s.errText = out.Err.Error()
		}
	}
	s.mu.Unlock()

	s.settle(d.permit, out)
	return out
}

// Submit runs a full cycle: Prepare then Run.
func (s *SingleShotSession) Submit(ctx context.Context, draft domain.Draft) (Outcome, error) {
	d, err := s.Prepare(draft)
	if err != nil {
		return Outcome{}, err
	}
	return d.Run(ctx), nil
}

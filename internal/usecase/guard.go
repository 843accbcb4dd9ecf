package usecase

import (
	"sync"
	"time"

	"inferdesk/internal/domain"
)

// RequestGuard admits at most one in-flight request. A caller that is
// refused must no-op: there is no queue and no cancellation.
type RequestGuard struct {
	mu     sync.Mutex
	state  domain.SessionState
	seq    uint64
	active *Permit
}

// NewRequestGuard creates an idle guard.
func NewRequestGuard() *RequestGuard {
	return &RequestGuard{}
}

// Permit is the right to run exactly one request. It must be settled
// exactly once via Resolve or Reject.
type Permit struct {
	guard   *RequestGuard
	seq     uint64
	started time.Time
	settled bool
}

// BeginRequest moves the guard to submitting and returns a permit.
// It returns false when a request is already in flight.
func (g *RequestGuard) BeginRequest() (*Permit, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.Status == domain.StatusSubmitting {
		return nil, false
	}
	g.seq++
	p := &Permit{guard: g, seq: g.seq, started: time.Now()}
	g.active = p
	g.state = domain.SessionState{Status: domain.StatusSubmitting}
	return p, true
}

// State returns a snapshot of the guard's state.
func (g *RequestGuard) State() domain.SessionState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Busy reports whether a permit is outstanding.
func (g *RequestGuard) Busy() bool {
	return g.State().Busy()
}

// Resolve settles the permit successfully and returns the guard to idle.
// It returns false if the permit was already settled.
func (p *Permit) Resolve() bool {
	return p.settle("")
}

// Reject settles the permit with an error message and returns the guard
// to idle. The message is kept as the session's LastError.
// It returns false if the permit was already settled.
func (p *Permit) Reject(errMsg string) bool {
	if errMsg == "" {
		errMsg = "request failed"
	}
	return p.settle(errMsg)
}

// Seq is the permit's position in the guard's total order of cycles.
func (p *Permit) Seq() uint64 { return p.seq }

// Elapsed returns the time since the permit was granted.
func (p *Permit) Elapsed() time.Duration { return time.Since(p.started) }

func (p *Permit) settle(errMsg string) bool {
	g := p.guard
	g.mu.Lock()
	defer g.mu.Unlock()

	if p.settled {
		return false
	}
	p.settled = true
	if g.active == p {
		g.active = nil
		g.state = domain.SessionState{Status: domain.StatusIdle, LastError: errMsg}
	}
	return true
}

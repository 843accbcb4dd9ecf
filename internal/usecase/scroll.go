package usecase

import (
	"sync"

	"inferdesk/internal/domain"
)

// Scroller reveals one message on the viewing surface.
type Scroller interface {
	ScrollToMessage(index int, smooth bool)
}

// ScrollerFunc adapts a function to the Scroller interface.
type ScrollerFunc func(index int, smooth bool)

// ScrollToMessage implements Scroller.
func (f ScrollerFunc) ScrollToMessage(index int, smooth bool) { f(index, smooth) }

// ScrollSynchronizer reveals the newest message after every append caused
// by the local user's own submit. Mount-time and settlement appends, and
// re-renders that add nothing, never scroll.
type ScrollSynchronizer struct {
	mu     sync.Mutex
	target Scroller
	count  int
	last   int
}

// NewScrollSynchronizer subscribes to log. target may be nil and set later.
func NewScrollSynchronizer(log *domain.MessageLog, target Scroller) *ScrollSynchronizer {
	s := &ScrollSynchronizer{target: target, last: -1}
	log.Observe(s.onAppend)
	return s
}

// SetTarget replaces the surface being scrolled.
func (s *ScrollSynchronizer) SetTarget(target Scroller) {
	s.mu.Lock()
	s.target = target
	s.mu.Unlock()
}

// Count returns how many scrolls have been issued.
func (s *ScrollSynchronizer) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// LastIndex returns the message index of the most recent scroll, or -1.
func (s *ScrollSynchronizer) LastIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *ScrollSynchronizer) onAppend(ev domain.AppendEvent) {
	if ev.Origin != domain.OriginLocal {
		return
	}
	s.mu.Lock()
	s.count++
	s.last = ev.Index
	target := s.target
	s.mu.Unlock()

	if target != nil {
		target.ScrollToMessage(ev.Index, true)
	}
}

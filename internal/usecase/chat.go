package usecase

import (
	"context"

	"inferdesk/internal/domain"
)

// ChatSession is the multi-turn session controller. User messages are
// appended optimistically before dispatch; assistant messages (or the
// variant's fallback) are appended on settlement.
type ChatSession struct {
	engine
	log    *domain.MessageLog
	scroll *ScrollSynchronizer
}

// NewChatSession creates a chat session and seeds the variant's welcome
// message as a mount-time append.
func NewChatSession(v Variant, cfg SessionConfig) *ChatSession {
	s := &ChatSession{
		engine: newEngine(v, cfg),
		log:    domain.NewMessageLog(),
	}
	if v.Welcome != "" {
		s.log.Append(domain.NewMessage(domain.SenderAssistant, v.Welcome), domain.OriginMount)
	}
	s.scroll = NewScrollSynchronizer(s.log, nil)
	return s
}

// Log returns the session's message log.
func (s *ChatSession) Log() *domain.MessageLog { return s.log }

// Scroll returns the session's scroll synchronizer.
func (s *ChatSession) Scroll() *ScrollSynchronizer { return s.scroll }

// Messages returns a snapshot of the log.
func (s *ChatSession) Messages() []domain.Message { return s.log.Snapshot() }

// ChatDispatch is an admitted chat request whose user message is already
// in the log. Run must be called exactly once.
type ChatDispatch struct {
	session *ChatSession
	permit  *Permit
	draft   domain.Draft
	User    domain.Message
}

// Prepare validates draft, acquires the guard, and appends the user
// message. It returns a validation error, or ErrBusy when a request is
// already in flight; in both cases no state changes.
func (s *ChatSession) Prepare(draft domain.Draft) (*ChatDispatch, error) {
	permit, err := s.admit("ChatSession.Submit", draft)
	if err != nil {
		return nil, err
	}
	user := domain.NewMessage(domain.SenderUser, draft.Text)
	s.log.Append(user, domain.OriginLocal)
	return &ChatDispatch{session: s, permit: permit, draft: draft, User: user}, nil
}

// Run performs the outbound call and integrates the result.
func (d *ChatDispatch) Run(ctx context.Context) Outcome {
	s := d.session
	out := s.dispatch(ctx, d.permit, d.draft)

	text := out.Text
	if !out.OK() {
		text = s.variant.Fallback
	}
	s.log.Append(domain.NewMessage(domain.SenderAssistant, text), domain.OriginSettlement)
	s.settle(d.permit, out)
	return out
}

// Submit runs a full cycle: Prepare then Run.
func (s *ChatSession) Submit(ctx context.Context, draft domain.Draft) (Outcome, error) {
	d, err := s.Prepare(draft)
	if err != nil {
		return Outcome{}, err
	}
	return d.Run(ctx), nil
}

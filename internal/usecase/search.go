package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"inferdesk/internal/domain"
)

// SearchSession runs semantic paper searches behind the same one-request
// guard and bounded dispatch as the other sessions. Results are replaced
// on success and cleared on failure.
type SearchSession struct {
	svc     domain.InferenceService
	guard   *RequestGuard
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	papers  []domain.Paper
	errText string
	query   string
}

// NewSearchSession creates an idle search session.
func NewSearchSession(svc domain.InferenceService, cfg SessionConfig) *SearchSession {
	e := newEngine(Variant{Name: "search"}, cfg)
	return &SearchSession{
		svc:     svc,
		guard:   e.guard,
		logger:  e.logger,
		timeout: e.timeout,
	}
}

// State returns the session's status and last error.
func (s *SearchSession) State() domain.SessionState { return s.guard.State() }

// Papers returns a copy of the latest results.
func (s *SearchSession) Papers() []domain.Paper {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Paper, len(s.papers))
	copy(out, s.papers)
	return out
}

// Query returns the query that produced the current results.
func (s *SearchSession) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// ErrorText returns the visible error banner, empty when there is none.
func (s *SearchSession) ErrorText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errText
}

// Search validates query, acquires the guard, and runs one search.
func (s *SearchSession) Search(ctx context.Context, query string) ([]domain.Paper, error) {
	const op = "SearchSession.Search"
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.WrapOp(op, domain.ErrEmptyDraft)
	}
	permit, ok := s.guard.BeginRequest()
	if !ok {
		return nil, domain.NewDomainError(op, domain.ErrBusy, "")
	}
	s.logger.Debug("search started", "seq", permit.Seq())

	papers, err := callBounded(ctx, s.timeout, func(ctx context.Context) ([]domain.Paper, error) {
		return s.svc.Search(ctx, query)
	})

	s.mu.Lock()
	if err == nil {
		s.papers = normalizePapers(papers)
		s.query = query
		s.errText = ""
	} else {
		s.papers = nil
		s.query = ""
		s.errText = SearchFallback
	}
	s.mu.Unlock()

	if err != nil {
		permit.Reject(err.Error())
		s.logger.Warn("search settled", "seq", permit.Seq(), "status", "error", "error", err)
		return nil, err
	}
	permit.Resolve()
	s.logger.Info("search settled", "seq", permit.Seq(), "status", "ok", "results", len(papers))
	return s.Papers(), nil
}

// normalizePapers fills in "Unknown" for papers without named authors.
func normalizePapers(in []domain.Paper) []domain.Paper {
	out := make([]domain.Paper, 0, len(in))
	for _, p := range in {
		var authors []string
		for _, a := range p.Authors {
			if strings.TrimSpace(a) != "" {
				authors = append(authors, a)
			}
		}
		if len(authors) == 0 {
			authors = []string{"Unknown"}
		}
		p.Authors = authors
		out = append(out, p)
	}
	return out
}

// Package search implements the Bubble Tea view for semantic paper search.
package search

import "inferdesk/internal/domain"

// ResultMsg carries the outcome of one search.
type ResultMsg struct {
	Query  string
	Papers []domain.Paper
	Err    error
}

// CopiedMsg reports the result of copying a paper link.
type CopiedMsg struct {
	Link string
	Err  error
}

package components

import (
	"fmt"

	"inferdesk/internal/adapter/tui/theme"
	"inferdesk/internal/domain"
)

// LimitExceededLabel is appended to the counter once the limit is passed.
const LimitExceededLabel = "Limit exceeded!"

// WordCounter renders the live "n / limit" counter under a draft.
type WordCounter struct {
	Limit int
}

// Text returns the plain counter for text.
func (c WordCounter) Text(text string) string {
	n := domain.WordCount(text)
	s := fmt.Sprintf("%d / %d", n, c.Limit)
	if n > c.Limit {
		s += " " + LimitExceededLabel
	}
	return s
}

// View returns the styled counter for text, or "" when there is no limit.
func (c WordCounter) View(text string) string {
	if c.Limit <= 0 {
		return ""
	}
	if domain.WordCount(text) > c.Limit {
		return theme.CounterOver.Render(c.Text(text))
	}
	return theme.CounterOK.Render(c.Text(text))
}

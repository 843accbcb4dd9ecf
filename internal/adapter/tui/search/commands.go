package search

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"inferdesk/internal/usecase"
)

func searchCmd(ctx context.Context, s *usecase.SearchSession, query string) tea.Cmd {
	return func() tea.Msg {
		papers, err := s.Search(ctx, query)
		return ResultMsg{Query: query, Papers: papers, Err: err}
	}
}

func copyCmd(copyFn func(string) error, link string) tea.Cmd {
	return func() tea.Msg {
		return CopiedMsg{Link: link, Err: copyFn(link)}
	}
}

package single

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"inferdesk/internal/usecase"
)

func dispatchCmd(ctx context.Context, d *usecase.SingleShotDispatch) tea.Cmd {
	return func() tea.Msg {
		return SettledMsg{Outcome: d.Run(ctx)}
	}
}

func copyCmd(copyFn func(string) error, text string) tea.Cmd {
	return func() tea.Msg {
		return CopiedMsg{Chars: len([]rune(text)), Err: copyFn(text)}
	}
}

func exportCmd(export ExportFunc, text, hint string) tea.Cmd {
	return func() tea.Msg {
		path, err := export(text, hint)
		return ExportedMsg{Path: path, Err: err}
	}
}

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"inferdesk/internal/usecase"
)

// dispatchCmd runs an admitted request off the UI goroutine.
func dispatchCmd(ctx context.Context, d *usecase.ChatDispatch, gen uint64) tea.Cmd {
	return func() tea.Msg {
		return SettledMsg{Outcome: d.Run(ctx), Gen: gen}
	}
}

// streamTickCmd returns a Cmd that fires a StreamTickMsg after the given delay.
func streamTickCmd(rate time.Duration) tea.Cmd {
	if rate <= 0 {
		rate = 16 * time.Millisecond
	}
	return tea.Tick(rate, func(_ time.Time) tea.Msg {
		return StreamTickMsg{}
	})
}

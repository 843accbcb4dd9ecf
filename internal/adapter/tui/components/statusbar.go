package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"inferdesk/internal/adapter/tui/theme"
)

// KeyHint represents a single keybinding hint shown in the status bar.
type KeyHint struct {
	Key  string // e.g. "Enter"
	Desc string // e.g. "Send"
}

// StatusBarModel renders a bottom status bar with keybinding hints and
// session info.
type StatusBarModel struct {
	Hints   []KeyHint
	Session string // e.g. "code"
	Detail  string // e.g. the code assistant mode label
	Extra   string // transient status, e.g. "Thinking..."
	IsError bool   // render Extra as an error
	width   int
}

// NewStatusBar creates an empty status bar.
func NewStatusBar() StatusBarModel {
	return StatusBarModel{}
}

// SetWidth updates the available width.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// SetError shows text as an error until the next SetExtra or Clear.
func (m *StatusBarModel) SetError(text string) {
	m.Extra = text
	m.IsError = true
}

// SetExtra shows transient informational text.
func (m *StatusBarModel) SetExtra(text string) {
	m.Extra = text
	m.IsError = false
}

// Clear removes the transient text.
func (m *StatusBarModel) Clear() {
	m.Extra = ""
	m.IsError = false
}

// View renders the status bar as a single line.
func (m StatusBarModel) View() string {
	var hints []string
	for _, h := range m.Hints {
		hints = append(hints, theme.StatusKey.Render(h.Key)+": "+h.Desc)
	}
	left := strings.Join(hints, "  "+theme.Dim.Render("|")+"  ")

	var parts []string
	if m.Session != "" {
		parts = append(parts, m.Session)
	}
	if m.Detail != "" {
		parts = append(parts, m.Detail)
	}
	right := theme.TextMuted.Render(strings.Join(parts, " "+theme.SymbolBullet+" "))

	if m.Extra != "" {
		style := theme.TextInfo
		if m.IsError {
			style = theme.TextError
		}
		if right != "" {
			right += "  "
		}
		right += style.Render(m.Extra)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	bar := left + strings.Repeat(" ", gap) + right
	return theme.StatusBar.Width(m.width).Render(bar)
}

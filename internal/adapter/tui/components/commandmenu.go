package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"inferdesk/internal/adapter/tui/theme"
)

// CommandDef defines a slash command offered by the menu.
type CommandDef struct {
	Name        string // e.g. "/help"
	Description string
}

// CommandMenuModel is the popup listing slash commands that match what
// has been typed so far.
type CommandMenuModel struct {
	all      []CommandDef
	matches  []CommandDef
	cursor   int
	maxShown int
	width    int
}

// NewCommandMenu creates a closed menu over commands.
func NewCommandMenu(commands []CommandDef) CommandMenuModel {
	return CommandMenuModel{all: commands, maxShown: 6}
}

// SetWidth updates the popup width.
func (m *CommandMenuModel) SetWidth(w int) { m.width = w }

// Visible reports whether the menu is open.
func (m CommandMenuModel) Visible() bool { return len(m.matches) > 0 }

// Matches returns the commands currently offered.
func (m CommandMenuModel) Matches() []CommandDef { return m.matches }

// Selected returns the highlighted command, or "" when closed.
func (m CommandMenuModel) Selected() string {
	if !m.Visible() {
		return ""
	}
	return m.matches[m.cursor].Name
}

// Filter opens the menu on the commands starting with prefix. An empty
// prefix closes it.
func (m *CommandMenuModel) Filter(prefix string) {
	prefix = strings.ToLower(prefix)
	m.matches = m.matches[:0]
	if prefix == "" {
		m.cursor = 0
		return
	}
	for _, c := range m.all {
		if strings.HasPrefix(strings.ToLower(c.Name), prefix) {
			m.matches = append(m.matches, c)
		}
	}
	if m.cursor >= len(m.matches) {
		m.cursor = 0
	}
}

// Move shifts the highlight by delta, wrapping at both ends.
func (m *CommandMenuModel) Move(delta int) {
	n := len(m.matches)
	if n == 0 {
		return
	}
	m.cursor = ((m.cursor+delta)%n + n) % n
}

// Accept returns the highlighted command and closes the menu.
func (m *CommandMenuModel) Accept() string {
	name := m.Selected()
	m.Hide()
	return name
}

// Hide closes the menu.
func (m *CommandMenuModel) Hide() {
	m.matches = nil
	m.cursor = 0
}

// View renders the popup, or "" when closed.
func (m CommandMenuModel) View() string {
	if !m.Visible() {
		return ""
	}
	shown := m.matches
	if len(shown) > m.maxShown {
		shown = shown[:m.maxShown]
	}

	nameW := 0
	for _, c := range shown {
		nameW = max(nameW, len(c.Name))
	}

	rows := make([]string, 0, len(shown))
	for i, c := range shown {
		marker := "  "
		if i == m.cursor {
			marker = theme.TextInfo.Render(theme.SymbolArrowR + " ")
		}
		name := c.Name + strings.Repeat(" ", nameW-len(c.Name))
		rows = append(rows, marker+name+"  "+theme.TextMuted.Render(c.Description))
	}

	style := theme.BorderActive.Padding(0, 1)
	if m.width > 0 {
		style = style.MaxWidth(m.width)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

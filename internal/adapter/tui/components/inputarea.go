package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"inferdesk/internal/adapter/tui/theme"
)

// InputSubmitMsg is sent when the user submits the input.
type InputSubmitMsg struct {
	Value string
}

// InputAreaModel wraps a textarea with slash-command completion and submit handling.
//
// In chat style Enter submits and the textarea is cleared. In editor style
// (Editor true) Enter inserts a newline, ctrl+s submits and the text stays
// in place so it can be resubmitted or edited.
type InputAreaModel struct {
	Textarea   textarea.Model
	Commands   CommandMenuModel
	Enabled    bool
	Editor     bool
	AllowEmpty bool // submit even when the text is blank
	submit     key.Binding
	width      int
}

// NewInputArea creates a chat-style input area.
func NewInputArea() InputAreaModel {
	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Prompt = theme.InputPrompt
	ta.FocusedStyle.Placeholder = theme.InputPlaceholder
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))
	ta.Focus()

	return InputAreaModel{
		Textarea: ta,
		Enabled:  true,
		submit:   key.NewBinding(key.WithKeys("enter")),
	}
}

// NewEditorArea creates an editor-style input area of the given height.
func NewEditorArea(placeholder string, height int) InputAreaModel {
	m := NewInputArea()
	m.Editor = true
	m.Textarea.Placeholder = placeholder
	m.Textarea.Prompt = "\u2503 "
	m.Textarea.SetHeight(height)
	m.Textarea.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("enter", "ctrl+m"))
	m.submit = key.NewBinding(key.WithKeys("ctrl+s"))
	return m
}

// SetWidth updates the textarea width.
func (m *InputAreaModel) SetWidth(w int) {
	m.width = w
	m.Textarea.SetWidth(w - 2)
	m.Commands.SetWidth(w)
}

// SetEnabled enables or disables input (e.g. while waiting for response).
func (m *InputAreaModel) SetEnabled(enabled bool) {
	m.Enabled = enabled
	if enabled {
		m.Textarea.Focus()
	} else {
		m.Textarea.Blur()
	}
}

// SetValue replaces the input text.
func (m *InputAreaModel) SetValue(s string) {
	m.Textarea.SetValue(s)
}

// Reset clears the input.
func (m *InputAreaModel) Reset() {
	m.Textarea.Reset()
}

// Value returns the current input text.
func (m InputAreaModel) Value() string {
	return m.Textarea.Value()
}

// IsSlashCommand checks if the current input starts with a slash.
func (m InputAreaModel) IsSlashCommand() bool {
	return strings.HasPrefix(strings.TrimSpace(m.Textarea.Value()), "/")
}

// ParseSlashCommand extracts command and args from slash command input.
func ParseSlashCommand(input string) (cmd string, args []string, ok bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return "", nil, false
	}
	parts := strings.Fields(input)
	return strings.ToLower(parts[0]), parts[1:], true
}

// Update handles key events. When the command menu is open,
// Tab and the arrow keys navigate it.
func (m InputAreaModel) Update(msg tea.Msg) (InputAreaModel, tea.Cmd) {
	if !m.Enabled {
		return m, nil
	}
	if _, ok := msg.(tea.MouseMsg); ok {
		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if m.Commands.Visible() {
			switch keyMsg.Type {
			case tea.KeyTab, tea.KeyDown:
				m.Commands.Move(1)
				return m, nil
			case tea.KeyShiftTab, tea.KeyUp:
				m.Commands.Move(-1)
				return m, nil
			case tea.KeyEnter:
				if accepted := m.Commands.Accept(); accepted != "" {
					m.Textarea.SetValue(accepted + " ")
					m.Textarea.CursorEnd()
				}
				return m, nil
			case tea.KeyEsc:
				m.Commands.Hide()
				return m, nil
			}
		}

		if key.Matches(keyMsg, m.submit) {
			value := m.Textarea.Value()
			if strings.TrimSpace(value) == "" && !m.AllowEmpty {
				return m, nil
			}
			if !m.Editor {
				m.Textarea.Reset()
			}
			m.Commands.Hide()
			return m, func() tea.Msg {
				return InputSubmitMsg{Value: value}
			}
		}
	}

	var cmd tea.Cmd
	m.Textarea, cmd = m.Textarea.Update(msg)

	value := m.Textarea.Value()
	if !m.Editor && strings.HasPrefix(value, "/") && !strings.Contains(value, " ") {
		m.Commands.Filter(value)
	} else {
		m.Commands.Hide()
	}

	return m, cmd
}

// View renders the input area with the command menu above it when open.
func (m InputAreaModel) View() string {
	if popup := m.Commands.View(); popup != "" {
		return popup + "\n" + m.Textarea.View()
	}
	return m.Textarea.View()
}

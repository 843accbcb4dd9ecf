package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"inferdesk/internal/adapter/tui/theme"
	"inferdesk/internal/domain"
)

// Labels of the disclosure toggle.
const (
	ReadMoreLabel = "Read more"
	ShowLessLabel = "Show less"
)

// DisclosureViewModel renders a domain.Disclosure in a scrollable,
// word-wrapped viewport with its read more / show less control.
type DisclosureViewModel struct {
	Viewport viewport.Model
	Empty    string // shown when there is no text yet
	state    domain.Disclosure
	ready    bool
	width    int
}

// NewDisclosureView creates an empty disclosure view.
func NewDisclosureView(empty string) DisclosureViewModel {
	return DisclosureViewModel{Empty: empty}
}

// SetSize sets the viewport dimensions.
func (m *DisclosureViewModel) SetSize(w, h int) {
	m.width = w
	if !m.ready {
		m.Viewport = viewport.New(w, h)
		m.Viewport.MouseWheelEnabled = true
		m.ready = true
	} else {
		m.Viewport.Width = w
		m.Viewport.Height = h
	}
	m.refresh()
}

// Set shows d. The viewport returns to the top when the text changed.
func (m *DisclosureViewModel) Set(d domain.Disclosure) {
	changed := d.FullText != m.state.FullText
	m.state = d
	m.refresh()
	if changed && m.ready {
		m.Viewport.GotoTop()
	}
}

// State returns the disclosure currently shown.
func (m DisclosureViewModel) State() domain.Disclosure { return m.state }

// Content returns the wrapped text plus toggle label, without the viewport.
func (m DisclosureViewModel) Content() string {
	if m.state.FullText == "" {
		return theme.TextMuted.Render(m.Empty)
	}
	text := m.state.Render()
	if w := m.width - 2; w > 0 {
		text = wordwrap.String(text, w)
	}
	if label := m.ToggleLabel(); label != "" {
		text += "\n\n" + theme.Toggle.Render(label)
	}
	return text
}

// ToggleLabel returns the control label, or "" when the whole text fits
// in the collapsed rendering.
func (m DisclosureViewModel) ToggleLabel() string {
	if !m.state.Clipped() {
		return ""
	}
	if m.state.Expanded {
		return ShowLessLabel
	}
	return ReadMoreLabel
}

// Update handles viewport scrolling.
func (m DisclosureViewModel) Update(msg tea.Msg) (DisclosureViewModel, tea.Cmd) {
	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

// View renders the viewport.
func (m DisclosureViewModel) View() string {
	if !m.ready {
		return m.Content()
	}
	return m.Viewport.View()
}

func (m *DisclosureViewModel) refresh() {
	if !m.ready {
		return
	}
	m.Viewport.SetContent(strings.TrimRight(m.Content(), "\n"))
}

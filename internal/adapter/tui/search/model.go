package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"inferdesk/internal/adapter/tui/components"
	"inferdesk/internal/adapter/tui/theme"
	"inferdesk/internal/adapter/tui/uxerror"
	"inferdesk/internal/usecase"
)

// Deps are dependencies injected into the search model.
type Deps struct {
	Session      *usecase.SearchSession
	Ctx          context.Context
	Logger       *slog.Logger
	Title        string
	InitialQuery string
	Copy         func(string) error // nil uses the system clipboard
}

// Model is the root Bubble Tea model for paper search.
type Model struct {
	deps    Deps
	session *usecase.SearchSession

	input     components.InputAreaModel
	list      components.PaperListModel
	results   viewport.Model
	statusBar components.StatusBarModel
	spinner   spinner.Model

	waiting  bool
	width    int
	height   int
	quitting bool
}

// New creates the search model.
func New(deps Deps) Model {
	if deps.Ctx == nil {
		deps.Ctx = context.Background()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Copy == nil {
		deps.Copy = clipboard.WriteAll
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorInfo)

	input := components.NewInputArea()
	input.Textarea.Placeholder = "Search papers..."
	input.Textarea.SetHeight(1)
	if deps.InitialQuery != "" {
		input.SetValue(deps.InitialQuery)
	}

	m := Model{
		deps:      deps,
		session:   deps.Session,
		input:     input,
		results:   viewport.New(0, 0),
		statusBar: components.NewStatusBar(),
		spinner:   s,
	}
	m.statusBar.Session = "search"
	m.refreshHints()
	return m
}

// Session returns the bound session.
func (m Model) Session() *usecase.SearchSession { return m.session }

// Waiting reports whether a search is outstanding.
func (m Model) Waiting() bool { return m.waiting }

// Init initializes sub-models.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case components.InputSubmitMsg:
		return m.handleSubmit(msg.Value)

	case ResultMsg:
		m.waiting = false
		m.input.SetEnabled(true)
		if msg.Err != nil {
			m.list.SetPapers(nil)
			m.statusBar.SetError(uxerror.Humanize(msg.Err).Short())
		} else {
			m.list.SetPapers(msg.Papers)
			m.statusBar.SetExtra(fmt.Sprintf("%s %d results for %q", theme.SymbolSuccess, len(msg.Papers), msg.Query))
		}
		m.refreshResults()
		m.results.GotoTop()
		m.refreshHints()
		return m, nil

	case CopiedMsg:
		if msg.Err != nil {
			m.statusBar.SetError("Copy failed: " + msg.Err.Error())
		} else {
			m.statusBar.SetExtra(theme.SymbolSuccess + " Copied " + msg.Link)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the screen.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if m.width == 0 {
		return "  Initializing..."
	}

	parts := []string{theme.Title.Render(m.deps.Title), m.input.View()}
	if m.waiting {
		parts = append(parts, m.spinner.View()+" "+m.statusBar.Extra)
	}
	if banner := m.session.ErrorText(); banner != "" {
		parts = append(parts, theme.Banner.Render(theme.SymbolError+" "+banner))
	}
	parts = append(parts, components.Divider(m.width), m.results.View(), m.statusBar.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) layout() {
	used := 1 + m.input.Textarea.Height() + 1 + 1 + 1 // title, input, banner, divider, status
	m.statusBar.SetWidth(m.width)
	m.input.SetWidth(m.width)
	m.list.SetWidth(m.width)
	m.results.Width = components.ContentWidth(m.width)
	m.results.Height = max(m.height-used, 4)
	m.refreshResults()
}

func (m *Model) refreshResults() {
	m.results.SetContent(m.list.View())
}

// revealCursor scrolls so the selected paper is visible.
func (m *Model) revealCursor() {
	entries := strings.Split(m.list.View(), "\n\n")
	top := 0
	for i := 0; i < m.list.Cursor() && i < len(entries); i++ {
		top += strings.Count(entries[i], "\n") + 2
	}
	bottom := top
	if c := m.list.Cursor(); c < len(entries) {
		bottom += strings.Count(entries[c], "\n")
	}
	switch {
	case top < m.results.YOffset:
		m.results.SetYOffset(top)
	case bottom >= m.results.YOffset+m.results.Height:
		m.results.SetYOffset(bottom - m.results.Height + 1)
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyUp, tea.KeyDown:
		delta := 1
		if msg.Type == tea.KeyUp {
			delta = -1
		}
		m.list.Move(delta)
		m.refreshResults()
		m.revealCursor()
		return m, nil

	case tea.KeyCtrlY:
		if p, ok := m.list.Selected(); ok && p.Link != "" {
			return m, copyCmd(m.deps.Copy, p.Link)
		}
		return m, nil

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	}

	if m.waiting {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleSubmit(value string) (tea.Model, tea.Cmd) {
	query := strings.TrimSpace(value)
	if query == "" {
		m.statusBar.SetError("Please enter a search query.")
		return m, nil
	}
	m.waiting = true
	m.input.SetValue(query)
	m.input.SetEnabled(false)
	m.statusBar.SetExtra(theme.SymbolSpinner + " Searching...")
	m.refreshHints()
	return m, searchCmd(m.deps.Ctx, m.session, query)
}

func (m *Model) refreshHints() {
	action := "Search"
	if m.waiting {
		action = theme.Dim.Render(action)
	}
	hints := []components.KeyHint{{Key: "Enter", Desc: action}}
	if len(m.list.Papers) > 0 {
		hints = append(hints,
			components.KeyHint{Key: "\u2191/\u2193", Desc: "Select"},
			components.KeyHint{Key: "Ctrl+Y", Desc: "Copy link"},
		)
	}
	hints = append(hints, components.KeyHint{Key: "Esc", Desc: "Quit"})
	m.statusBar.Hints = hints
}

package single

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"inferdesk/internal/adapter/tui/components"
	"inferdesk/internal/adapter/tui/theme"
	"inferdesk/internal/adapter/tui/uxerror"
	"inferdesk/internal/domain"
	"inferdesk/internal/usecase"
)

// ExportFunc writes fullText to a document named after hint and returns
// its path.
type ExportFunc func(fullText, hint string) (string, error)

// Deps are dependencies injected into the single-shot model.
type Deps struct {
	Session     *usecase.SingleShotSession
	Ctx         context.Context
	Logger      *slog.Logger
	Title       string
	Placeholder string
	File        *domain.Attachment // attached document for file-based variants
	InitialText string
	Export      ExportFunc         // nil disables export
	Copy        func(string) error // nil uses the system clipboard
}

var actionLabels = map[string]string{
	"humanize":  "Humanize",
	"summarize": "Summarize",
	"review":    "Generate Review",
}

// Model is the root Bubble Tea model for a single-shot session.
type Model struct {
	deps    Deps
	session *usecase.SingleShotSession
	counter components.WordCounter

	input     components.InputAreaModel
	result    components.DisclosureViewModel
	statusBar components.StatusBarModel
	spinner   spinner.Model

	waiting  bool
	pending  string // text of the in-flight draft
	subject  string // text of the draft that produced the current result
	width    int
	height   int
	quitting bool
}

// New creates the single-shot model.
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

	v := deps.Session.Variant()
	height := 6
	if v.RequireFile {
		height = 2
	}
	input := components.NewEditorArea(deps.Placeholder, height)
	// Blank submits reach Prepare so the variant's alert can be shown.
	input.AllowEmpty = v.RequireFile || v.EmptyHint != ""
	if deps.InitialText != "" {
		input.SetValue(deps.InitialText)
	}

	m := Model{
		deps:      deps,
		session:   deps.Session,
		counter:   components.WordCounter{Limit: v.WordLimit},
		input:     input,
		result:    components.NewDisclosureView("Results will appear here."),
		statusBar: components.NewStatusBar(),
		spinner:   s,
	}
	m.statusBar.Session = v.Name
	m.refreshHints()
	return m
}

// Session returns the bound session.
func (m Model) Session() *usecase.SingleShotSession { return m.session }

// Waiting reports whether a request is outstanding.
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

	case SettledMsg:
		return m.handleSettled(msg.Outcome)

	case CopiedMsg:
		if msg.Err != nil {
			m.statusBar.SetError("Copy failed: " + msg.Err.Error())
		} else {
			m.statusBar.SetExtra(fmt.Sprintf("%s Copied %d characters", theme.SymbolSuccess, msg.Chars))
		}
		return m, nil

	case ExportedMsg:
		if msg.Err != nil {
			m.statusBar.SetError(uxerror.Humanize(msg.Err).Short())
			m.deps.Logger.Warn("export failed", "error", msg.Err)
		} else {
			m.statusBar.SetExtra(theme.SymbolSuccess + " Saved " + msg.Path)
			m.deps.Logger.Info("exported", "path", msg.Path)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.result, cmd = m.result.Update(msg)
	return m, cmd
}

// View renders the screen.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if m.width == 0 {
		return "  Initializing..."
	}

	parts := []string{theme.Title.Render(m.deps.Title)}
	if f := m.deps.File; f != nil {
		parts = append(parts, theme.TextMuted.Render(fmt.Sprintf("  File: %s (%d bytes)", f.Name, len(f.Data))))
	}
	parts = append(parts, m.input.View())
	if c := m.counter.View(m.input.Value()); c != "" {
		parts = append(parts, "  "+c)
	}
	if m.waiting {
		parts = append(parts, m.spinner.View()+" "+m.statusBar.Extra)
	}
	if banner := m.session.ErrorText(); banner != "" {
		parts = append(parts, theme.Banner.Render(theme.SymbolError+" "+banner))
	}
	parts = append(parts, components.Divider(m.width), m.result.View(), m.statusBar.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) layout() {
	used := 1 + m.input.Textarea.Height() + 1 + 1 + 1 + 1 // title, editor, counter, banner, divider, status
	if m.deps.File != nil {
		used++
	}
	m.statusBar.SetWidth(m.width)
	m.input.SetWidth(m.width)
	m.result.SetSize(components.ContentWidth(m.width), max(m.height-used, 5))
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyCtrlE:
		if m.session.Disclosure().Clipped() {
			m.session.Toggle()
			m.result.Set(m.session.Disclosure())
			m.refreshHints()
		}
		return m, nil

	case tea.KeyCtrlY:
		if text := m.session.Disclosure().FullText; text != "" {
			return m, copyCmd(m.deps.Copy, text)
		}
		return m, nil

	case tea.KeyCtrlX:
		if m.deps.Export == nil {
			return m, nil
		}
		text := m.session.Disclosure().FullText
		if text == "" {
			m.statusBar.SetError("Nothing to export yet.")
			return m, nil
		}
		m.statusBar.SetExtra(theme.SymbolSpinner + " Exporting...")
		return m, exportCmd(m.deps.Export, text, m.subject)

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.result, cmd = m.result.Update(msg)
		return m, cmd
	}

	if m.waiting {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.refreshHints()
	return m, cmd
}

func (m Model) draft(value string) domain.Draft {
	if m.session.Variant().RequireFile {
		return domain.Draft{File: m.deps.File, Query: value}
	}
	return domain.Draft{Text: value}
}

func (m Model) handleSubmit(value string) (tea.Model, tea.Cmd) {
	d, err := m.session.Prepare(m.draft(value))
	if err != nil {
		hint := m.session.Variant().EmptyHint
		if hint == "" || !(errors.Is(err, domain.ErrEmptyDraft) || errors.Is(err, domain.ErrNoFile)) {
			hint = uxerror.Humanize(err).Short()
		}
		m.statusBar.SetError(hint)
		return m, nil
	}

	m.waiting = true
	m.pending = value
	m.input.SetEnabled(false)
	m.statusBar.SetExtra(theme.SymbolSpinner + " Processing...")
	m.refreshHints()
	return m, dispatchCmd(m.deps.Ctx, d)
}

func (m Model) handleSettled(out usecase.Outcome) (tea.Model, tea.Cmd) {
	m.waiting = false
	m.input.SetEnabled(true)
	m.result.Set(m.session.Disclosure())
	if out.OK() {
		m.subject = m.pending
		m.statusBar.SetExtra(fmt.Sprintf("%s Done in %s", theme.SymbolSuccess, out.Duration.Round(100*time.Millisecond)))
	} else {
		m.statusBar.SetError(uxerror.Humanize(out.Err).Short())
	}
	m.refreshHints()
	return m, nil
}

func (m *Model) refreshHints() {
	v := m.session.Variant()
	action := actionLabels[v.Name]
	if action == "" {
		action = "Submit"
	}
	if m.waiting || !m.session.CanSubmit(m.draft(m.input.Value())) {
		action = theme.Dim.Render(action)
	}
	hints := []components.KeyHint{{Key: "Ctrl+S", Desc: action}}
	d := m.session.Disclosure()
	if d.Clipped() {
		label := components.ReadMoreLabel
		if d.Expanded {
			label = components.ShowLessLabel
		}
		hints = append(hints, components.KeyHint{Key: "Ctrl+E", Desc: label})
	}
	if d.FullText != "" {
		hints = append(hints, components.KeyHint{Key: "Ctrl+Y", Desc: "Copy"})
		if m.deps.Export != nil {
			hints = append(hints, components.KeyHint{Key: "Ctrl+X", Desc: "Export PDF"})
		}
	}
	hints = append(hints, components.KeyHint{Key: "Ctrl+C", Desc: "Quit"})
	m.statusBar.Hints = hints
}

package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"inferdesk/internal/adapter/tui/components"
	"inferdesk/internal/adapter/tui/theme"
	"inferdesk/internal/adapter/tui/uxerror"
	"inferdesk/internal/domain"
	"inferdesk/internal/usecase"
)

// ChatModelDeps are dependencies injected into the chat model.
type ChatModelDeps struct {
	// NewSession builds a fresh session. It is called once at startup and
	// again for /new.
	NewSession func() *usecase.ChatSession
	Ctx        context.Context
	Logger     *slog.Logger
	Title      string
	Mode       domain.CodeMode // initial mode when the session's variant needs one
	Stream     StreamConfig    // zero value renders replies instantly
	Markdown   bool
}

// revealQueue hands scroll requests from the session's synchronizer to
// the model. It is shared by every copy of the model.
type revealQueue struct {
	mu  sync.Mutex
	idx int
	set bool
}

func (q *revealQueue) push(i int) {
	q.mu.Lock()
	q.idx, q.set = i, true
	q.mu.Unlock()
}

func (q *revealQueue) take() (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	i, ok := q.idx, q.set
	q.set = false
	return i, ok
}

// ChatModel is the root Bubble Tea model for a chat session.
type ChatModel struct {
	deps    ChatModelDeps
	session *usecase.ChatSession
	reveal  *revealQueue

	chatView  components.ChatViewModel
	input     components.InputAreaModel
	statusBar components.StatusBarModel
	spinner   spinner.Model

	// logToView maps a log index to the chat view index of its message.
	logToView []int

	waiting   bool
	streaming bool
	streamBuf []rune
	streamPos int
	streamCfg StreamConfig
	lastErr   error
	mode      domain.CodeMode
	width     int
	height    int
	quitting  bool

	// gen is bumped whenever the session is replaced; settlements carrying
	// an older gen are dropped.
	gen uint64
}

// NewChatModel creates the chat model and its first session.
func NewChatModel(deps ChatModelDeps) ChatModel {
	if deps.Ctx == nil {
		deps.Ctx = context.Background()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorInfo)

	chatView := components.NewChatView()
	chatView.Messages.Markdown = deps.Markdown

	input := components.NewInputArea()
	input.Commands = components.NewCommandMenu(slashCommands)

	m := ChatModel{
		deps:      deps,
		reveal:    &revealQueue{},
		chatView:  chatView,
		input:     input,
		statusBar: components.NewStatusBar(),
		spinner:   s,
		streamCfg: deps.Stream,
		gen:       1,
	}
	m.bind(deps.NewSession())
	if m.needsMode() {
		m.mode = deps.Mode
		if !m.mode.Valid() {
			m.mode = domain.CodeModeDebug
		}
	}
	m.statusBar.Session = m.session.Variant().Name
	m.refreshHints()
	return m
}

var slashCommands = []components.CommandDef{
	{Name: "/help", Description: "Show available commands"},
	{Name: "/new", Description: "Start a fresh conversation"},
	{Name: "/mode", Description: "Set the code assistant mode"},
	{Name: "/speed", Description: "Cycle reply speed"},
	{Name: "/status", Description: "Show session status"},
	{Name: "/quit", Description: "Exit inferdesk"},
}

// bind attaches s to the model and shows its mount-time messages.
func (m *ChatModel) bind(s *usecase.ChatSession) {
	m.session = s
	q := m.reveal
	s.Scroll().SetTarget(usecase.ScrollerFunc(func(i int, _ bool) { q.push(i) }))
	m.logToView = nil
	m.syncLog(false)
}

// Session returns the session the view is bound to.
func (m ChatModel) Session() *usecase.ChatSession { return m.session }

// Waiting reports whether a request is outstanding or still streaming.
func (m ChatModel) Waiting() bool { return m.waiting }

// Mode returns the code assistant mode sent with the next message.
func (m ChatModel) Mode() domain.CodeMode { return m.mode }

// ChatView exposes the message viewport.
func (m ChatModel) ChatView() components.ChatViewModel { return m.chatView }

// Init initializes sub-models.
func (m ChatModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles all incoming messages.
func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

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
		if msg.Gen != m.gen {
			return m, nil
		}
		return m.handleSettled(msg.Outcome)

	case StreamTickMsg:
		return m.handleStreamTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !m.waiting {
		if _, isMouse := msg.(tea.MouseMsg); !isMouse {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var cmd tea.Cmd
	m.chatView, cmd = m.chatView.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the entire chat UI.
func (m ChatModel) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if m.width == 0 {
		return "  Initializing..."
	}

	inputView := m.input.View()
	if m.waiting {
		inputView = lipgloss.NewStyle().Faint(true).Render("> waiting for response...") +
			"\n" + m.spinner.View() + " " + m.statusBar.Extra
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render(m.deps.Title),
		m.chatView.View(),
		components.Divider(m.width),
		inputView,
		m.statusBar.View(),
	)
}

func (m *ChatModel) layout() {
	const titleH, inputH, statusH, dividerH = 1, 3, 1, 1
	contentH := m.height - titleH - inputH - statusH - dividerH
	if contentH < 5 {
		contentH = 5
	}
	m.statusBar.SetWidth(m.width)
	m.chatView.SetSize(m.width, contentH)
	m.input.SetWidth(m.width)
}

func (m ChatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyTab:
		if m.needsMode() && !m.input.Commands.Visible() && !m.waiting {
			m.mode = m.mode.Next()
			m.refreshHints()
			return m, nil
		}

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd
	}

	if m.waiting {
		// Input is locked; arrow keys scroll the conversation instead.
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleSubmit admits the draft, shows the user's message and starts the
// request.
func (m ChatModel) handleSubmit(value string) (tea.Model, tea.Cmd) {
	if cmd, args, ok := components.ParseSlashCommand(value); ok {
		return m.handleSlashCommand(cmd, args)
	}

	d, err := m.session.Prepare(domain.Draft{Text: value, Mode: m.mode})
	if err != nil {
		m.statusBar.SetError(uxerror.Humanize(err).Short())
		return m, nil
	}

	m.syncLog(false)
	m.applyReveal()

	m.waiting = true
	m.streaming = false
	m.lastErr = nil
	m.input.SetEnabled(false)
	m.statusBar.SetExtra(theme.SymbolSpinner + " Thinking...")
	m.statusBar.Hints = waitingHints()

	return m, dispatchCmd(m.deps.Ctx, d, m.gen)
}

// handleSettled integrates the assistant's message, streaming it in when
// a stream speed is set.
func (m ChatModel) handleSettled(out usecase.Outcome) (tea.Model, tea.Cmd) {
	m.lastErr = out.Err
	if cmd := m.syncLog(m.streamCfg.Speed != StreamInstant); cmd != nil {
		return m, cmd
	}
	m.finishResponse()
	return m, nil
}

func (m ChatModel) handleStreamTick() (tea.Model, tea.Cmd) {
	if !m.streaming {
		return m, nil
	}

	end := m.streamPos + m.streamCfg.ChunkSize
	if end >= len(m.streamBuf) {
		end = len(m.streamBuf)
	}
	m.streamPos = end
	m.chatView.UpdateLastMessage(string(m.streamBuf[:m.streamPos]))

	if m.streamPos >= len(m.streamBuf) {
		m.finishResponse()
		return m, nil
	}
	return m, streamTickCmd(m.streamCfg.TickRate)
}

// syncLog copies log entries the view has not shown yet. With stream set,
// a trailing assistant message is added empty and revealed by ticks; the
// returned Cmd starts them.
func (m *ChatModel) syncLog(stream bool) tea.Cmd {
	msgs := m.session.Messages()
	var cmd tea.Cmd
	for i := len(m.logToView); i < len(msgs); i++ {
		cm := components.FromDomain(msgs[i])
		last := i == len(msgs)-1
		if stream && last && msgs[i].Sender == domain.SenderAssistant && msgs[i].Text != "" {
			m.streamBuf = []rune(cm.Content)
			m.streamPos = 0
			m.streaming = true
			cm.Content = ""
			cmd = streamTickCmd(m.streamCfg.TickRate)
		}
		m.chatView.AddMessage(cm)
		m.logToView = append(m.logToView, m.chatView.Messages.Len()-1)
	}
	return cmd
}

// applyReveal scrolls to the message the synchronizer asked for, if any.
func (m *ChatModel) applyReveal() {
	i, ok := m.reveal.take()
	if !ok || i >= len(m.logToView) {
		return
	}
	m.chatView.ScrollToMessage(m.logToView[i])
}

func (m *ChatModel) finishResponse() {
	m.streaming = false
	m.waiting = false
	m.input.SetEnabled(true)
	m.refreshHints()
	if m.lastErr != nil {
		m.statusBar.SetError(theme.SymbolError + " " + uxerror.Humanize(m.lastErr).Short())
		return
	}
	m.statusBar.Clear()
}

func (m ChatModel) handleSlashCommand(cmd string, args []string) (tea.Model, tea.Cmd) {
	switch cmd {
	case "/help":
		m.note(helpText)
		return m, nil

	case "/quit", "/exit":
		m.quitting = true
		return m, tea.Quit

	case "/new":
		m.gen++
		m.chatView.Clear()
		m.bind(m.deps.NewSession())
		m.lastErr = nil
		m.finishResponse()
		m.deps.Logger.Info("chat session replaced", "session", m.session.Variant().Name)
		return m, nil

	case "/mode":
		if !m.needsMode() {
			m.note("This session has no modes.")
			return m, nil
		}
		if len(args) == 0 {
			m.note(fmt.Sprintf("Mode: %s (Tab cycles debug, complete, explain)", m.mode))
			return m, nil
		}
		mode, err := domain.ParseCodeMode(args[0])
		if err != nil {
			m.statusBar.SetError(uxerror.Humanize(err).Short())
			return m, nil
		}
		m.mode = mode
		m.refreshHints()
		return m, nil

	case "/speed":
		m.streamCfg = StreamConfigForSpeed(CycleStreamSpeed(m.streamCfg.Speed))
		m.note(fmt.Sprintf("Reply speed: %s", m.streamCfg.Speed))
		return m, nil

	case "/status":
		st := m.session.State()
		line := fmt.Sprintf("Status: %s %s Messages: %d", st.Status, theme.SymbolBullet, m.session.Log().Len())
		if st.LastError != "" {
			line += fmt.Sprintf(" %s Last error: %s", theme.SymbolBullet, st.LastError)
		}
		m.note(line)
		return m, nil

	default:
		m.note(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
		return m, nil
	}
}

// note shows a view-only system line. It never enters the session log.
func (m *ChatModel) note(text string) {
	m.chatView.AddMessage(components.ChatMessage{Role: components.RoleSystem, Content: text})
}

func (m ChatModel) needsMode() bool {
	return m.session.Variant().RequireMode
}

func (m *ChatModel) refreshHints() {
	send := "Send"
	m.statusBar.Detail = ""
	if m.needsMode() {
		send = m.mode.Label()
		m.statusBar.Detail = string(m.mode)
	}
	m.statusBar.Hints = []components.KeyHint{
		{Key: "Enter", Desc: send},
		{Key: "Alt+Enter", Desc: "Newline"},
	}
	if m.needsMode() {
		m.statusBar.Hints = append(m.statusBar.Hints, components.KeyHint{Key: "Tab", Desc: "Mode"})
	}
	m.statusBar.Hints = append(m.statusBar.Hints,
		components.KeyHint{Key: "?", Desc: "/help"},
		components.KeyHint{Key: "Ctrl+C", Desc: "Quit"},
	)
}

func waitingHints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "PgUp/PgDn", Desc: "Scroll"},
		{Key: "Ctrl+C", Desc: "Quit"},
	}
}

const helpText = `Available commands:
  /help      - Show this help
  /new       - Start a fresh conversation
  /mode M    - Set code mode (debug, complete, explain)
  /speed     - Cycle reply speed (normal/fast/instant)
  /status    - Show session status
  /quit      - Exit inferdesk

Keybindings:
  Enter      - Send message
  Alt+Enter  - New line
  Tab        - Cycle code mode
  PgUp/PgDn  - Scroll conversation
  Ctrl+C     - Quit`

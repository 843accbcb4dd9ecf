package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inferdesk/internal/domain"
)

func TestMessageList_LineOffsets(t *testing.T) {
	ml := NewMessageList()
	ml.Markdown = false
	ml.SetWidth(80)
	ml.Add(ChatMessage{Role: RoleAssistant, Content: "one\ntwo"})
	ml.Add(ChatMessage{Role: RoleUser, Content: "hello"})
	ml.Add(ChatMessage{Role: RoleAssistant, Content: "Hi!"})

	out := ml.View()
	lines := strings.Split(out, "\n")

	for i, want := range []string{"one", "hello", "Hi!"} {
		off, ok := ml.LineOffset(i)
		require.True(t, ok, "offset %d", i)
		require.Less(t, off, len(lines))
		// The user message renders inline with its header; assistant bodies follow it.
		block := strings.Join(lines[off:min(off+2, len(lines))], "\n")
		assert.Contains(t, block, want, "message %d", i)
	}

	_, ok := ml.LineOffset(3)
	assert.False(t, ok)
}

func TestMessageList_UpdateLastInvalidatesRender(t *testing.T) {
	ml := NewMessageList()
	ml.Markdown = false
	ml.SetWidth(80)
	ml.Add(ChatMessage{Role: RoleAssistant})
	_ = ml.View()
	ml.UpdateLast("partial")
	assert.Contains(t, ml.View(), "partial")
	ml.UpdateLast("partial and more")
	assert.Contains(t, ml.View(), "partial and more")
}

func TestFromDomain(t *testing.T) {
	m := domain.NewMessage(domain.SenderUser, "hello")
	cm := FromDomain(m)
	assert.Equal(t, RoleUser, cm.Role)
	assert.Equal(t, "hello", cm.Content)
	assert.Equal(t, m.Timestamp, cm.Timestamp)
	assert.Equal(t, RoleAssistant, RoleFor(domain.SenderAssistant))
}

func TestChatView_ScrollToMessage(t *testing.T) {
	cv := NewChatView()
	cv.Messages.Markdown = false

	// Before the first WindowSizeMsg the request is remembered.
	cv.ScrollToMessage(0)
	for i := 0; i < 30; i++ {
		cv.AddMessage(ChatMessage{Role: RoleUser, Content: "line"})
	}
	cv.SetSize(80, 5)
	assert.Equal(t, 0, cv.Viewport.YOffset)

	cv.ScrollToMessage(10)
	off, _ := cv.Messages.LineOffset(10)
	assert.Equal(t, off, cv.Viewport.YOffset)

	// Appends never move the viewport.
	cv.AddMessage(ChatMessage{Role: RoleAssistant, Content: "reply"})
	assert.Equal(t, off, cv.Viewport.YOffset)
}

func TestCommandMenu(t *testing.T) {
	m := NewCommandMenu([]CommandDef{
		{Name: "/help", Description: "Show help"},
		{Name: "/speed", Description: "Cycle speed"},
		{Name: "/status", Description: "Show status"},
	})
	assert.False(t, m.Visible())

	m.Filter("/s")
	require.True(t, m.Visible())
	assert.Len(t, m.Matches(), 2)
	assert.Equal(t, "/speed", m.Selected())

	m.Move(1)
	assert.Equal(t, "/status", m.Selected())
	m.Move(1)
	assert.Equal(t, "/speed", m.Selected(), "wraps forward")
	m.Move(-1)
	assert.Equal(t, "/status", m.Selected(), "wraps backward")

	assert.Contains(t, m.View(), "Cycle speed")
	assert.Equal(t, "/status", m.Accept())
	assert.False(t, m.Visible())
	assert.Empty(t, m.View())

	m.Filter("/zzz")
	assert.False(t, m.Visible())
}

func TestInputArea_ChatSubmit(t *testing.T) {
	in := NewInputArea()
	in.SetValue("hello")

	in, cmd := in.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, InputSubmitMsg{Value: "hello"}, cmd())
	assert.Empty(t, in.Value(), "chat input clears on submit")
}

func TestInputArea_BlankNotSubmitted(t *testing.T) {
	in := NewInputArea()
	in.SetValue("   ")
	_, cmd := in.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		_, isSubmit := cmd().(InputSubmitMsg)
		assert.False(t, isSubmit)
	}
}

func TestInputArea_EditorSubmit(t *testing.T) {
	in := NewEditorArea("Paste text", 6)
	in.SetValue("keep me")

	in, cmd := in.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	assert.Equal(t, InputSubmitMsg{Value: "keep me"}, cmd())
	assert.Equal(t, "keep me", in.Value(), "editor keeps its text")
}

func TestInputArea_AllowEmpty(t *testing.T) {
	in := NewEditorArea("Optional query", 2)
	in.AllowEmpty = true
	_, cmd := in.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	assert.Equal(t, InputSubmitMsg{Value: ""}, cmd())
}

func TestInputArea_DisabledIgnoresKeys(t *testing.T) {
	in := NewInputArea()
	in.SetValue("hello")
	in.SetEnabled(false)
	_, cmd := in.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestParseSlashCommand(t *testing.T) {
	cmd, args, ok := ParseSlashCommand("  /Speed fast ")
	assert.True(t, ok)
	assert.Equal(t, "/speed", cmd)
	assert.Equal(t, []string{"fast"}, args)

	_, _, ok = ParseSlashCommand("hello")
	assert.False(t, ok)
}

func TestDisclosureView_Labels(t *testing.T) {
	dv := NewDisclosureView("Nothing yet.")
	assert.Contains(t, dv.Content(), "Nothing yet.")
	assert.Empty(t, dv.ToggleLabel())

	d := domain.NewDisclosure(10)
	d.Replace("short")
	dv.Set(d)
	assert.Empty(t, dv.ToggleLabel(), "no control when nothing is hidden")

	d.Replace(strings.Repeat("x", 25))
	dv.Set(d)
	assert.Equal(t, ReadMoreLabel, dv.ToggleLabel())
	assert.Contains(t, dv.Content(), strings.Repeat("x", 10)+domain.Ellipsis)

	d.Toggle()
	dv.Set(d)
	assert.Equal(t, ShowLessLabel, dv.ToggleLabel())
	assert.Contains(t, dv.Content(), strings.Repeat("x", 25))
}

func TestDisclosureView_Wraps(t *testing.T) {
	dv := NewDisclosureView("")
	dv.SetSize(22, 10)
	d := domain.NewDisclosure(800)
	d.Replace("alpha beta gamma delta epsilon zeta eta theta")
	dv.Set(d)
	for _, line := range strings.Split(dv.Content(), "\n") {
		assert.LessOrEqual(t, len(line), 20, "line %q", line)
	}
}

func TestWordCounter(t *testing.T) {
	c := WordCounter{Limit: 3}
	assert.Equal(t, "2 / 3", c.Text("one two"))
	assert.Equal(t, "3 / 3", c.Text(" one  two three "))
	assert.Equal(t, "4 / 3 "+LimitExceededLabel, c.Text("a b c d"))
	assert.Empty(t, WordCounter{}.View("a b"))
}

func TestPaperList(t *testing.T) {
	var pl PaperListModel
	assert.Contains(t, pl.View(), "No papers yet")
	_, ok := pl.Selected()
	assert.False(t, ok)

	pl.SetPapers([]domain.Paper{
		{Title: "Attention", Authors: []string{"Vaswani"}, Year: 2017, Link: "https://arxiv.org/abs/1706.03762"},
		{Title: "", Authors: []string{"Unknown"}},
	})
	pl.Move(5)
	assert.Equal(t, 1, pl.Cursor())
	pl.Move(-5)
	assert.Equal(t, 0, pl.Cursor())

	view := pl.View()
	assert.Contains(t, view, "Attention")
	assert.Contains(t, view, "(untitled)")
	assert.Contains(t, view, "n.d.")

	assert.Equal(t, "Attention\n   Vaswani (2017)\n   https://arxiv.org/abs/1706.03762", FormatPaper(pl.Papers[0]))
}

//go:build integration
// +build integration

package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"inferdesk/internal/domain"
	"inferdesk/internal/usecase"
)

func TestE2E_GenerateChat(t *testing.T) {
	SkipIfShort(t)
	cfg := LoadConfig()
	SkipIfNoService(t, cfg)

	ctx := NewTestContext(t, cfg.TestTimeout)
	session := usecase.NewChatSession(usecase.GenerateVariant(NewService(t, cfg)), usecase.SessionConfig{})

	out, err := session.Submit(ctx, domain.Draft{Text: "In one sentence, what is a literature review?"})
	if err != nil {
		t.Fatalf("Submit rejected: %v", err)
	}
	if !out.OK() {
		t.Fatalf("Request failed: %v", out.Err)
	}

	msgs := session.Messages()
	if len(msgs) != 3 {
		t.Fatalf("Expected welcome, user and reply, got %d messages", len(msgs))
	}
	if msgs[2].Sender != domain.SenderAssistant || msgs[2].Text == "" {
		t.Errorf("Unexpected reply: %+v", msgs[2])
	}
	if got := session.Scroll().Count(); got != 1 {
		t.Errorf("Scroll count = %d, want 1", got)
	}
	t.Logf("Reply in %s: %s", out.Duration, msgs[2].Text)
}

func TestE2E_CodeModes(t *testing.T) {
	SkipIfShort(t)
	cfg := LoadConfig()
	SkipIfNoService(t, cfg)
	if cfg.SkipSlow {
		t.Skip("Skipping slow test")
	}

	ctx := NewTestContext(t, cfg.TestTimeout)
	session := usecase.NewChatSession(usecase.CodeVariant(NewService(t, cfg)), usecase.SessionConfig{})

	for _, mode := range []domain.CodeMode{domain.CodeModeDebug, domain.CodeModeComplete, domain.CodeModeExplain} {
		out, err := session.Submit(ctx, domain.Draft{Text: "def add(a, b): return a - b", Mode: mode})
		if err != nil {
			t.Fatalf("%s: submit rejected: %v", mode, err)
		}
		if !out.OK() {
			t.Errorf("%s: request failed: %v", mode, out.Err)
		}
	}
	if got := len(session.Messages()); got != 7 {
		t.Errorf("Expected 7 messages after three turns, got %d", got)
	}
}

func TestE2E_HumanizeSingleShot(t *testing.T) {
	SkipIfShort(t)
	cfg := LoadConfig()
	SkipIfNoService(t, cfg)

	ctx := NewTestContext(t, cfg.TestTimeout)
	session := usecase.NewSingleShotSession(usecase.HumanizeVariant(NewService(t, cfg), 0), usecase.SessionConfig{})

	out, err := session.Submit(ctx, domain.Draft{Text: "The utilization of the methodology facilitated the enhancement of outcomes."})
	if err != nil {
		t.Fatalf("Submit rejected: %v", err)
	}
	if !out.OK() {
		t.Fatalf("Request failed: %v (banner %q)", out.Err, session.ErrorText())
	}
	if session.Disclosure().FullText == "" {
		t.Error("Disclosure is empty after a successful request")
	}
}

func TestE2E_SummarizePDF(t *testing.T) {
	SkipIfShort(t)
	cfg := LoadConfig()
	SkipIfNoService(t, cfg)
	if cfg.SamplePDF == "" {
		t.Skip("Skipping: INFERDESK_IT_PDF not set")
	}

	data, err := os.ReadFile(cfg.SamplePDF)
	if err != nil {
		t.Fatalf("Read sample PDF: %v", err)
	}
	ctx := NewTestContext(t, cfg.TestTimeout)
	session := usecase.NewSingleShotSession(usecase.SummarizeVariant(NewService(t, cfg)), usecase.SessionConfig{})

	file := &domain.Attachment{Name: filepath.Base(cfg.SamplePDF), Data: data}
	out, err := session.Submit(ctx, domain.Draft{File: file})
	if err != nil {
		t.Fatalf("Submit rejected: %v", err)
	}
	if !out.OK() {
		t.Fatalf("Request failed: %v", out.Err)
	}
	t.Logf("Summary (%d chars, clipped=%v)", len(session.Disclosure().FullText), session.Disclosure().Clipped())
}

func TestE2E_Search(t *testing.T) {
	SkipIfShort(t)
	cfg := LoadConfig()
	SkipIfNoService(t, cfg)

	ctx := NewTestContext(t, cfg.TestTimeout)
	session := usecase.NewSearchSession(NewService(t, cfg), usecase.SessionConfig{})

	papers, err := session.Search(ctx, "graph neural networks")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for _, p := range papers {
		if len(p.Authors) == 0 {
			t.Errorf("Paper %q has no authors after normalization", p.Title)
		}
		if p.Link != "" && !strings.HasPrefix(p.Link, "http") {
			t.Errorf("Paper %q has odd link %q", p.Title, p.Link)
		}
	}
	t.Logf("Search returned %d papers", len(papers))
}

package logger

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"inferdesk/internal/infra/config"
)

func TestNewJSONLoggerToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	log, closer, err := New(config.LoggerConfig{Level: "info", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	log.Info("dispatch settled", "seq", 1)
	log.Debug("hidden")
	if err := closer(); err != nil {
		t.Fatalf("closer: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1 (debug filtered): %q", len(lines), data)
	}
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("invalid JSON: %v, output: %s", err, lines[0])
	}
	if entry["msg"] != "dispatch settled" {
		t.Errorf("msg = %q, want %q", entry["msg"], "dispatch settled")
	}
	if entry["app"] != "inferdesk" {
		t.Errorf("app = %v, want inferdesk", entry["app"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestOpenOutputStreams(t *testing.T) {
	tests := []struct {
		output string
		want   io.Writer
	}{
		{"stdout", os.Stdout},
		{"stderr", os.Stderr},
		{"", os.Stderr},
		{"discard", io.Discard},
	}
	for _, tt := range tests {
		w, closer, err := openOutput(tt.output)
		if err != nil {
			t.Fatalf("openOutput(%q): %v", tt.output, err)
		}
		if w != tt.want {
			t.Errorf("openOutput(%q) returned unexpected writer", tt.output)
		}
		closer()
	}
}

func TestOpenOutputBadPath(t *testing.T) {
	if _, _, err := openOutput(filepath.Join(t.TempDir(), "missing", "dir", "x.log")); err == nil {
		t.Error("expected error for unwritable path")
	}
}

func TestForTUI(t *testing.T) {
	for _, out := range []string{"", "stdout", "STDERR"} {
		got := ForTUI(config.LoggerConfig{Output: out, Level: "debug"})
		if got.Output != TUILogFile {
			t.Errorf("ForTUI(%q).Output = %q, want %q", out, got.Output, TUILogFile)
		}
		if got.Level != "debug" {
			t.Errorf("ForTUI changed level to %q", got.Level)
		}
	}
	if got := ForTUI(config.LoggerConfig{Output: "/var/log/x.log"}); got.Output != "/var/log/x.log" {
		t.Errorf("file output should be kept, got %q", got.Output)
	}
}

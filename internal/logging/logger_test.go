package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLogErrorIncludesError(t *testing.T) {
	var buf bytes.Buffer
	l := NewText(&buf, slog.LevelDebug).With("session_id", "abc")

	l.LogError(errors.New("boom"), "streak update failed", "question_id", "q1")

	out := buf.String()
	for _, want := range []string{"streak update failed", "error=boom", "session_id=abc", "question_id=q1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewText(&buf, slog.LevelWarn)

	l.Info("hidden")
	l.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn line should be written")
	}
}

func TestOpenFileCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "studyhall.log")
	l, closer, err := OpenFile(path, slog.LevelInfo)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer closer.Close()

	l.Info("hello")
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Error("nothing to see")
	if l.Slog() == nil {
		t.Fatal("expected underlying slog logger")
	}
}

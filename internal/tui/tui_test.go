package tui

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tessro/broadcast/internal/script"
)

func newTestModel(t *testing.T, opts Options) Model {
	t.Helper()
	r := script.NewRunner(&script.Script{Name: "repl"},
		script.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	m := New(r, opts)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return updated.(Model)
}

func logContains(m Model, substr string) bool {
	for _, line := range m.Lines() {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func TestModel_Execute(t *testing.T) {
	m := newTestModel(t, Options{})

	for _, line := range []string{"on save audit", "once save,close cleanup", "trigger save 1 two"} {
		if m.Execute(line) {
			t.Fatalf("Execute(%q) requested quit", line)
		}
	}

	r := m.runner
	if got := r.Calls("audit"); got != 1 {
		t.Errorf("audit calls = %d, want 1", got)
	}
	if got := r.Calls("cleanup"); got != 1 {
		t.Errorf("cleanup calls = %d, want 1", got)
	}
	if r.Object().Has("close") {
		t.Error("once listener should be removed from close after firing on save")
	}
	if !logContains(m, "audit") {
		t.Errorf("log missing audit call: %q", m.Lines())
	}
	if m.help.Error() != "" {
		t.Errorf("unexpected error: %s", m.help.Error())
	}
}

func TestModel_ExecuteErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"unknown command", "shout save"},
		{"missing names", "on"},
		{"empty trigger name", "trigger"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, Options{})
			if m.Execute(tt.line) {
				t.Fatal("Execute requested quit")
			}
			if m.help.Error() == "" {
				t.Errorf("Execute(%q) should set an error", tt.line)
			}
		})
	}
}

func TestModel_Builtins(t *testing.T) {
	m := newTestModel(t, Options{})

	m.Execute("events")
	if !logContains(m, "no events registered") {
		t.Errorf("events output missing: %q", m.Lines())
	}

	m.Execute("on save audit")
	m.Execute("events")
	if !logContains(m, "save: l-") {
		t.Errorf("events should list save listener: %q", m.Lines())
	}

	m.Execute("set color=blue")
	m.Execute("props")
	if !logContains(m, `color = "blue"`) {
		t.Errorf("props output missing: %q", m.Lines())
	}

	m.Execute("help")
	if !logContains(m, "trigger <event> [arg...]") {
		t.Errorf("help output missing: %q", m.Lines())
	}

	m.Execute("clear")
	if len(m.Lines()) != 0 {
		t.Errorf("clear left %d lines", len(m.Lines()))
	}

	if !m.Execute("quit") {
		t.Error("quit should request exit")
	}
	if m.View() != "" {
		t.Error("View after quit should be empty")
	}
}

func TestModel_SubmitAndHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repl_history")
	m := newTestModel(t, Options{HistoryPath: path})

	m.input.SetValue("on ping pong")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}
	if !m.runner.Object().Has("ping") {
		t.Error("submitted command was not executed")
	}

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("esc should return a quit command")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("history not saved: %v", err)
	}
	if !strings.Contains(string(data), "on ping pong") {
		t.Errorf("history = %q", data)
	}
}

func TestModel_PreloadedEntriesFlushOnResize(t *testing.T) {
	r := script.NewRunner(nil, script.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err := r.Exec(script.Step{Op: script.OpOn, On: script.Names{"boot"}, Handler: "init"}); err != nil {
		t.Fatal(err)
	}
	m := New(r, Options{})
	if len(m.Lines()) != 0 {
		t.Fatal("entries should wait for the first resize")
	}
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	m = updated.(Model)
	if !logContains(m, "boot") {
		t.Errorf("preloaded entry missing: %q", m.Lines())
	}
}

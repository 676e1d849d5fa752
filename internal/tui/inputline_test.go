package tui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInputLine_AddToHistory(t *testing.T) {
	il := NewInputLine(0)

	il.AddToHistory("")
	if len(il.history) != 0 {
		t.Error("empty string should not be added to history")
	}

	il.AddToHistory("on save audit")
	il.AddToHistory("trigger save")
	il.AddToHistory("trigger save")
	il.AddToHistory("off save")
	il.AddToHistory("trigger save")

	want := []string{"on save audit", "trigger save", "off save", "trigger save"}
	if diff := cmp.Diff(want, il.History()); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestInputLine_AddToHistory_MaxSize(t *testing.T) {
	il := NewInputLine(5)

	for i := 0; i < 12; i++ {
		il.AddToHistory(string(rune('a' + i)))
	}

	want := []string{"h", "i", "j", "k", "l"}
	if diff := cmp.Diff(want, il.History()); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestInputLine_HistoryNavigation(t *testing.T) {
	il := NewInputLine(0)

	if il.HistoryUp() {
		t.Error("HistoryUp should return false with empty history")
	}
	if il.HistoryDown() {
		t.Error("HistoryDown should return false with empty history")
	}

	il.AddToHistory("first")
	il.AddToHistory("second")
	il.AddToHistory("third")
	il.SetValue("current")

	steps := []struct {
		up      bool
		changed bool
		want    string
	}{
		{up: true, changed: true, want: "third"},
		{up: true, changed: true, want: "second"},
		{up: true, changed: true, want: "first"},
		{up: true, changed: false, want: "first"},
		{up: false, changed: true, want: "second"},
		{up: false, changed: true, want: "third"},
		{up: false, changed: true, want: "current"},
		{up: false, changed: false, want: "current"},
	}
	for i, s := range steps {
		var changed bool
		if s.up {
			changed = il.HistoryUp()
		} else {
			changed = il.HistoryDown()
		}
		if changed != s.changed {
			t.Errorf("step %d: changed = %v, want %v", i, changed, s.changed)
		}
		if got := il.Value(); got != s.want {
			t.Errorf("step %d: value = %q, want %q", i, got, s.want)
		}
	}
}

func TestInputLine_HistoryPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "repl_history")

	il := NewInputLine(0)
	if err := il.LoadHistory(path); err != nil {
		t.Fatalf("LoadHistory on missing file: %v", err)
	}
	il.AddToHistory("on a h")
	il.AddToHistory("trigger a 1")
	if err := il.SaveHistory(path); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "on a h\ntrigger a 1\n" {
		t.Errorf("file = %q", data)
	}

	loaded := NewInputLine(1)
	if err := loaded.LoadHistory(path); err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if diff := cmp.Diff([]string{"trigger a 1"}, loaded.History()); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// defaultHistorySize limits the number of entries stored in history.
const defaultHistorySize = 100

// InputLine is the command prompt of the REPL.
type InputLine struct {
	width int
	input textinput.Model

	// Input history for up/down navigation
	history      []string
	historyIndex int    // -1 means not browsing history; 0+ is index into history
	savedInput   string // Saved current input when browsing history
	maxHistory   int
}

// NewInputLine creates a focused input line keeping at most maxHistory entries.
func NewInputLine(maxHistory int) InputLine {
	if maxHistory <= 0 {
		maxHistory = defaultHistorySize
	}
	ti := textinput.New()
	ti.Placeholder = "on save audit · trigger save 1 two · help"
	ti.Prompt = "> "
	ti.CharLimit = 1024
	ti.Focus()
	return InputLine{
		input:        ti,
		historyIndex: -1,
		maxHistory:   maxHistory,
	}
}

// SetWidth updates the component width.
func (i *InputLine) SetWidth(width int) {
	i.width = width
	i.input.Width = max(width-4, 1) // Account for padding (2) and prompt (2)
}

// Update handles input events and returns a command.
func (i *InputLine) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	i.input, cmd = i.input.Update(msg)
	return cmd
}

// Value returns the current input value.
func (i *InputLine) Value() string {
	return i.input.Value()
}

// SetValue replaces the input value.
func (i *InputLine) SetValue(s string) {
	i.input.SetValue(s)
	i.input.CursorEnd()
}

// Clear resets the input value.
func (i *InputLine) Clear() {
	i.input.SetValue("")
}

// View renders the input line.
func (i InputLine) View() string {
	return inputLineStyle.Width(i.width).Render(i.input.View())
}

// AddToHistory adds the given input to history if non-empty.
func (i *InputLine) AddToHistory(input string) {
	if input == "" {
		return
	}
	// Avoid duplicates at the end
	if len(i.history) > 0 && i.history[len(i.history)-1] == input {
		return
	}
	i.history = append(i.history, input)
	if len(i.history) > i.maxHistory {
		i.history = i.history[len(i.history)-i.maxHistory:]
	}
	i.historyIndex = -1
	i.savedInput = ""
}

// History returns a copy of the history, oldest first.
func (i *InputLine) History() []string {
	return append([]string(nil), i.history...)
}

// HistoryUp navigates to the previous (older) history entry.
// Returns true if the input was changed.
func (i *InputLine) HistoryUp() bool {
	if len(i.history) == 0 {
		return false
	}

	// First time pressing up: save current input and start from most recent
	if i.historyIndex == -1 {
		i.savedInput = i.input.Value()
		i.historyIndex = len(i.history) - 1
	} else if i.historyIndex > 0 {
		i.historyIndex--
	} else {
		return false
	}

	i.SetValue(i.history[i.historyIndex])
	return true
}

// HistoryDown navigates to the next (newer) history entry.
// Returns true if the input was changed.
func (i *InputLine) HistoryDown() bool {
	if i.historyIndex == -1 {
		return false
	}

	if i.historyIndex < len(i.history)-1 {
		i.historyIndex++
		i.SetValue(i.history[i.historyIndex])
		return true
	}

	// At newest entry, restore saved input
	i.historyIndex = -1
	i.SetValue(i.savedInput)
	i.savedInput = ""
	return true
}

// LoadHistory reads history from path, one entry per line.
// A missing file is not an error.
func (i *InputLine) LoadHistory(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, line := range strings.Split(string(data), "\n") {
		i.AddToHistory(strings.TrimSpace(line))
	}
	return nil
}

// SaveHistory writes history to path, creating its directory.
func (i *InputLine) SaveHistory(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data := strings.Join(i.history, "\n")
	if data != "" {
		data += "\n"
	}
	return os.WriteFile(path, []byte(data), 0600)
}

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// HelpBar displays keyboard shortcuts, or the last error, at the bottom of the REPL.
type HelpBar struct {
	width    int
	keys     KeyBindings
	errorMsg string
}

// NewHelpBar creates a new help bar component.
func NewHelpBar(keys KeyBindings) HelpBar {
	return HelpBar{keys: keys}
}

// SetWidth updates the help bar width.
func (h *HelpBar) SetWidth(width int) {
	h.width = width
}

// SetError sets the error message to display.
func (h *HelpBar) SetError(msg string) {
	h.errorMsg = msg
}

// ClearError clears the error message.
func (h *HelpBar) ClearError() {
	h.errorMsg = ""
}

// Error returns the current error message.
func (h *HelpBar) Error() string {
	return h.errorMsg
}

// View renders the help bar.
func (h HelpBar) View() string {
	if h.errorMsg != "" {
		return errorBarStyle.Width(h.width).Render("Error: " + h.errorMsg)
	}

	bindings := []key.Binding{h.keys.Submit, h.keys.HistoryUp, h.keys.PageUp, h.keys.Clear, h.keys.Quit}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		help := b.Help()
		parts = append(parts, helpKeyStyle.Render(help.Key)+" "+helpDescStyle.Render(help.Desc))
	}
	return inputLineStyle.Width(h.width).Render(strings.Join(parts, "  "))
}

package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/tessro/broadcast/internal/script"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	stepStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	callStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

// DefaultWidth is used when no terminal width is known.
const DefaultWidth = 100

// Line renders one entry for a terminal, wrapped to width.
func Line(e script.Entry, width int) string {
	prefix := stepStyle.Render(fmt.Sprintf("%3d", e.Step+1)) + " "
	text := e.String()
	if e.Op == script.OpCall {
		text = "  " + text
	}
	if width > 8 {
		text = wordwrap.String(text, width-4)
	}

	switch {
	case e.Err != nil:
		text = errorStyle.Render(text)
	case e.Op == script.OpCall:
		text = callStyle.Render(text)
	}
	return prefix + text
}

// Text writes the transcript as styled terminal lines.
func Text(w io.Writer, t *script.Transcript, width int) error {
	if width <= 0 {
		width = DefaultWidth
	}
	if t.Name != "" {
		if _, err := fmt.Fprintln(w, titleStyle.Render("📣 "+t.Name)); err != nil {
			return err
		}
	}
	for _, e := range t.Entries {
		if _, err := fmt.Fprintln(w, Line(e, width)); err != nil {
			return err
		}
	}

	errs := len(t.Errors())
	summary := fmt.Sprintf("%d entries, %d calls, %d errors", len(t.Entries), len(countCalls(t)), errs)
	if errs > 0 {
		summary = errorStyle.Render(summary)
	}
	_, err := fmt.Fprintln(w, summary)
	return err
}

func countCalls(t *script.Transcript) []script.Entry {
	var calls []script.Entry
	for _, e := range t.Entries {
		if e.Op == script.OpCall {
			calls = append(calls, e)
		}
	}
	return calls
}

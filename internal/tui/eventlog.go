package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/tessro/broadcast/internal/report"
	"github.com/tessro/broadcast/internal/script"
)

// defaultMaxLines caps the log when no limit is configured.
const defaultMaxLines = 1000

// EventLog is the scrolling output pane of the REPL.
type EventLog struct {
	width    int
	height   int
	lines    []string
	maxLines int
	viewport viewport.Model
	ready    bool
}

// NewEventLog creates an event log keeping at most maxLines lines.
func NewEventLog(maxLines int) EventLog {
	if maxLines <= 0 {
		maxLines = defaultMaxLines
	}
	return EventLog{maxLines: maxLines}
}

// SetSize updates the component dimensions.
func (l *EventLog) SetSize(width, height int) {
	l.width = width
	l.height = height

	// Account for border (2 chars top/bottom, 2 chars left/right)
	contentWidth := max(width-2, 1)
	contentHeight := max(height-2, 1)

	if !l.ready {
		l.viewport = viewport.New(contentWidth, contentHeight)
		l.ready = true
	} else {
		l.viewport.Width = contentWidth
		l.viewport.Height = contentHeight
	}
	l.refresh()
}

// Lines returns the raw lines in the log.
func (l *EventLog) Lines() []string {
	return l.lines
}

// AppendEntry adds a transcript entry.
func (l *EventLog) AppendEntry(e script.Entry) {
	l.append(report.Line(e, l.contentWidth()))
}

// AppendInput echoes a submitted command.
func (l *EventLog) AppendInput(s string) {
	l.append(logInputStyle.Render("> " + s))
}

// AppendInfo adds a muted informational line.
func (l *EventLog) AppendInfo(s string) {
	l.appendStyled(s, logInfoStyle)
}

// AppendError adds an error line.
func (l *EventLog) AppendError(s string) {
	l.appendStyled("error: "+s, logErrorStyle)
}

// Clear removes every line.
func (l *EventLog) Clear() {
	l.lines = nil
	l.refresh()
}

// ScrollUp scrolls the viewport up by a page.
func (l *EventLog) ScrollUp() {
	l.viewport.HalfViewUp()
}

// ScrollDown scrolls the viewport down by a page.
func (l *EventLog) ScrollDown() {
	l.viewport.HalfViewDown()
}

// View renders the event log.
func (l EventLog) View() string {
	if !l.ready {
		return ""
	}
	return logBorderStyle.Render(l.viewport.View())
}

func (l *EventLog) contentWidth() int {
	if l.width <= 2 {
		return 0
	}
	return l.width - 2
}

func (l *EventLog) appendStyled(s string, style lipgloss.Style) {
	if w := l.contentWidth(); w > 0 {
		s = wordwrap.String(s, w)
	}
	l.append(style.Render(s))
}

func (l *EventLog) append(s string) {
	l.lines = append(l.lines, s)
	if len(l.lines) > l.maxLines {
		l.lines = l.lines[len(l.lines)-l.maxLines:]
	}
	l.refresh()
}

func (l *EventLog) refresh() {
	if !l.ready {
		return
	}
	l.viewport.SetContent(strings.Join(l.lines, "\n"))
	l.viewport.GotoBottom()
}

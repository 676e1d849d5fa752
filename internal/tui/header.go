package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

// Header displays the REPL branding and registry stats.
type Header struct {
	width int
	name  string

	// Stats to display
	eventCount    int
	listenerCount int
	callCount     int
}

// NewHeader creates a new header component for the named session.
func NewHeader(name string) Header {
	return Header{name: name}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.width = width
}

// SetStats updates the registry statistics.
func (h *Header) SetStats(events, listeners, calls int) {
	h.eventCount = events
	h.listenerCount = listeners
	h.callCount = calls
}

// View renders the header.
func (h Header) View() string {
	title := "📣 broadcast"
	if h.name != "" {
		title += " · " + h.name
	}
	brand := headerBrandStyle.Render(title)

	stats := headerStatsStyle.Render(strings.Join([]string{
		plural(h.eventCount, "event"),
		plural(h.listenerCount, "listener"),
		plural(h.callCount, "call"),
	}, "  •  "))

	spacerWidth := max(h.width-lipgloss.Width(brand)-lipgloss.Width(stats), 0)
	spacer := headerStatsStyle.Width(spacerWidth).Padding(0).Render("")

	content := lipgloss.JoinHorizontal(lipgloss.Top, brand, spacer, stats)
	if h.width > 0 {
		content = truncate.String(content, uint(h.width))
	}
	return content
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

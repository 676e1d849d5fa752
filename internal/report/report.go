// Package report renders script transcripts as text, Markdown or HTML.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tessro/broadcast/internal/script"
)

// Format selects a transcript rendering.
type Format string

// Supported formats.
const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat converts a format name ("md" is accepted for markdown).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Write renders t in the given format. width only applies to text output.
func Write(w io.Writer, f Format, t *script.Transcript, width int) error {
	switch f {
	case FormatText:
		return Text(w, t, width)
	case FormatMarkdown:
		return Markdown(w, t)
	case FormatHTML:
		return HTML(w, t)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

package report

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/tessro/broadcast/internal/script"
)

// Markdown writes the transcript as a Markdown document with an entry table,
// a call summary and the errors, if any.
func Markdown(w io.Writer, t *script.Transcript) error {
	bw := bufio.NewWriter(w)

	title := t.Name
	if title == "" {
		title = "session"
	}
	fmt.Fprintf(bw, "# Transcript: %s\n\n", cell(title))

	if len(t.Entries) == 0 {
		fmt.Fprintln(bw, "_No entries._")
		return bw.Flush()
	}

	fmt.Fprintln(bw, "| Step | Op | Event | Handler | Args | Result |")
	fmt.Fprintln(bw, "|---:|---|---|---|---|---|")
	for _, e := range t.Entries {
		result := "ok"
		if e.Err != nil {
			result = "**error:** " + cell(e.Err.Error())
		} else if e.Detail != "" {
			result = cell(e.Detail)
		}
		handler := cell(e.Handler)
		if e.Listener != "" {
			handler += " `" + e.Listener + "`"
		}
		fmt.Fprintf(bw, "| %d | %s | %s | %s | %s | %s |\n",
			e.Step+1, e.Op, cell(e.Event()), handler, cell(e.ArgString()), result)
	}

	counts := t.CallCounts()
	if len(counts) > 0 {
		fmt.Fprintln(bw, "\n## Calls")
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "| Handler | Calls |")
		fmt.Fprintln(bw, "|---|---:|")
		for _, h := range slices.Sorted(maps.Keys(counts)) {
			fmt.Fprintf(bw, "| %s | %d |\n", cell(h), counts[h])
		}
	}

	if errs := t.Errors(); len(errs) > 0 {
		fmt.Fprintln(bw, "\n## Errors")
		fmt.Fprintln(bw)
		for _, e := range errs {
			fmt.Fprintf(bw, "- step %d (%s): %s\n", e.Step+1, e.Op, e.Err)
		}
	}

	return bw.Flush()
}

// cell escapes text for a Markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

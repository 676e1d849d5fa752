package script

import (
	"fmt"
	"strings"
)

// Entry is one line of a transcript.
type Entry struct {
	// Step is the zero-based index of the step that produced the entry.
	Step     int
	Op       Op
	Events   []string
	Handler  string
	Listener string
	Args     []any
	Detail   string
	Err      error
}

// Event returns the entry's event names joined with commas.
func (e Entry) Event() string {
	return strings.Join(e.Events, ",")
}

// ArgString formats the entry's arguments for display.
func (e Entry) ArgString() string {
	return FormatArgs(e.Args)
}

// String renders the entry on one line.
func (e Entry) String() string {
	var b strings.Builder
	b.WriteString(string(e.Op))
	if ev := e.Event(); ev != "" {
		b.WriteString(" " + ev)
	}
	if e.Handler != "" {
		b.WriteString(" -> " + e.Handler)
	}
	if e.Listener != "" {
		b.WriteString(" [" + e.Listener + "]")
	}
	if len(e.Args) > 0 {
		b.WriteString(" (" + e.ArgString() + ")")
	}
	if e.Detail != "" {
		b.WriteString(" " + e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": error: " + e.Err.Error())
	}
	return b.String()
}

// FormatArgs formats values Go-syntax style, strings quoted.
func FormatArgs(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if s, ok := a.(string); ok {
			parts[i] = fmt.Sprintf("%q", s)
			continue
		}
		parts[i] = fmt.Sprintf("%v", a)
	}
	return strings.Join(parts, ", ")
}

// Transcript is the record of a script run.
type Transcript struct {
	Name    string
	Entries []Entry
}

// Calls returns how many call entries the named handler has.
func (t *Transcript) Calls(handler string) int {
	n := 0
	for _, e := range t.Entries {
		if e.Op == OpCall && e.Handler == handler {
			n++
		}
	}
	return n
}

// CallCounts returns the number of calls per handler.
func (t *Transcript) CallCounts() map[string]int {
	counts := make(map[string]int)
	for _, e := range t.Entries {
		if e.Op == OpCall {
			counts[e.Handler]++
		}
	}
	return counts
}

// Errors returns the entries that carry an error.
func (t *Transcript) Errors() []Entry {
	var out []Entry
	for _, e := range t.Entries {
		if e.Err != nil {
			out = append(out, e)
		}
	}
	return out
}

// Since returns the entries recorded after the first n.
func (t *Transcript) Since(n int) []Entry {
	if n >= len(t.Entries) {
		return nil
	}
	return t.Entries[n:]
}

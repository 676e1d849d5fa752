// Package tui provides an interactive REPL for driving an augmented object.
package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/broadcast/internal/script"
)

// builtinHelp lists the commands handled by the REPL itself.
var builtinHelp = []string{
	"events       list registered events and listeners",
	"props        list the object's plain properties",
	"handlers     list declared handlers and call counts",
	"clear        clear the log",
	"help         show this help",
	"quit         exit",
}

// Options configures the REPL.
type Options struct {
	// HistoryPath is where input history is loaded from and saved to.
	// Empty disables persistence.
	HistoryPath string
	HistorySize int
	MaxLogLines int
}

// Model is the main bubbletea model for the REPL.
type Model struct {
	width  int
	height int
	ready  bool

	runner *script.Runner
	seen   int // transcript entries already shown

	header Header
	log    EventLog
	input  InputLine
	help   HelpBar
	keys   KeyBindings

	historyPath string
	quitting    bool
}

// New creates a REPL model driving runner.
func New(runner *script.Runner, opts Options) Model {
	keys := DefaultKeyBindings()
	m := Model{
		runner:      runner,
		header:      NewHeader(runner.Transcript().Name),
		log:         NewEventLog(opts.MaxLogLines),
		input:       NewInputLine(opts.HistorySize),
		help:        NewHelpBar(keys),
		keys:        keys,
		historyPath: opts.HistoryPath,
	}
	if m.historyPath != "" {
		if err := m.input.LoadHistory(m.historyPath); err != nil {
			slog.Warn("failed to load history", "path", m.historyPath, "error", err)
		}
	}
	m.updateHeader()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		// Entries recorded before the first resize (a preloaded script) are
		// rendered once the log knows its width.
		m.flush()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quit()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Submit):
			line := strings.TrimSpace(m.input.Value())
			m.input.Clear()
			if m.Execute(line) {
				return m, tea.Quit
			}
			return m, nil
		case key.Matches(msg, m.keys.Clear):
			m.log.Clear()
			m.help.ClearError()
			return m, nil
		case key.Matches(msg, m.keys.HistoryUp):
			m.input.HistoryUp()
			return m, nil
		case key.Matches(msg, m.keys.HistoryDown):
			m.input.HistoryDown()
			return m, nil
		case key.Matches(msg, m.keys.PageUp):
			m.log.ScrollUp()
			return m, nil
		case key.Matches(msg, m.keys.PageDown):
			m.log.ScrollDown()
			return m, nil
		}
	}

	cmd := m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		m.log.View(),
		m.input.View(),
		m.help.View(),
	)
}

// Execute runs one line of input and reports whether the REPL should exit.
func (m *Model) Execute(line string) bool {
	if line == "" {
		return false
	}
	m.input.AddToHistory(line)
	m.help.ClearError()
	m.log.AppendInput(line)

	switch line {
	case "quit", "exit":
		m.quit()
		return true
	case "clear":
		m.log.Clear()
		return false
	case "help":
		for _, s := range script.CommandHelp {
			m.log.AppendInfo(s)
		}
		for _, s := range builtinHelp {
			m.log.AppendInfo(s)
		}
		return false
	case "events":
		m.showEvents()
		return false
	case "props":
		m.showProps()
		return false
	case "handlers":
		m.showHandlers()
		return false
	}

	step, err := script.ParseCommand(line)
	if err != nil {
		m.log.AppendError(err.Error())
		m.help.SetError(err.Error())
		return false
	}
	if err := m.runner.Exec(step); err != nil {
		m.help.SetError(err.Error())
	}
	m.flush()
	m.updateHeader()
	return false
}

// Lines returns the raw event log lines.
func (m Model) Lines() []string {
	return m.log.Lines()
}

func (m *Model) showEvents() {
	obj := m.runner.Object()
	names := obj.EventNames()
	if len(names) == 0 {
		m.log.AppendInfo("no events registered")
		return
	}
	for _, name := range names {
		var ids []string
		for _, l := range obj.Listeners(name) {
			id := l.ID()
			if l.Once() {
				id += " (once)"
			}
			ids = append(ids, id)
		}
		m.log.AppendInfo(fmt.Sprintf("%s: %s", name, strings.Join(ids, ", ")))
	}
}

func (m *Model) showProps() {
	obj := m.runner.Object()
	keys := obj.Keys()
	if len(keys) == 0 {
		m.log.AppendInfo("no properties")
		return
	}
	for _, k := range keys {
		v, _ := obj.Get(k)
		m.log.AppendInfo(fmt.Sprintf("%s = %s", k, script.FormatArgs([]any{v})))
	}
}

func (m *Model) showHandlers() {
	names := m.runner.Handlers()
	if len(names) == 0 {
		m.log.AppendInfo("no declared handlers")
		return
	}
	for _, name := range names {
		m.log.AppendInfo(fmt.Sprintf("%s: %d calls", name, m.runner.Calls(name)))
	}
}

// flush appends transcript entries not yet shown.
func (m *Model) flush() {
	if !m.ready {
		return
	}
	t := m.runner.Transcript()
	for _, e := range t.Since(m.seen) {
		m.log.AppendEntry(e)
	}
	m.seen = len(t.Entries)
}

func (m *Model) updateHeader() {
	obj := m.runner.Object()
	names := obj.EventNames()
	listeners := 0
	for _, name := range names {
		listeners += obj.ListenerCount(name)
	}
	calls := 0
	for _, n := range m.runner.Transcript().CallCounts() {
		calls += n
	}
	m.header.SetStats(len(names), listeners, calls)
}

func (m *Model) layout() {
	m.header.SetWidth(m.width)
	m.input.SetWidth(m.width)
	m.help.SetWidth(m.width)
	// Header, input and help bar take one line each.
	m.log.SetSize(m.width, max(m.height-3, 3))
}

func (m *Model) quit() {
	m.quitting = true
	if m.historyPath == "" {
		return
	}
	if err := m.input.SaveHistory(m.historyPath); err != nil {
		slog.Warn("failed to save history", "path", m.historyPath, "error", err)
	}
}

// Run starts the REPL on the terminal and blocks until it exits.
func Run(runner *script.Runner, opts Options) error {
	slog.Debug("tui.Run: starting", "history", opts.HistoryPath)
	p := tea.NewProgram(
		New(runner, opts),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	slog.Debug("tui.Run: program exited", "error", err)
	return err
}

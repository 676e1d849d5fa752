package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tessro/broadcast/internal/paths"
	"github.com/tessro/broadcast/internal/script"
	"github.com/tessro/broadcast/internal/tui"
)

var replCmd = &cobra.Command{
	Use:   "repl [script]",
	Short: "Drive an augmented object interactively",
	Long: `Launch an interactive REPL on a fresh augmented object.

If a script is given, its fields and handlers are loaded and its steps run
before the prompt appears.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runREPL,
}

func runREPL(cmd *cobra.Command, args []string) error {
	runner, err := newREPLRunner(args)
	if err != nil {
		return err
	}

	historyPath, err := paths.HistoryPath()
	if err != nil {
		slog.Warn("history disabled", "error", err)
		historyPath = ""
	}
	return tui.Run(runner, tui.Options{
		HistoryPath: historyPath,
		HistorySize: globalConfig.GetHistorySize(),
		MaxLogLines: globalConfig.GetMaxLogLines(),
	})
}

// newREPLRunner builds the runner behind the REPL, preloading a script when
// one is named. Failed steps in the preload are left in the transcript.
func newREPLRunner(args []string) (*script.Runner, error) {
	if len(args) == 0 {
		return script.NewRunner(&script.Script{Name: "session"}), nil
	}
	s, err := script.Load(args[0])
	if err != nil {
		return nil, err
	}
	runner := script.NewRunner(s)
	if err := runner.Run(context.Background(), s.Steps); err != nil {
		slog.Warn("preload stopped", "script", s.Name, "error", err)
	}
	return runner, nil
}

func init() {
	rootCmd.AddCommand(replCmd)
}

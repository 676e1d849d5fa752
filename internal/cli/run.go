package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tessro/broadcast/internal/report"
	"github.com/tessro/broadcast/internal/script"
)

var (
	runFormat string
	runOut    string
	runWatch  bool
	runStrict bool
	runWidth  int
)

var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Run an event script and print its transcript",
	Long: `Run an event script against a fresh augmented object and print the
transcript of every registration, trigger and handler call.

With --watch the script is re-run every time the file changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

// runOptions are the resolved settings for one run.
type runOptions struct {
	format report.Format
	strict bool
	width  int
	out    string
}

func runRun(cmd *cobra.Command, args []string) error {
	opts, err := resolveRunOptions(cmd)
	if err != nil {
		return err
	}
	path := args[0]

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	stdout := cmd.OutOrStdout()
	if !runWatch {
		return runScript(ctx, stdout, path, opts)
	}

	rerun := func() {
		if err := runScript(ctx, stdout, path, opts); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "📣 %v\n", err)
		}
	}
	rerun()
	fmt.Fprintf(cmd.ErrOrStderr(), "📣 Watching %s (ctrl+c to stop)\n", path)
	return script.Watch(ctx, path, rerun)
}

// resolveRunOptions merges flags with the loaded config; flags win when set.
func resolveRunOptions(cmd *cobra.Command) (runOptions, error) {
	format := globalConfig.GetFormat()
	if cmd.Flags().Changed("format") {
		format = runFormat
	}
	f, err := report.ParseFormat(format)
	if err != nil {
		return runOptions{}, err
	}
	return runOptions{
		format: f,
		strict: runStrict || globalConfig.IsStrict(),
		width:  runWidth,
		out:    runOut,
	}, nil
}

// runScript loads, runs and renders the script at path. The transcript is
// written even when the run fails.
func runScript(ctx context.Context, stdout io.Writer, path string, opts runOptions) (err error) {
	s, err := script.Load(path)
	if err != nil {
		return err
	}

	t, runErr := script.Run(ctx, s, script.WithStrict(opts.strict))
	slog.Info("script finished", "script", s.Name, "entries", len(t.Entries), "errors", len(t.Errors()), "error", runErr)

	w := stdout
	if opts.out != "" {
		f, ferr := os.Create(opts.out)
		if ferr != nil {
			return ferr
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
	}
	if err := report.Write(w, opts.format, t, opts.width); err != nil {
		return errors.Join(runErr, fmt.Errorf("write report: %w", err))
	}
	return runErr
}

func init() {
	runCmd.Flags().StringVarP(&runFormat, "format", "f", "text", "output format: text, markdown or html")
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "write the report to a file instead of stdout")
	runCmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "re-run the script when it changes")
	runCmd.Flags().BoolVar(&runStrict, "strict", false, "stop at the first failed trigger")
	runCmd.Flags().IntVar(&runWidth, "width", report.DefaultWidth, "wrap width for text output")
	rootCmd.AddCommand(runCmd)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tessro/broadcast/internal/script"
)

var checkCmd = &cobra.Command{
	Use:   "check <script>...",
	Short: "Validate event scripts without running them",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, path := range args {
		s, err := script.Load(path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "✗ %v\n", err)
			failed++
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %d steps, %d handlers\n", s.Name, len(s.Steps), len(s.Handlers))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scripts invalid", failed, len(args))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

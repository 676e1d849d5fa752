package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tessro/broadcast/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print the version, commit, and build date of broadcast.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "📣 broadcast %s\n", version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Package cli implements the broadcast command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/tessro/broadcast/internal/config"
	"github.com/tessro/broadcast/internal/logging"
	"github.com/tessro/broadcast/internal/paths"
)

// Global flag values.
var (
	configPath string
	logLevel   string
	logFile    string
)

// globalConfig is loaded before every command runs.
var globalConfig *config.GlobalConfig

var logCleanup func()

var rootCmd = &cobra.Command{
	Use:          "broadcast",
	Short:        "Event emitter playground",
	Long:         "broadcast runs event scripts against augmented objects and renders what every listener saw.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		globalConfig = cfg

		cleanup, err := logging.Setup(cfg.GetLogFile(), logging.ParseLevel(cfg.GetLogLevel()))
		if err != nil {
			return err
		}
		logCleanup = cleanup
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCleanup != nil {
			logCleanup()
			logCleanup = nil
		}
	},
}

// loadConfig reads the config file and lets explicitly set flags win over it.
func loadConfig(cmd *cobra.Command) (*config.GlobalConfig, error) {
	path := configPath
	if path == "" {
		p, err := paths.ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		if err := config.ValidateLogLevel(logLevel); err != nil {
			return nil, err
		}
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/broadcast/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file (default ~/.broadcast/broadcast.log)")
}

func Execute() error {
	return rootCmd.Execute()
}

// Package main provides the cricksim CLI: the match server plus tools that
// play against it or simulate matches offline.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/cricksim/internal/config"
	"github.com/okian/cricksim/pkg/logger"
)

var (
	logLevel  string
	logFormat string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cricksim",
		Short:         "Limited-overs cricket match simulator",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runServeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json (overrides config)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAutoplayCmd())
	rootCmd.AddCommand(newSimulateCmd())
	rootCmd.AddCommand(newTableCmd())

	return rootCmd
}

// initLogging sets up the global logger from config, with flags taking
// precedence.
func initLogging(cmd *cobra.Command, cfg *config.Config) error {
	format, level := cfg.LogFormat, cfg.LogLevel
	if cmd.Flags().Changed("log-format") {
		format = logFormat
	}
	if cmd.Flags().Changed("log-level") {
		level = logLevel
	}
	if err := logger.Init(logger.WithFormat(format), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return err
	}
	if err := logger.SetLevelString(level); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", level), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}

package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/cricksim/internal/autoplay"
	"github.com/okian/cricksim/internal/config"
)

func newAutoplayCmd() *cobra.Command {
	cfg := autoplay.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "autoplay",
		Short: "Play matches against a running server and verify the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAutoplayCmd(cmd, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "base URL of the server")
	f.IntVar(&cfg.Matches, "matches", cfg.Matches, "number of matches to play")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "matches played concurrently")
	f.StringVar(&cfg.Team, "team", cfg.Team, "team the robot controls (default alternates CSK and MI)")
	f.IntVar(&cfg.Overs, "overs", cfg.Overs, "overs per innings (default: server default)")
	f.StringVar(&cfg.Mode, "mode", cfg.Mode, "difficulty: easy, medium or hard")
	f.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "seed for the robot and the server matches; 0 lets the server choose")
	f.IntVar(&cfg.TopN, "top", cfg.TopN, "results entries to fetch and check")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "log every ball")
	return cmd
}

func runAutoplayCmd(cmd *cobra.Command, cfg *autoplay.Config) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Matches < 1 {
		return fmt.Errorf("%w: matches must be positive", config.ErrInvalidConfig)
	}
	base := config.New()
	if cfg.Verbose && !cmd.Flags().Changed("log-level") {
		base.LogLevel = "debug"
	}
	if err := initLogging(cmd, base); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	stats, err := autoplay.Run(ctx, cfg)
	if err != nil {
		return fmt.Errorf("autoplay failed after %d/%d matches: %w", stats.MatchesCompleted, cfg.Matches, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "played %d matches, %d balls in %s\n", stats.MatchesCompleted, stats.Balls, stats.Duration)
	return nil
}

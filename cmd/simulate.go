package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/cricksim/internal/autoplay"
	"github.com/okian/cricksim/internal/config"
)

var (
	simRatings string
	simJSON    bool
)

func newSimulateCmd() *cobra.Command {
	cfg := autoplay.SimConfig{Matches: 100, Overs: 2, Mode: "medium", Seed: 1}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play headless matches and print the outcome distribution",
		Long: "Plays matches in-process with a robot on both sides. The same seed and\n" +
			"rating table always give the same report, which makes it a tuning aid.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulateCmd(cmd, cfg)
		},
	}

	f := cmd.Flags()
	f.IntVar(&cfg.Matches, "matches", cfg.Matches, "number of matches")
	f.IntVar(&cfg.Overs, "overs", cfg.Overs, "overs per innings")
	f.StringVar(&cfg.Mode, "mode", cfg.Mode, "difficulty: easy, medium or hard")
	f.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "first match seed")
	f.BoolVar(&cfg.EndOnTarget, "end-on-target", cfg.EndOnTarget, "stop a chase once the target is reached")
	f.StringVar(&simRatings, "ratings", "", "rating table file (YAML or TOML); default is the embedded table")
	f.BoolVar(&simJSON, "json", false, "print the report as JSON")
	return cmd
}

func runSimulateCmd(cmd *cobra.Command, cfg autoplay.SimConfig) error {
	if cfg.Matches < 1 || cfg.Overs < 1 {
		return fmt.Errorf("%w: matches and overs must be positive", config.ErrInvalidConfig)
	}
	tbl, err := loadTable(simRatings)
	if err != nil {
		return err
	}
	rep, err := autoplay.Simulate(cmd.Context(), tbl, cfg)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	if simJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	return rep.Write(cmd.OutOrStdout())
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/okian/cricksim/internal/domain/ratings"
)

func newTableCmd() *cobra.Command {
	tableCmd := &cobra.Command{
		Use:   "table",
		Short: "Inspect rating tables",
	}
	tableCmd.AddCommand(&cobra.Command{
		Use:   "check [file]",
		Short: "Validate a rating table and summarise it",
		Long:  "Validates a YAML or TOML rating table. Without a file the embedded table is checked.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTableCheckCmd,
	})
	return tableCmd
}

func runTableCheckCmd(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	}
	tbl, err := loadTable(path)
	if err != nil {
		return err
	}

	name := path
	if name == "" {
		name = "embedded table"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: ok, %d deliveries\n", name, len(tbl.Deliveries()))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "style\tlines\tlengths\tvariations\tshots")
	for _, s := range tbl.Styles() {
		o, err := tbl.Options(s)
		if err != nil {
			return fmt.Errorf("%w: %s", ratings.ErrInvalidTable, s)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", s, len(o.Lines), len(o.Lengths), len(o.Variations), len(o.Shots))
	}
	return tw.Flush()
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vndk/vndk-tool/internal/report"
	"github.com/vndk/vndk-tool/internal/scan"
)

// newElfdumpCmd implements the elfdump subcommand (spec §6, SPEC_FULL
// supplement #1): dump the decoded fields of one ELF file.
func newElfdumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "elfdump <path>",
		Short: "Dump the decoded fields of one ELF shared object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			rec, err := scan.ParseFile(path)
			if err != nil {
				return fmt.Errorf("elfdump %s: %w", path, err)
			}
			return report.ELFSummary(os.Stdout, path, rec)
		},
	}
	return cmd
}

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vndk/vndk-tool/internal/graph"
	"github.com/vndk/vndk-tool/internal/report"
	"github.com/vndk/vndk-tool/internal/sphal"
)

// newSPHALCmd implements the sp-hal subcommand (spec §6, §4.6 step 1):
// print every scanned library matching the same-process HAL path
// patterns.
func newSPHALCmd() *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "sp-hal",
		Short: "List libraries recognized as same-process HALs",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := buildGraph(&flags)
			if err != nil {
				return err
			}
			set := make(map[string]*graph.Node)
			for _, wm := range g.WordMaps() {
				for path, n := range wm {
					if sphal.Is(path) {
						set[path] = n
					}
				}
			}
			return report.WriteClosure(os.Stdout, set)
		},
	}
	flags.register(cmd)
	return cmd
}

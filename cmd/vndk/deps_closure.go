package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vndk/vndk-tool/internal/graph"
	"github.com/vndk/vndk-tool/internal/report"
	"github.com/vndk/vndk-tool/internal/vndk"
)

// newDepsClosureCmd implements the deps-closure subcommand (spec §6,
// SPEC_FULL supplement #3): print closure({named libs}, excluded) for a
// caller-supplied exclusion predicate.
func newDepsClosureCmd() *cobra.Command {
	var flags scanFlags
	var (
		excludeNDK  bool
		excludeLibs []string
	)

	cmd := &cobra.Command{
		Use:   "deps-closure <path> [path...]",
		Short: "Print the transitive dependency closure of named libraries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := buildGraph(&flags)
			if err != nil {
				return err
			}
			nodes, bad := mapPathsToNodes(g, args)
			for _, p := range bad {
				fmt.Fprintf(os.Stderr, "deps-closure: no such library: %s\n", p)
			}

			excludeSet := make(map[string]struct{}, len(excludeLibs))
			for _, name := range excludeLibs {
				excludeSet[name] = struct{}{}
			}
			excluded := func(n *graph.Node) bool {
				if excludeNDK && n.IsNDK {
					return true
				}
				_, ok := excludeSet[filepath.Base(n.Path)]
				return ok
			}

			closureSet := vndk.Closure(nodes, excluded)
			return report.WriteClosure(os.Stdout, closureSet)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&excludeNDK, "exclude-ndk", false, "exclude NDK libraries from the closure")
	cmd.Flags().StringArrayVar(&excludeLibs, "exclude-lib", nil, "exclude this base name from the closure")
	return cmd
}

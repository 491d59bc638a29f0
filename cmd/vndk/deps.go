package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vndk/vndk-tool/internal/graph"
	"github.com/vndk/vndk-tool/internal/report"
)

// newDepsCmd implements the deps subcommand (spec §6, SPEC_FULL
// supplement #3): print binary dependencies for debugging, grounded in
// the original tool's DepsCommand. With no path arguments it dumps every
// scanned library (both partitions); named paths narrow the dump to
// just those libraries. --revert prints users instead of deps; --leaf
// prints only the libraries whose associated list is empty.
func newDepsCmd() *cobra.Command {
	var flags scanFlags
	var (
		revert bool
		leaf   bool
	)

	cmd := &cobra.Command{
		Use:   "deps [path...]",
		Short: "Print binary dependencies (or, with --revert, users) for debugging",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := buildGraph(&flags)
			if err != nil {
				return err
			}

			var nodes []*graph.Node
			if len(args) == 0 {
				nodes = allLibs(g)
			} else {
				var bad []string
				nodes, bad = mapPathsToNodes(g, args)
				for _, p := range bad {
					fmt.Fprintf(os.Stderr, "deps: no such library: %s\n", p)
				}
			}

			assoc := (*graph.Node).Deps
			if revert {
				assoc = (*graph.Node).Users
			}
			if leaf {
				return report.WriteLeaves(os.Stdout, nodes, assoc)
			}
			return report.WriteDeps(os.Stdout, nodes, assoc)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&revert, "revert", false, "print usage dependency (users) instead of deps")
	cmd.Flags().BoolVar(&leaf, "leaf", false, "print binaries without dependencies or usages")
	return cmd
}

// allLibs returns every node across both partitions, sorted by path.
func allLibs(g *graph.Graph) []*graph.Node {
	combined := make(map[string]*graph.Node, len(g.System())+len(g.Vendor()))
	for p, n := range g.System() {
		combined[p] = n
	}
	for p, n := range g.Vendor() {
		combined[p] = n
	}
	return graph.SortedNodes(combined)
}

// mapPathsToNodes resolves each canonical path to its node (spec §8
// scenario 2 "map_paths_to_libs"), reporting any path with no match.
func mapPathsToNodes(g *graph.Graph, paths []string) (nodes []*graph.Node, bad []string) {
	for _, p := range paths {
		if n, ok := g.Lookup(p); ok {
			nodes = append(nodes, n)
		} else {
			bad = append(bad, p)
		}
	}
	return nodes, bad
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vndk/vndk-tool/internal/genericref"
	"github.com/vndk/vndk-tool/internal/graph"
)

// newCreateGenericRefCmd implements create-generic-ref (spec §6,
// SPEC_FULL supplement #2): scan a graph and write one ".sym" file per
// scanned library, system and vendor partitions alike, under --output,
// the write side of the
// round-trip law in spec §8.
func newCreateGenericRefCmd() *cobra.Command {
	var flags scanFlags
	var output string

	cmd := &cobra.Command{
		Use:   "create-generic-ref",
		Short: "Dump exported symbols of every scanned library as a generic reference tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return fmt.Errorf("create-generic-ref: --output is required")
			}
			g, err := buildGraph(&flags)
			if err != nil {
				return err
			}
			nodes := graph.SortedNodes(g.System())
			nodes = append(nodes, graph.SortedNodes(g.Vendor())...)
			if err := genericref.Dump(output, nodes); err != nil {
				return fmt.Errorf("create-generic-ref: %w", err)
			}
			log.Info("wrote generic reference tree")
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&output, "output", "", "output directory for the .sym tree")
	return cmd
}

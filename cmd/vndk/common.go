package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vndk/vndk-tool/internal/graph"
	"github.com/vndk/vndk-tool/internal/resolve"
	"github.com/vndk/vndk-tool/internal/scan"
)

// scanFlags holds the common graph-building flags shared by every
// subcommand that needs a resolved graph (spec §6 "each accepts --system
// DIR, --vendor DIR, --system-dir-as-vendor SUBDIR, --vendor-dir-as-
// system SUBDIR, --load-extra-deps FILE as applicable").
type scanFlags struct {
	system            string
	vendor            string
	systemDirAsVendor []string
	vendorDirAsSystem []string
	loadExtraDeps     string
}

func (f *scanFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.system, "system", "", "system partition root directory")
	cmd.Flags().StringVar(&f.vendor, "vendor", "", "vendor partition root directory")
	cmd.Flags().StringArrayVar(&f.systemDirAsVendor, "system-dir-as-vendor", nil, "subdirectory of --system that actually holds vendor files")
	cmd.Flags().StringArrayVar(&f.vendorDirAsSystem, "vendor-dir-as-system", nil, "subdirectory of --vendor that actually holds system files")
	cmd.Flags().StringVar(&f.loadExtraDeps, "load-extra-deps", "", "extra dependency edges file (spec §4.2, §6)")

	for _, name := range []string{"system", "vendor", "system-dir-as-vendor", "vendor-dir-as-system", "load-extra-deps"} {
		_ = viper.BindPFlag(cmd.Name()+"."+name, cmd.Flags().Lookup(name))
	}
}

// buildGraph scans both partitions (spec §4.2), loads any extra-deps
// file, and resolves the result (spec §4.3). Either of --system/--vendor
// may be omitted if the caller only cares about one partition.
func buildGraph(f *scanFlags) (*graph.Graph, error) {
	g := graph.New()

	if f.system != "" {
		n, err := scan.Dir(g, scan.Options{Root: f.system, Partition: graph.System, AlterSubdirs: f.systemDirAsVendor}, log)
		if err != nil {
			return nil, fmt.Errorf("scan --system %s: %w", f.system, err)
		}
		log.Info("scanned system partition", zap.Int("count", n))
	}
	if f.vendor != "" {
		n, err := scan.Dir(g, scan.Options{Root: f.vendor, Partition: graph.Vendor, AlterSubdirs: f.vendorDirAsSystem}, log)
		if err != nil {
			return nil, fmt.Errorf("scan --vendor %s: %w", f.vendor, err)
		}
		log.Info("scanned vendor partition", zap.Int("count", n))
	}
	if f.loadExtraDeps != "" {
		if err := scan.LoadExtraDeps(g, f.loadExtraDeps, log); err != nil {
			return nil, fmt.Errorf("load-extra-deps %s: %w", f.loadExtraDeps, err)
		}
	}

	resolve.Graph(g, log)
	return g, nil
}

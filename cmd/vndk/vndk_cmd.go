package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vndk/vndk-tool/internal/banned"
	"github.com/vndk/vndk-tool/internal/genericref"
	"github.com/vndk/vndk-tool/internal/graph"
	"github.com/vndk/vndk-tool/internal/report"
	"github.com/vndk/vndk-tool/internal/vlog"
	"github.com/vndk/vndk-tool/internal/vndk"
)

// newVndkCmd implements the vndk subcommand (spec §4.6, §6): the
// classifier run, plus the four semantic --warn-* gates (SPEC_FULL
// supplement #5).
func newVndkCmd() *cobra.Command {
	var flags scanFlags
	var (
		loadGenericRefs   string
		banVendorLibDep   []string
		warnBannedVendor  bool
		warnUnresolvedSym bool
		warnNoNdkNdkLink  bool
		warnHighLevelNdk  bool
	)

	cmd := &cobra.Command{
		Use:   "vndk",
		Short: "Compute the VNDK library classification for a scanned graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := buildGraph(&flags)
			if err != nil {
				return err
			}

			bannedDict := banned.Default()
			if len(banVendorLibDep) > 0 {
				bannedDict = make(banned.Dict)
				for _, name := range banVendorLibDep {
					bannedDict.Ban(name, "disallowed via --ban-vendor-lib-dep", banned.Exclude)
				}
			}

			var refStore *genericref.Store
			if loadGenericRefs != "" {
				refStore, err = genericref.Load(loadGenericRefs)
				if err != nil {
					return fmt.Errorf("vndk: --load-generic-refs %s: %w", loadGenericRefs, err)
				}
			}

			res := vndk.Compute(g, vndk.Options{Banned: bannedDict, GenericRef: refStore}, log)

			if warnBannedVendor {
				warnBannedVendorLibDeps(g, bannedDict, log)
			}
			if warnUnresolvedSym {
				warnUnresolvedSymbols(g, log)
			}
			if warnNoNdkNdkLink {
				warnIncorrectPartition(g, log)
			}
			if warnHighLevelNdk {
				warnHighLevelNDKUse(res, log)
			}

			return report.Write(os.Stdout, res)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&loadGenericRefs, "load-generic-refs", "", "generic reference .sym tree to compare against")
	cmd.Flags().StringArrayVar(&banVendorLibDep, "ban-vendor-lib-dep", nil, "replace the default banned-library dict with these names")
	cmd.Flags().BoolVar(&warnBannedVendor, "warn-banned-vendor-lib-dep", true, "warn when a vendor binary depends on a banned library")
	cmd.Flags().BoolVar(&warnUnresolvedSym, "warn-unresolved-symbol", true, "warn about every unresolved imported symbol")
	cmd.Flags().BoolVar(&warnNoNdkNdkLink, "warn-no-ndk-ndk-link", true, "warn about libraries used only across the opposite partition")
	cmd.Flags().BoolVar(&warnHighLevelNdk, "warn-high-level-ndk", true, "warn when a VNDK library depends on a high-level NDK library")
	return cmd
}

// warnBannedVendorLibDeps warns when a vendor-partition node depends on
// a banned library (original tool's _warn_banned_vendor_lib_deps).
func warnBannedVendorLibDeps(g *graph.Graph, b banned.Dict, log *vlog.Logger) {
	for _, n := range graph.SortedNodes(g.Vendor()) {
		for _, d := range n.Deps() {
			entry, ok := b.Lookup(filepath.Base(d.Path))
			if !ok {
				continue
			}
			log.Warn("vendor binary depends on banned library",
				vlog.Path(n.Path), vlog.Reason(entry.Reason), vlog.Symbol(d.Path))
		}
	}
}

// warnUnresolvedSymbols warns about every node carrying unresolved
// imported symbols (spec §7 "resolution warnings").
func warnUnresolvedSymbols(g *graph.Graph, log *vlog.Logger) {
	for _, wm := range g.WordMaps() {
		for _, n := range graph.SortedNodes(wm) {
			if len(n.UnresolvedSymbols) == 0 {
				continue
			}
			syms := make([]string, 0, len(n.UnresolvedSymbols))
			for s := range n.UnresolvedSymbols {
				syms = append(syms, s)
			}
			log.Warn("library has unresolved imported symbols", vlog.Path(n.Path), vlog.Candidates(syms))
		}
	}
}

// warnIncorrectPartition warns about libraries whose only users live in
// the opposite partition: a sign the library itself is misplaced
// (original tool's _warn_incorrect_partition).
func warnIncorrectPartition(g *graph.Graph, log *vlog.Logger) {
	for _, wm := range g.WordMaps() {
		for _, n := range graph.SortedNodes(wm) {
			users := n.Users()
			if len(users) == 0 {
				continue
			}
			allOpposite := true
			for _, u := range users {
				if u.Partition == n.Partition {
					allOpposite = false
					break
				}
			}
			if allOpposite {
				log.Warn("library is only used from the opposite partition", vlog.Path(n.Path))
			}
		}
	}
}

// warnHighLevelNDKUse warns when a VNDK-classified library directly
// depends on a high-level NDK library (SPEC_FULL supplement #4).
func warnHighLevelNDKUse(res *vndk.Result, log *vlog.Logger) {
	for _, categoryName := range []string{"vndk-core", "vndk-indirect", "vndk-fwk-ext", "vndk-vnd-ext"} {
		var set map[string]*graph.Node
		switch categoryName {
		case "vndk-core":
			set = res.VndkCore
		case "vndk-indirect":
			set = res.VndkIndirect
		case "vndk-fwk-ext":
			set = res.VndkFwkExt
		case "vndk-vnd-ext":
			set = res.VndkVndExt
		}
		for _, n := range graph.SortedNodes(set) {
			for _, d := range n.Deps() {
				if graph.IsHighLevelNDKName(filepath.Base(d.Path)) {
					log.Warn("VNDK library depends on high-level NDK library",
						vlog.Path(n.Path), vlog.Symbol(d.Path), vlog.Reason(categoryName))
				}
			}
		}
	}
}

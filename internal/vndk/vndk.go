// Package vndk implements the VNDK classifier (spec §4.6): the nine-step
// algorithm that partitions a resolved graph into the seven VNDK
// categories, plus the extended-symbol-users computation and the
// closure primitive the steps are built from.
package vndk

import (
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/vndk/vndk-tool/internal/banned"
	"github.com/vndk/vndk-tool/internal/genericref"
	"github.com/vndk/vndk-tool/internal/graph"
	"github.com/vndk/vndk-tool/internal/sphal"
	"github.com/vndk/vndk-tool/internal/vlog"
)

// Options configures one classification run.
type Options struct {
	// Banned is the dictionary of libraries excluded from VNDK
	// membership regardless of their candidacy otherwise (spec §4.5).
	Banned banned.Dict
	// GenericRef is the optional reference store (spec §4.4); when nil,
	// steps 5-7 are skipped and every VNDK candidate becomes vndk_core
	// directly.
	GenericRef *genericref.Store
	// VndkStablePaths names libraries treated as having a stable ABI
	// across framework and vendor (spec §9 open question (a)): supplied
	// by configuration, never inferred. Empty by default.
	VndkStablePaths []string
}

// Result holds the seven output sets (spec §3), each keyed by canonical
// path for deterministic reporting (spec §5, §9).
type Result struct {
	ExtraSystemLibs map[string]*graph.Node
	ExtraVendorLibs map[string]*graph.Node
	ExtraVndkCore   map[string]*graph.Node
	VndkCore        map[string]*graph.Node
	VndkIndirect    map[string]*graph.Node
	VndkFwkExt      map[string]*graph.Node
	VndkVndExt      map[string]*graph.Node
	// SPHAL is the same-process HAL set computed in step 1 (spec §4.6
	// step 1): recognized but, per spec, not closed here.
	SPHAL map[string]*graph.Node
}

func newResult() *Result {
	return &Result{
		ExtraSystemLibs: make(map[string]*graph.Node),
		ExtraVendorLibs: make(map[string]*graph.Node),
		ExtraVndkCore:   make(map[string]*graph.Node),
		VndkCore:        make(map[string]*graph.Node),
		VndkIndirect:    make(map[string]*graph.Node),
		VndkFwkExt:      make(map[string]*graph.Node),
		VndkVndExt:      make(map[string]*graph.Node),
		SPHAL:           make(map[string]*graph.Node),
	}
}

// allNodes returns every node in g (both word-size maps), sorted by
// canonical path. deps/users edges never cross word size (spec §8), so
// processing the union is equivalent to processing each word-size map
// independently.
func allNodes(g *graph.Graph) []*graph.Node {
	combined := make(map[string]*graph.Node, len(g.Lib32())+len(g.Lib64()))
	for p, n := range g.Lib32() {
		combined[p] = n
	}
	for p, n := range g.Lib64() {
		combined[p] = n
	}
	return graph.SortedNodes(combined)
}

func isNotVndk(n *graph.Node, b banned.Dict) bool {
	return n.IsNDK || b.Contains(filepath.Base(n.Path))
}

// Compute runs the full classifier (spec §4.6 steps 1-9) over g and
// returns the result. g's topology must already be final (post
// resolve.Graph); Compute mutates only ExtendedSymbolUsers and node
// partitions (step 3's correction), never deps/users (spec §5).
func Compute(g *graph.Graph, opts Options, log *vlog.Logger) *Result {
	if log == nil {
		log = vlog.NewNop()
	}
	nodes := allNodes(g)
	res := newResult()

	// rawPartition snapshots each node's partition as scanned, before step
	// 3's correction mutates graph.Node.Partition. Step 4's "has vendor
	// user" check must read this snapshot, not the mutated field
	// (ground truth: collect_libs_with_partition_user checks the never-
	// mutated lib.partition attribute, not the growing system_libs/
	// vendor_libs sets that step 3's correction populates).
	rawPartition := make(map[*graph.Node]graph.Partition, len(nodes))
	for _, n := range nodes {
		rawPartition[n] = n.Partition
	}

	// Step 1: same-process HAL set.
	for _, n := range nodes {
		if sphal.Is(n.Path) {
			res.SPHAL[n.Path] = n
		}
	}

	// Step 2: VNDK-stable placeholder (spec §9 open question (a)).
	vndkStable := make(map[string]*graph.Node)
	for _, p := range opts.VndkStablePaths {
		if n, ok := g.Lookup(p); ok {
			vndkStable[p] = n
		}
	}

	if opts.GenericRef != nil {
		PopulateExtendedSymbolUsers(g, opts.GenericRef)
	}

	// Step 3: partition correction, dependencies before dependents.
	depOrder := postOrder(nodes, func(n *graph.Node) []*graph.Node { return n.Deps() })
	for _, n := range depOrder {
		if n.Partition != graph.System {
			continue
		}
		var offenders []*graph.Node
		for _, d := range n.Deps() {
			if d.Partition == graph.Vendor {
				if _, sp := res.SPHAL[d.Path]; !sp {
					offenders = append(offenders, d)
				}
			}
		}
		if len(offenders) == 0 {
			continue
		}
		sort.Slice(offenders, func(i, j int) bool { return offenders[i].Path < offenders[j].Path })
		fields := []zap.Field{vlog.Path(n.Path)}
		for _, o := range offenders {
			fields = append(fields, zap.String("vendor_dep", o.Path))
		}
		log.Warn("system library depends on non-SP-HAL vendor library, reassigning to vendor partition", fields...)
		g.MoveToVendor(n)
	}

	// systemMembers/vendorMembers are the growing system_libs/vendor_libs
	// membership sets (ground truth: compute_vndk_libs), seeded from the
	// post-correction partition and grown by steps 5-7. A node can belong
	// to both (NEW_LIB, or a vndk-ext candidate used from both
	// partitions), which a single-valued Node.Partition field cannot
	// represent.
	systemMembers := make(map[*graph.Node]bool, len(nodes))
	vendorMembers := make(map[*graph.Node]bool, len(nodes))
	for _, n := range nodes {
		if n.Partition == graph.System {
			systemMembers[n] = true
		} else {
			vendorMembers[n] = true
		}
	}

	// Step 4: VNDK candidate seed set. Uses rawPartition, not the
	// post-correction partition or the membership sets above: a system
	// library's only "vendor user" being another system library that step
	// 3 just reassigned must not make it a candidate (ground truth checks
	// the never-mutated lib.partition attribute here).
	candidates := make(map[string]*graph.Node)
	for _, n := range nodes {
		if n.Partition != graph.System {
			continue
		}
		if isNotVndk(n, opts.Banned) {
			continue
		}
		hasVendorUser := false
		for _, u := range n.Users() {
			if rawPartition[u] == graph.Vendor {
				hasVendorUser = true
				break
			}
		}
		if hasVendorUser {
			candidates[n.Path] = n
		}
	}

	if opts.GenericRef == nil {
		for p, n := range candidates {
			res.VndkCore[p] = n
		}
		finishClosures(g, res, opts, vndkStable)
		return res
	}

	// Step 5: reference-guided sorting.
	customized := make(map[string]*graph.Node)
	extended := make(map[string]*graph.Node)
	for _, path := range graph.SortedPaths(candidates) {
		n := candidates[path]
		switch opts.GenericRef.Classify(n) {
		case genericref.NewLib:
			systemMembers[n] = true
			vendorMembers[n] = true
			res.ExtraSystemLibs[path] = n
			res.ExtraVendorLibs[path] = n
		case genericref.ExportEqual:
			customized[path] = n
		case genericref.ExportSuperSet:
			extended[path] = n
		case genericref.Modified:
			log.Error("vndk library must not be modified", vlog.Path(path))
		}
	}

	// Step 6: customized candidates.
	for _, path := range graph.SortedPaths(customized) {
		n := customized[path]
		systemMembers[n] = true
		if len(n.ExtendedSymbolUsers) == 0 {
			res.VndkCore[path] = n
			continue
		}
		res.ExtraVndkCore[path] = n
		res.VndkFwkExt[path] = n
	}

	// Step 7: extended candidates, reverse-post-order of users.
	extendedNodes := graph.SortedNodes(extended)
	userOrder := postOrder(extendedNodes, func(n *graph.Node) []*graph.Node {
		var out []*graph.Node
		for _, u := range n.Users() {
			if _, ok := extended[u.Path]; ok {
				out = append(out, u)
			}
		}
		return out
	})
	for _, n := range userOrder {
		hasSystemUser := false
		hasVendorUser := false
		for _, u := range sortedExtendedUsers(n) {
			if systemMembers[u] {
				hasSystemUser = true
			}
			if vendorMembers[u] {
				hasVendorUser = true
			}
		}
		if hasSystemUser {
			systemMembers[n] = true
			res.VndkFwkExt[n.Path] = n
		}
		if hasVendorUser {
			vendorMembers[n] = true
			res.VndkVndExt[n.Path] = n
		}
	}

	finishClosures(g, res, opts, vndkStable)
	return res
}

func finishClosures(g *graph.Graph, res *Result, opts Options, vndkStable map[string]*graph.Node) {
	// Step 8: indirect closure.
	excludedForIndirect := func(n *graph.Node) bool {
		if isNotVndk(n, opts.Banned) {
			return true
		}
		if _, ok := res.ExtraVendorLibs[n.Path]; ok {
			return true
		}
		return false
	}
	closureSet := Closure(graph.SortedNodes(res.VndkCore), excludedForIndirect)
	for path, n := range closureSet {
		if _, core := res.VndkCore[path]; !core {
			res.VndkIndirect[path] = n
		}
	}

	// Step 9: extension closures.
	excludedForExt := func(n *graph.Node) bool {
		if isNotVndk(n, opts.Banned) {
			return true
		}
		if _, ok := res.VndkCore[n.Path]; ok {
			return true
		}
		if _, ok := res.VndkIndirect[n.Path]; ok {
			return true
		}
		if _, ok := vndkStable[n.Path]; ok {
			return true
		}
		if _, ok := res.SPHAL[n.Path]; ok {
			return true
		}
		return false
	}
	fwkClosure := Closure(graph.SortedNodes(res.VndkFwkExt), excludedForExt)
	for path, n := range fwkClosure {
		res.VndkFwkExt[path] = n
	}
	vndClosure := Closure(graph.SortedNodes(res.VndkVndExt), excludedForExt)
	for path, n := range vndClosure {
		res.VndkVndExt[path] = n
	}
}

func sortedExtendedUsers(n *graph.Node) []*graph.Node {
	out := make([]*graph.Node, 0, len(n.ExtendedSymbolUsers))
	for u := range n.ExtendedSymbolUsers {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// PopulateExtendedSymbolUsers fills in Node.ExtendedSymbolUsers for
// every system node once resolution has completed (spec §4.6 "Extended-
// symbol-users computation"). Only meaningful when a generic reference
// store is present.
func PopulateExtendedSymbolUsers(g *graph.Graph, store *genericref.Store) {
	for _, n := range allNodes(g) {
		if n.Partition != graph.System {
			continue
		}
		ref, ok := store.Lookup(n.Path)
		if !ok {
			for _, u := range n.Users() {
				n.ExtendedSymbolUsers[u] = struct{}{}
			}
			continue
		}
		for _, u := range n.Users() {
			for sym, provider := range u.LinkedSymbols {
				if provider != n {
					continue
				}
				if _, inRef := ref[sym]; !inRef {
					n.ExtendedSymbolUsers[u] = struct{}{}
				}
			}
		}
	}
}

// Closure computes the standard BFS/DFS transitive closure over deps
// (spec §4.6 "Closure primitive"), exported for the deps-closure CLI
// view as well as internal classifier use.
func Closure(roots []*graph.Node, excluded func(*graph.Node) bool) map[string]*graph.Node {
	out := make(map[string]*graph.Node)
	var visit func(n *graph.Node)
	visit = func(n *graph.Node) {
		if _, ok := out[n.Path]; ok {
			return
		}
		out[n.Path] = n
		for _, d := range n.Deps() {
			if excluded(d) {
				continue
			}
			visit(d)
		}
	}
	for _, r := range roots {
		out[r.Path] = r
	}
	for _, r := range roots {
		for _, d := range r.Deps() {
			if excluded(d) {
				continue
			}
			visit(d)
		}
	}
	return out
}

// postOrder returns nodes reachable from roots via edgeFunc in DFS
// post-order (children fully visited before their parent is appended),
// i.e. dependencies before dependents when edgeFunc is Deps. Roots not
// reachable from one another are each visited in the given order.
func postOrder(roots []*graph.Node, edgeFunc func(*graph.Node) []*graph.Node) []*graph.Node {
	visited := make(map[*graph.Node]bool, len(roots))
	var out []*graph.Node
	var visit func(n *graph.Node)
	visit = func(n *graph.Node) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, next := range edgeFunc(n) {
			visit(next)
		}
		out = append(out, n)
	}
	for _, r := range roots {
		visit(r)
	}
	return out
}

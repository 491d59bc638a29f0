// Package resolve implements the dependency and symbol resolver (spec
// §4.3): converting DT_NEEDED names into node references and imported
// symbols into provider-node references, independently per word size.
package resolve

import (
	"path"

	"go.uber.org/zap"

	"github.com/vndk/vndk-tool/internal/graph"
	"github.com/vndk/vndk-tool/internal/vlog"
)

// DefaultSearchPath returns the default ordered search path for a given
// word size (spec §4.3): lib64 directories for 64-bit libraries, lib for
// 32-bit.
func DefaultSearchPath(is64 bool) []string {
	if is64 {
		return []string{"/system/lib64", "/vendor/lib64"}
	}
	return []string{"/system/lib", "/vendor/lib"}
}

// Graph resolves every node in every word-size map of g (spec §4.3: "for
// each word-size map independently"). It mutates deps/users and the
// symbol maps on each node; after it returns, topology is immutable
// (spec §5).
func Graph(g *graph.Graph, log *vlog.Logger) {
	if log == nil {
		log = vlog.NewNop()
	}
	resolveWordMap(g, g.Lib32(), DefaultSearchPath(false), log)
	resolveWordMap(g, g.Lib64(), DefaultSearchPath(true), log)
}

func resolveWordMap(g *graph.Graph, wordMap map[string]*graph.Node, defaultSearch []string, log *vlog.Logger) {
	nodes := graph.SortedNodes(wordMap)

	// Step 1: resolve DT_NEEDED to provider nodes, recording the
	// provider list in DT_NEEDED order for step 2's tie-break.
	providerLists := make(map[*graph.Node][]*graph.Node, len(nodes))
	for _, n := range nodes {
		var providers []*graph.Node
		for _, needed := range n.ELF.DTNeeded {
			provider, candidates := findProvider(wordMap, n, needed, defaultSearch)
			if provider == nil {
				log.Warn("unresolved DT_NEEDED",
					vlog.Path(n.Path), zap.String("needed", needed), vlog.Candidates(candidates))
				continue
			}
			graph.AddEdge(n, provider)
			providers = append(providers, provider)
		}
		providerLists[n] = providers
	}

	// Step 2: resolve imported symbols against the DT_NEEDED-ordered
	// provider list, first match wins (spec §4.3 step 2, §9(b): this is
	// intentional, not a stand-in for BFS).
	for _, n := range nodes {
		providers := providerLists[n]
		for sym := range n.ELF.ImportedSymbols {
			found := false
			for _, p := range providers {
				if _, ok := p.ELF.ExportedSymbols[sym]; ok {
					n.LinkedSymbols[sym] = p
					found = true
					break
				}
			}
			if !found {
				n.UnresolvedSymbols[sym] = struct{}{}
			}
		}
	}
}

// findProvider searches n's DT_RPATH, then DT_RUNPATH, then the default
// search path, each joined with needed, returning the first candidate
// present in wordMap (spec §4.3 step 1). It also returns the full
// candidate list tried, for diagnostics.
func findProvider(wordMap map[string]*graph.Node, n *graph.Node, needed string, defaultSearch []string) (*graph.Node, []string) {
	var candidates []string
	tryDirs := func(dirs []string) *graph.Node {
		for _, dir := range dirs {
			cand := path.Join(dir, needed)
			candidates = append(candidates, cand)
			if p, ok := wordMap[cand]; ok {
				return p
			}
		}
		return nil
	}
	if p := tryDirs(n.ELF.DTRpath); p != nil {
		return p, candidates
	}
	if p := tryDirs(n.ELF.DTRunpath); p != nil {
		return p, candidates
	}
	if p := tryDirs(defaultSearch); p != nil {
		return p, candidates
	}
	return nil, candidates
}

// Package graph implements the per-word-size, per-partition library
// dependency graph (spec §3, §4.2).
package graph

import (
	"sort"

	"github.com/vndk/vndk-tool/internal/rawelf"
)

// Partition is one of the two top-level filesystem roots a library
// resides in (spec §3).
type Partition int

const (
	System Partition = iota
	Vendor
)

func (p Partition) String() string {
	if p == Vendor {
		return "vendor"
	}
	return "system"
}

// Node is a library node (spec §3). deps/users are non-owning references
// (spec §9): ownership of every Node lives in the Graph's word-size maps.
type Node struct {
	Partition Partition
	Path      string // canonical absolute path, forward-slash, /system or /vendor rooted
	ELF       *rawelf.Record

	deps  map[*Node]struct{}
	users map[*Node]struct{}

	// LinkedSymbols maps an imported symbol name to the node that
	// provides it (spec §4.3 step 2).
	LinkedSymbols map[string]*Node
	// UnresolvedSymbols holds imported symbol names with no provider.
	UnresolvedSymbols map[string]struct{}
	// ExtendedSymbolUsers holds user nodes that consume symbols
	// exported here but absent from the generic reference (populated
	// only when a generic reference is present; spec §4.6).
	ExtendedSymbolUsers map[*Node]struct{}

	// IsNDK is derived from base-name membership in the NDK low-level
	// or high-level name sets (spec §3, GLOSSARY).
	IsNDK bool
}

// Deps returns this node's dependencies, sorted by canonical path for
// determinism (spec §5, §9).
func (n *Node) Deps() []*Node { return sortedNodes(n.deps) }

// Users returns this node's reverse dependencies (users), sorted by
// canonical path.
func (n *Node) Users() []*Node { return sortedNodes(n.users) }

// HasDep reports whether n directly depends on d.
func (n *Node) HasDep(d *Node) bool {
	_, ok := n.deps[d]
	return ok
}

func sortedNodes(set map[*Node]struct{}) []*Node {
	out := make([]*Node, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Graph holds the word-size-disjoint and partition-disjoint node indices
// (spec §3). Every node appears in exactly one word-size map and exactly
// one partition map.
type Graph struct {
	lib32 map[string]*Node
	lib64 map[string]*Node

	system map[string]*Node
	vendor map[string]*Node
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		lib32:  make(map[string]*Node),
		lib64:  make(map[string]*Node),
		system: make(map[string]*Node),
		vendor: make(map[string]*Node),
	}
}

// Add creates a node for path/elf in partition and inserts it into the
// word-size map matching elf.Class and into the partition index (spec
// §4.2). Duplicate paths within a word-size map overwrite; callers must
// not rely on this (inputs are assumed unique).
func (g *Graph) Add(partition Partition, path string, elf *rawelf.Record, isNDK bool) *Node {
	n := &Node{
		Partition:           partition,
		Path:                path,
		ELF:                 elf,
		deps:                make(map[*Node]struct{}),
		users:               make(map[*Node]struct{}),
		LinkedSymbols:       make(map[string]*Node),
		UnresolvedSymbols:   make(map[string]struct{}),
		ExtendedSymbolUsers: make(map[*Node]struct{}),
		IsNDK:               isNDK,
	}
	g.wordMap(elf.Class)[path] = n
	g.partitionMap(partition)[path] = n
	return n
}

func (g *Graph) wordMap(class rawelf.Class) map[string]*Node {
	if class == rawelf.Class32 {
		return g.lib32
	}
	return g.lib64
}

func (g *Graph) partitionMap(p Partition) map[string]*Node {
	if p == Vendor {
		return g.vendor
	}
	return g.system
}

// AddEdge records that src depends on dst (deps(src) ∋ dst and users(dst)
// ∋ src — spec §3 invariant).
func AddEdge(src, dst *Node) {
	src.deps[dst] = struct{}{}
	dst.users[src] = struct{}{}
}

// Lib32 returns the 32-bit word-size map (path → node).
func (g *Graph) Lib32() map[string]*Node { return g.lib32 }

// Lib64 returns the 64-bit word-size map (path → node).
func (g *Graph) Lib64() map[string]*Node { return g.lib64 }

// WordMaps returns both word-size maps, useful for "for each word size
// independently" operations (spec §4.3).
func (g *Graph) WordMaps() []map[string]*Node { return []map[string]*Node{g.lib32, g.lib64} }

// Lookup finds the node for path regardless of word size, or (nil,false)
// if absent from both maps. If present in both (which cannot legitimately
// happen given unique canonical paths), the 64-bit entry wins.
func (g *Graph) Lookup(path string) (*Node, bool) {
	if n, ok := g.lib64[path]; ok {
		return n, true
	}
	n, ok := g.lib32[path]
	return n, ok
}

// System returns the system-partition index (path → node).
func (g *Graph) System() map[string]*Node { return g.system }

// Vendor returns the vendor-partition index (path → node).
func (g *Graph) Vendor() map[string]*Node { return g.vendor }

// MoveToVendor reassigns n from the system partition to the vendor
// partition (spec §4.6 step 3: partition correction). n must currently be
// a system-partition node.
func (g *Graph) MoveToVendor(n *Node) {
	delete(g.system, n.Path)
	n.Partition = Vendor
	g.vendor[n.Path] = n
}

// SortedPaths returns path, sorted ascending, for every node in m. Used
// throughout the classifier and reporter to guarantee deterministic
// iteration order (spec §5, §9).
func SortedPaths(m map[string]*Node) []string {
	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// SortedNodes returns the nodes of m ordered by ascending canonical path.
func SortedNodes(m map[string]*Node) []*Node {
	paths := SortedPaths(m)
	out := make([]*Node, len(paths))
	for i, p := range paths {
		out[i] = m[p]
	}
	return out
}

// Package genericref implements the generic-reference store (spec
// §4.4): an immutable mapping from canonical library path to a reference
// exported-symbol set, loaded once from a directory of ".sym" files, used
// to classify a live node against its known-good baseline.
package genericref

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vndk/vndk-tool/internal/graph"
)

// Classification is the 4-way outcome of comparing a live node's
// exported symbols against its generic-reference entry.
type Classification int

const (
	// NewLib means the library has no entry in the reference store.
	NewLib Classification = iota
	// ExportEqual means the live export set equals the reference set.
	ExportEqual
	// ExportSuperSet means the live export set is a strict superset of
	// the reference set (the library adds symbols but drops none).
	ExportSuperSet
	// Modified means the live export set is missing or has renamed
	// symbols relative to the reference (neither equal nor a superset).
	Modified
)

func (c Classification) String() string {
	switch c {
	case NewLib:
		return "NEW_LIB"
	case ExportEqual:
		return "EXPORT_EQUAL"
	case ExportSuperSet:
		return "EXPORT_SUPER_SET"
	case Modified:
		return "MODIFIED"
	default:
		return "UNKNOWN"
	}
}

// Store is the immutable canonical-path → reference-symbol-set mapping
// (spec §4.4 "built once from a reference directory tree; immutable
// thereafter").
type Store struct {
	refs map[string]map[string]struct{}
}

// Load recursively walks root; every file with a ".sym" suffix is read
// as one symbol name per line (blank lines skipped, surrounding
// whitespace stripped) and registered under the canonical path
// "/" + relpath-without-suffix (spec §4.4, §6).
func Load(root string) (*Store, error) {
	s := &Store{refs: make(map[string]map[string]struct{})}
	err := filepath.WalkDir(root, func(hostPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(hostPath, ".sym") {
			return nil
		}
		rel, err := filepath.Rel(root, hostPath)
		if err != nil {
			return err
		}
		rel = strings.TrimSuffix(filepath.ToSlash(rel), ".sym")
		canonical := "/" + strings.TrimPrefix(rel, "/")

		syms, err := readSymbolFile(hostPath)
		if err != nil {
			return err
		}
		s.refs[canonical] = syms
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func readSymbolFile(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	syms := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		syms[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return syms, nil
}

// Lookup returns the reference symbol set for path, if any.
func (s *Store) Lookup(path string) (map[string]struct{}, bool) {
	syms, ok := s.refs[path]
	return syms, ok
}

// Classify compares live's exported symbols against the store entry for
// live.Path (spec §4.4).
func (s *Store) Classify(live *graph.Node) Classification {
	ref, ok := s.refs[live.Path]
	if !ok {
		return NewLib
	}
	exported := live.ELF.ExportedSymbols

	if setEqual(exported, ref) {
		return ExportEqual
	}
	if isStrictSuperset(exported, ref) {
		return ExportSuperSet
	}
	return Modified
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func isStrictSuperset(a, b map[string]struct{}) bool {
	if len(a) <= len(b) {
		return false
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			return false
		}
	}
	return true
}

// Dump writes one ".sym" file per node in nodes into dir, one exported
// symbol name per line sorted ascending, named after the node's
// canonical path with the leading slash stripped (supplemented feature:
// the create-generic-ref round trip, spec §8 "dump_exported_symbols
// round-trip").
func Dump(dir string, nodes []*graph.Node) error {
	for _, n := range nodes {
		rel := strings.TrimPrefix(n.Path, "/")
		dest := filepath.Join(dir, filepath.FromSlash(rel)+".sym")
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("genericref: dump %s: %w", n.Path, err)
		}

		names := make([]string, 0, len(n.ELF.ExportedSymbols))
		for name := range n.ELF.ExportedSymbols {
			names = append(names, name)
		}
		sort.Strings(names)

		var sb strings.Builder
		for _, name := range names {
			sb.WriteString(name)
			sb.WriteByte('\n')
		}
		if err := os.WriteFile(dest, []byte(sb.String()), 0o644); err != nil {
			return fmt.Errorf("genericref: dump %s: %w", n.Path, err)
		}
	}
	return nil
}

// Package report renders classifier and ELF-decode results as the fixed
// textual formats described in spec §4.7 and the elfdump supplement.
package report

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/vndk/vndk-tool/internal/graph"
	"github.com/vndk/vndk-tool/internal/rawelf"
	"github.com/vndk/vndk-tool/internal/vndk"
)

// category pairs a fixed report-line prefix with the result set it
// reports on, in the fixed emission order (spec §4.7, §6 "Report
// output").
type category struct {
	prefix string
	set    map[string]*graph.Node
}

// Write emits res as one "prefix: canonical_path" line per library, in
// fixed category order, nodes sorted by path within each category (spec
// §4.7).
func Write(w io.Writer, res *vndk.Result) error {
	bw := bufio.NewWriter(w)
	categories := []category{
		{"extra-system-lib", res.ExtraSystemLibs},
		{"extra-vendor-lib", res.ExtraVendorLibs},
		{"extra-vndk-core", res.ExtraVndkCore},
		{"vndk-core", res.VndkCore},
		{"vndk-indirect", res.VndkIndirect},
		{"vndk-fwk-ext", res.VndkFwkExt},
		{"vndk-vnd-ext", res.VndkVndExt},
	}
	for _, c := range categories {
		for _, path := range graph.SortedPaths(c.set) {
			if _, err := fmt.Fprintf(bw, "%s: %s\n", c.prefix, path); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// WriteDeps emits one "path: assoc1 assoc2 ..." line per node in nodes,
// nodes and the associated list both sorted by path (supplemented
// feature: the "deps" subcommand). assoc selects which edge set to print
// per node — n.Deps for the default view, n.Users for --revert.
func WriteDeps(w io.Writer, nodes []*graph.Node, assoc func(*graph.Node) []*graph.Node) error {
	bw := bufio.NewWriter(w)
	for _, n := range nodes {
		if _, err := fmt.Fprintf(bw, "%s:", n.Path); err != nil {
			return err
		}
		for _, d := range assoc(n) {
			if _, err := fmt.Fprintf(bw, " %s", d.Path); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(bw); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteLeaves emits one path per line for every node in nodes whose
// assoc list is empty (supplemented feature: the "deps --leaf" view,
// grounded in the original tool's --leaf flag: binaries with no
// dependencies or no users, depending on which assoc is passed).
func WriteLeaves(w io.Writer, nodes []*graph.Node, assoc func(*graph.Node) []*graph.Node) error {
	bw := bufio.NewWriter(w)
	for _, n := range nodes {
		if len(assoc(n)) != 0 {
			continue
		}
		if _, err := fmt.Fprintln(bw, n.Path); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteClosure emits one canonical path per line, sorted, for every node
// in nodes (supplemented feature: the "deps-closure" subcommand output).
func WriteClosure(w io.Writer, nodes map[string]*graph.Node) error {
	bw := bufio.NewWriter(w)
	for _, path := range graph.SortedPaths(nodes) {
		if _, err := fmt.Fprintln(bw, path); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ELFSummary renders the decoded fields of one ELF record for the
// "elfdump" subcommand (supplemented feature #1): class, endianness,
// machine, rpath/runpath/needed entries in file order, and exported/
// imported symbol names sorted for reproducibility.
func ELFSummary(w io.Writer, path string, rec *rawelf.Record) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "path: %s\n", path)
	fmt.Fprintf(bw, "class: ELF%s\n", rec.Class)
	fmt.Fprintf(bw, "endian: %s\n", rec.Data)
	fmt.Fprintf(bw, "machine: %s\n", rec.Machine)
	for _, n := range rec.DTNeeded {
		fmt.Fprintf(bw, "needed: %s\n", n)
	}
	for _, p := range rec.DTRpath {
		fmt.Fprintf(bw, "rpath: %s\n", p)
	}
	for _, p := range rec.DTRunpath {
		fmt.Fprintf(bw, "runpath: %s\n", p)
	}
	for _, s := range sortedKeys(rec.ExportedSymbols) {
		fmt.Fprintf(bw, "exported: %s\n", s)
	}
	for _, s := range sortedKeys(rec.ImportedSymbols) {
		fmt.Fprintf(bw, "imported: %s\n", s)
	}
	return bw.Flush()
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

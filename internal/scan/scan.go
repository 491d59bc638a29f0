// Package scan walks a filesystem root, ELF-parses every readable
// regular file it finds, and inserts successes into a graph under the
// requested partition (spec §4.2). Files that don't parse as ELF are
// skipped, not fatal (spec §4.1 "Failure semantics").
package scan

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/vndk/vndk-tool/internal/graph"
	"github.com/vndk/vndk-tool/internal/rawelf"
	"github.com/vndk/vndk-tool/internal/vlog"
)

// Options configures one directory scan.
type Options struct {
	// Root is the host filesystem directory to walk.
	Root string
	// Partition is the partition new nodes are inserted under by
	// default.
	Partition graph.Partition
	// AlterSubdirs reassigns nodes whose path (relative to Root) lies
	// inside one of these subdirectories to the opposite partition
	// (spec §4.2 "alter subdirs facility" — used when a single host
	// tree mixes contents, e.g. --system-dir-as-vendor).
	AlterSubdirs []string
}

// Dir walks opts.Root, mmaps and ELF-parses each readable regular file,
// and inserts every success into g. It returns the number of libraries
// successfully inserted.
func Dir(g *graph.Graph, opts Options, log *vlog.Logger) (int, error) {
	if log == nil {
		log = vlog.NewNop()
	}
	count := 0
	err := filepath.WalkDir(opts.Root, func(hostPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(opts.Root, hostPath)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		partition := opts.Partition
		if inAlteredSubdir(rel, opts.AlterSubdirs) {
			partition = flip(partition)
		}

		rec, err := ParseFile(hostPath)
		if err != nil {
			// Not an ELF, or malformed: skip, not fatal (spec §4.1,
			// §7).
			log.Debug("skipping non-ELF or malformed file",
				vlog.Path(hostPath), zap.Error(err))
			return nil
		}

		canonical := CanonicalPath(partition, rel)
		isNDK := graph.IsNDKName(filepath.Base(canonical))
		g.Add(partition, canonical, rec, isNDK)
		count++
		return nil
	})
	return count, err
}

func flip(p graph.Partition) graph.Partition {
	if p == graph.Vendor {
		return graph.System
	}
	return graph.Vendor
}

func inAlteredSubdir(rel string, subdirs []string) bool {
	for _, sd := range subdirs {
		sd = strings.Trim(filepath.ToSlash(sd), "/")
		if sd == "" {
			continue
		}
		if rel == sd || strings.HasPrefix(rel, sd+"/") {
			return true
		}
	}
	return false
}

// CanonicalPath converts a partition and a root-relative path into the
// canonical on-device path: "/" + partition + "/" + rel (spec §4.2).
func CanonicalPath(partition graph.Partition, rel string) string {
	return "/" + partition.String() + "/" + rel
}

// ParseFile mmaps hostPath and ELF-parses it (spec §4.1, §5). Callers
// outside the directory walk (the elfdump subcommand) use this directly
// to decode a single file.
func ParseFile(hostPath string) (*rawelf.Record, error) {
	f, err := os.Open(hostPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if st.Size() == 0 {
		return nil, fmt.Errorf("empty file")
	}

	// Memory-map the file for zero-copy reads (spec §4.1, §5); the
	// mapping is released before returning so descriptor/mapping usage
	// stays O(1) regardless of how many libraries are scanned.
	data, err := unix.Mmap(int(f.Fd()), 0, int(st.Size()), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}
	defer unix.Munmap(data)

	return rawelf.Parse(data)
}

// LoadExtraDeps reads a text file of "src_path: dst_path" lines (spec
// §4.2, §6) and adds an edge in every word-size map where both endpoints
// exist.
func LoadExtraDeps(g *graph.Graph, path string, log *vlog.Logger) error {
	if log == nil {
		log = vlog.NewNop()
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		src := strings.TrimSpace(line[:idx])
		dst := strings.TrimSpace(line[idx+1:])
		if src == "" || dst == "" {
			continue
		}
		for _, wm := range g.WordMaps() {
			srcNode, srcOK := wm[src]
			dstNode, dstOK := wm[dst]
			if srcOK && dstOK {
				graph.AddEdge(srcNode, dstNode)
			}
		}
	}
	return scanner.Err()
}

package genericref

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vndk/vndk-tool/internal/graph"
	"github.com/vndk/vndk-tool/internal/rawelf"
)

func writeSymFile(t *testing.T, root, rel string, syms []string) {
	t.Helper()
	dest := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		t.Fatal(err)
	}
	content := ""
	for _, s := range syms {
		content += s + "\n"
	}
	if err := os.WriteFile(dest, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func nodeWithExports(exports []string) *graph.Node {
	g := graph.New()
	set := make(map[string]struct{}, len(exports))
	for _, e := range exports {
		set[e] = struct{}{}
	}
	rec := &rawelf.Record{Class: rawelf.Class64, ExportedSymbols: set}
	return g.Add(graph.System, "/system/lib64/libX.so", rec, false)
}

func TestLoadAndClassify(t *testing.T) {
	root := t.TempDir()
	writeSymFile(t, root, "system/lib64/libX.so.sym", []string{"a", "b", "c"})

	store, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name    string
		exports []string
		want    Classification
	}{
		{"equal", []string{"a", "b", "c"}, ExportEqual},
		{"superset", []string{"a", "b", "c", "d"}, ExportSuperSet},
		{"modified", []string{"a", "b"}, Modified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := nodeWithExports(tt.exports)
			n.Path = "/system/lib64/libX.so"
			if got := store.Classify(n); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.exports, got, tt.want)
			}
		})
	}
}

func TestClassifyNewLib(t *testing.T) {
	root := t.TempDir()
	writeSymFile(t, root, "system/lib64/libKnown.so.sym", []string{"a"})
	store, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	n := nodeWithExports([]string{"a"})
	n.Path = "/system/lib64/libUnknown.so"
	if got := store.Classify(n); got != NewLib {
		t.Errorf("Classify(unknown) = %v, want NEW_LIB", got)
	}
}

func TestDumpRoundTrip(t *testing.T) {
	n := nodeWithExports([]string{"z_sym", "a_sym", "m_sym"})
	dir := t.TempDir()

	if err := Dump(dir, []*graph.Node{n}); err != nil {
		t.Fatalf("Dump: %v", err)
	}

	store, err := Load(dir)
	if err != nil {
		t.Fatalf("Load after Dump: %v", err)
	}
	syms, ok := store.Lookup(n.Path)
	if !ok {
		t.Fatalf("expected %s present after round trip", n.Path)
	}
	for _, want := range []string{"z_sym", "a_sym", "m_sym"} {
		if _, ok := syms[want]; !ok {
			t.Errorf("missing symbol %s after round trip", want)
		}
	}
	if len(syms) != 3 {
		t.Errorf("got %d symbols, want 3", len(syms))
	}

	reClassified := store.Classify(n)
	if reClassified != ExportEqual {
		t.Errorf("round-tripped classification = %v, want EXPORT_EQUAL", reClassified)
	}
}

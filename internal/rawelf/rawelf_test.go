package rawelf

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildELF64 assembles a minimal, valid little-endian ELF64 shared
// object containing exactly the sections this decoder reads: .dynstr,
// .dynamic and .dynsym, indexed by a .shstrtab. It exists purely to
// exercise Parse without needing real system libraries on disk.
func buildELF64(t *testing.T, needed, rpath, runpath, exported, imported []string) []byte {
	t.Helper()

	order := binary.LittleEndian

	// Build .dynstr: empty string at offset 0, then every needed name,
	// and every symbol name, each NUL terminated.
	var dynstr bytes.Buffer
	dynstr.WriteByte(0)
	offsets := make(map[string]uint32)
	intern := func(s string) uint32 {
		if off, ok := offsets[s]; ok {
			return off
		}
		off := uint32(dynstr.Len())
		dynstr.WriteString(s)
		dynstr.WriteByte(0)
		offsets[s] = off
		return off
	}
	for _, n := range needed {
		intern(n)
	}
	if len(rpath) > 0 {
		intern(joinColon(rpath))
	}
	if len(runpath) > 0 {
		intern(joinColon(runpath))
	}
	for _, s := range exported {
		intern(s)
	}
	for _, s := range imported {
		intern(s)
	}

	// .dynamic entries: one DT_NEEDED per name, one DT_RPATH, one
	// DT_RUNPATH, terminated implicitly by section size (no DT_NULL
	// needed since the decoder iterates by byte range, not by tag).
	var dynamic bytes.Buffer
	writeDyn := func(tag, val uint64) {
		binary.Write(&dynamic, order, tag)
		binary.Write(&dynamic, order, val)
	}
	for _, n := range needed {
		writeDyn(dtNeeded, uint64(offsets[n]))
	}
	if len(rpath) > 0 {
		writeDyn(dtRpath, uint64(offsets[joinColon(rpath)]))
	}
	if len(runpath) > 0 {
		writeDyn(dtRunpath, uint64(offsets[joinColon(runpath)]))
	}

	// .dynsym entries: null symbol first, then one per exported
	// (global, defined) and imported (undefined) name.
	var dynsym bytes.Buffer
	writeSym := func(nameOff uint32, info uint8, shndx uint16) {
		binary.Write(&dynsym, order, nameOff) // st_name
		dynsym.WriteByte(info)                // st_info
		dynsym.WriteByte(0)                   // st_other
		binary.Write(&dynsym, order, shndx)   // st_shndx
		binary.Write(&dynsym, order, uint64(0)) // st_value
		binary.Write(&dynsym, order, uint64(0)) // st_size
	}
	writeSym(0, 0, 0) // null symbol
	const stbGlobalBind = 1 << 4
	for _, s := range exported {
		writeSym(offsets[s], stbGlobalBind, 1 /* non-UNDEF section index */)
	}
	for _, s := range imported {
		writeSym(offsets[s], stbGlobalBind, shnUndef)
	}

	// .shstrtab: section names.
	var shstrtab bytes.Buffer
	shstrtab.WriteByte(0)
	shOffsets := make(map[string]uint32)
	internSh := func(s string) uint32 {
		off := uint32(shstrtab.Len())
		shstrtab.WriteString(s)
		shstrtab.WriteByte(0)
		shOffsets[s] = off
		return off
	}
	internSh(".dynstr")
	internSh(".dynamic")
	internSh(".dynsym")
	internSh(".shstrtab")

	// Lay out the file: header (64 bytes), then each section's raw
	// bytes back to back, then the section header table.
	const ehsize = 64
	dynstrOff := uint64(ehsize)
	dynamicOff := dynstrOff + uint64(dynstr.Len())
	dynsymOff := dynamicOff + uint64(dynamic.Len())
	shstrtabOff := dynsymOff + uint64(dynsym.Len())
	shoff := shstrtabOff + uint64(shstrtab.Len())

	var buf bytes.Buffer
	// e_ident
	buf.WriteString("\x7fELF")
	buf.WriteByte(2) // ELFCLASS64
	buf.WriteByte(1) // ELFDATA2LSB
	buf.WriteByte(1) // EI_VERSION
	buf.WriteByte(0) // EI_OSABI
	buf.Write(make([]byte, 8))
	binary.Write(&buf, order, uint16(3))           // e_type (ET_DYN)
	binary.Write(&buf, order, uint16(EM_AARCH64))  // e_machine
	binary.Write(&buf, order, uint32(1))           // e_version
	binary.Write(&buf, order, uint64(0))           // e_entry
	binary.Write(&buf, order, uint64(0))           // e_phoff
	binary.Write(&buf, order, shoff)               // e_shoff
	binary.Write(&buf, order, uint32(0))           // e_flags
	binary.Write(&buf, order, uint16(ehsize))      // e_ehsize
	binary.Write(&buf, order, uint16(0))           // e_phentsize
	binary.Write(&buf, order, uint16(0))           // e_phnum
	binary.Write(&buf, order, uint16(64))          // e_shentsize
	binary.Write(&buf, order, uint16(5))           // e_shnum
	binary.Write(&buf, order, uint16(4))           // e_shstrndx
	if buf.Len() != ehsize {
		t.Fatalf("header size mismatch: got %d want %d", buf.Len(), ehsize)
	}

	buf.Write(dynstr.Bytes())
	buf.Write(dynamic.Bytes())
	buf.Write(dynsym.Bytes())
	buf.Write(shstrtab.Bytes())

	writeShdr := func(nameOff uint32, shType uint32, offset, size, entsize uint64) {
		binary.Write(&buf, order, nameOff)
		binary.Write(&buf, order, shType)
		binary.Write(&buf, order, uint64(0)) // sh_flags
		binary.Write(&buf, order, uint64(0)) // sh_addr
		binary.Write(&buf, order, offset)
		binary.Write(&buf, order, size)
		binary.Write(&buf, order, uint32(0)) // sh_link
		binary.Write(&buf, order, uint32(0)) // sh_info
		binary.Write(&buf, order, uint64(1)) // sh_addralign
		binary.Write(&buf, order, entsize)
	}
	writeShdr(0, 0, 0, 0, 0) // null section
	writeShdr(shOffsets[".dynstr"], 3, dynstrOff, uint64(dynstr.Len()), 0)
	writeShdr(shOffsets[".dynamic"], 6, dynamicOff, uint64(dynamic.Len()), 16)
	writeShdr(shOffsets[".dynsym"], 11, dynsymOff, uint64(dynsym.Len()), 24)
	writeShdr(shOffsets[".shstrtab"], 3, shstrtabOff, uint64(shstrtab.Len()), 0)

	return buf.Bytes()
}

func joinColon(ss []string) string {
	out := ss[0]
	for _, s := range ss[1:] {
		out += ":" + s
	}
	return out
}

func TestParseBasic(t *testing.T) {
	buf := buildELF64(t,
		[]string{"libc.so", "libdl.so"},
		[]string{"/vendor/lib64"},
		[]string{"/vendor/lib64/hw"},
		[]string{"exp_a", "exp_b"},
		[]string{"imp_a"},
	)
	rec, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !rec.Is64() {
		t.Fatalf("want 64-bit, got class=%v", rec.Class)
	}
	if rec.Data != Data2LSB {
		t.Fatalf("want little-endian, got %v", rec.Data)
	}
	if rec.Machine != EM_AARCH64 {
		t.Fatalf("want EM_AARCH64, got %v", rec.Machine)
	}
	wantNeeded := []string{"libc.so", "libdl.so"}
	if len(rec.DTNeeded) != len(wantNeeded) {
		t.Fatalf("DTNeeded = %v, want %v", rec.DTNeeded, wantNeeded)
	}
	for i, n := range wantNeeded {
		if rec.DTNeeded[i] != n {
			t.Errorf("DTNeeded[%d] = %q, want %q", i, rec.DTNeeded[i], n)
		}
	}
	if len(rec.DTRpath) != 1 || rec.DTRpath[0] != "/vendor/lib64" {
		t.Errorf("DTRpath = %v", rec.DTRpath)
	}
	if len(rec.DTRunpath) != 1 || rec.DTRunpath[0] != "/vendor/lib64/hw" {
		t.Errorf("DTRunpath = %v", rec.DTRunpath)
	}
	if _, ok := rec.ExportedSymbols["exp_a"]; !ok {
		t.Errorf("exp_a missing from ExportedSymbols: %v", rec.ExportedSymbols)
	}
	if _, ok := rec.ExportedSymbols["exp_b"]; !ok {
		t.Errorf("exp_b missing from ExportedSymbols: %v", rec.ExportedSymbols)
	}
	if _, ok := rec.ImportedSymbols["imp_a"]; !ok {
		t.Errorf("imp_a missing from ImportedSymbols: %v", rec.ImportedSymbols)
	}
	// Invariant: exported ∩ imported = ∅ (spec §3).
	for s := range rec.ExportedSymbols {
		if _, ok := rec.ImportedSymbols[s]; ok {
			t.Errorf("symbol %q present in both exported and imported", s)
		}
	}
}

func TestParseRPathColonSplit(t *testing.T) {
	buf := buildELF64(t, nil, []string{"/a", "/b", "/c"}, nil, nil, nil)
	rec, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"/a", "/b", "/c"}
	if len(rec.DTRpath) != len(want) {
		t.Fatalf("DTRpath = %v, want %v", rec.DTRpath, want)
	}
	for i := range want {
		if rec.DTRpath[i] != want[i] {
			t.Errorf("DTRpath[%d] = %q, want %q", i, rec.DTRpath[i], want[i])
		}
	}
}

func TestParseBadMagic(t *testing.T) {
	_, err := Parse([]byte("not an elf file at all"))
	if err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestParseTruncated(t *testing.T) {
	_, err := Parse([]byte{0x7f, 'E', 'L', 'F', 2, 1})
	if err == nil {
		t.Fatal("expected error for truncated header")
	}
}

func TestParseUnknownClass(t *testing.T) {
	buf := buildELF64(t, nil, nil, nil, nil, nil)
	buf[4] = 5 // corrupt ei_class
	_, err := Parse(buf)
	if err == nil {
		t.Fatal("expected error for unknown class")
	}
}

func TestParseNoSymbols(t *testing.T) {
	buf := buildELF64(t, []string{"libc.so"}, nil, nil, nil, nil)
	rec, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rec.ExportedSymbols) != 0 || len(rec.ImportedSymbols) != 0 {
		t.Errorf("expected no symbols, got exported=%v imported=%v", rec.ExportedSymbols, rec.ImportedSymbols)
	}
}

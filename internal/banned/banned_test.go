package banned

import "testing"

func TestDefault(t *testing.T) {
	d := Default()
	for _, name := range []string{"libbinder.so", "libselinux.so"} {
		if !d.Contains(name) {
			t.Errorf("Default() missing %s", name)
		}
		entry, ok := d.Lookup(name)
		if !ok {
			t.Fatalf("Lookup(%s) ok=false", name)
		}
		if entry.Action != Warn {
			t.Errorf("Lookup(%s).Action = %v, want Warn", name, entry.Action)
		}
		if entry.Reason == "" {
			t.Errorf("Lookup(%s).Reason is empty", name)
		}
	}
	if d.Contains("libc.so") {
		t.Errorf("Contains(libc.so) = true, want false")
	}
}

func TestBanAndLookup(t *testing.T) {
	d := make(Dict)
	if d.Contains("libfoo.so") {
		t.Fatalf("fresh Dict should not contain libfoo.so")
	}
	d.Ban("libfoo.so", "disallowed via --ban-vendor-lib-dep", Exclude)
	if !d.Contains("libfoo.so") {
		t.Fatalf("Contains(libfoo.so) = false after Ban")
	}
	entry, ok := d.Lookup("libfoo.so")
	if !ok {
		t.Fatalf("Lookup(libfoo.so) ok=false after Ban")
	}
	if entry.Action != Exclude {
		t.Errorf("entry.Action = %v, want Exclude", entry.Action)
	}
	if entry.Reason != "disallowed via --ban-vendor-lib-dep" {
		t.Errorf("entry.Reason = %q", entry.Reason)
	}
}

func TestBanReplacesEntry(t *testing.T) {
	d := Default()
	d.Ban("libbinder.so", "replaced reason", Exclude)
	entry, ok := d.Lookup("libbinder.so")
	if !ok {
		t.Fatalf("Lookup(libbinder.so) ok=false")
	}
	if entry.Reason != "replaced reason" || entry.Action != Exclude {
		t.Errorf("entry = %+v, want replaced reason/Exclude", entry)
	}
}

func TestActionString(t *testing.T) {
	if Warn.String() != "warn" {
		t.Errorf("Warn.String() = %q, want warn", Warn.String())
	}
	if Exclude.String() != "exclude" {
		t.Errorf("Exclude.String() = %q, want exclude", Exclude.String())
	}
}

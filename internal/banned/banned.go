// Package banned implements the name-keyed banned-library policy (spec
// §4.5): a dictionary of disallowed libraries with a reason and an
// action (warn or exclude).
package banned

// Action is what to do when a banned library is encountered.
type Action int

const (
	Warn Action = iota
	Exclude
)

func (a Action) String() string {
	if a == Exclude {
		return "exclude"
	}
	return "warn"
}

// Entry is one banned-library record.
type Entry struct {
	Reason string
	Action Action
}

// Dict is a name (base name, e.g. "libbinder.so") → Entry dictionary.
type Dict map[string]Entry

// Default returns the two seeded defaults (spec §4.5): libbinder.so and
// libselinux.so, both WARN.
func Default() Dict {
	return Dict{
		"libbinder.so":  {Reason: "un-versioned IPC", Action: Warn},
		"libselinux.so": {Reason: "policydb might be incompatible", Action: Warn},
	}
}

// Contains reports whether baseName is banned.
func (d Dict) Contains(baseName string) bool {
	_, ok := d[baseName]
	return ok
}

// Lookup returns the banned entry for baseName, if any.
func (d Dict) Lookup(baseName string) (Entry, bool) {
	e, ok := d[baseName]
	return e, ok
}

// Ban adds or replaces an entry. Used by the CLI's --ban-vendor-lib-dep
// flag, which "substitutes" the user's own list for the defaults (spec
// §4.5) by starting from an empty Dict rather than Default().
func (d Dict) Ban(baseName, reason string, action Action) {
	d[baseName] = Entry{Reason: reason, Action: action}
}

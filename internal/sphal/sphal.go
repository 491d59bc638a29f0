// Package sphal identifies Same-Process HAL libraries: vendor libraries
// loaded directly into a framework process (graphics/Vulkan/RenderScript
// drivers, gralloc — spec §4.6 step 1, §6, GLOSSARY).
package sphal

import "regexp"

// patterns is the fixed set of path regexes named in spec §6, applied as
// one union match over a library's canonical path.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`^/vendor/.*/libEGL_.*\.so$`),
	regexp.MustCompile(`^/vendor/.*/libGLESv1_CM_.*\.so$`),
	regexp.MustCompile(`^/vendor/.*/libGLESv2_.*\.so$`),
	regexp.MustCompile(`^/vendor/.*/libGLESv3_.*\.so$`),
	regexp.MustCompile(`^/vendor/.*/vulkan.*\.so$`),
	regexp.MustCompile(`^/vendor/.*/libRSDriver.*\.so$`),
	regexp.MustCompile(`^/vendor/.*/libPVRRS\.so$`),
	regexp.MustCompile(`^.*/gralloc\..*\.so$`),
	regexp.MustCompile(`^.*/android\.hardware\.graphics\.mapper@\d+\.\d+-impl\.so$`),
}

// Is reports whether path matches any SP-HAL pattern.
func Is(path string) bool {
	for _, p := range patterns {
		if p.MatchString(path) {
			return true
		}
	}
	return false
}

// Set computes the recognized SP-HAL set over paths (spec §4.6 step 1:
// "recognized but not fully closed here"). The result is an unordered
// set; callers that need a deterministic order sort its keys.
func Set(paths []string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, p := range paths {
		if Is(p) {
			out[p] = struct{}{}
		}
	}
	return out
}

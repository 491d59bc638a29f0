package graph

// NDK low-level and high-level library base names (GLOSSARY, spec §4.6).
// A library whose base name is in either set can never be classified as
// VNDK: it already has a stable, documented ABI via the NDK.
var (
	NDKLowLevel = map[string]struct{}{
		"libc.so":      {},
		"libstdc++.so": {},
		"libdl.so":     {},
		"liblog.so":    {},
		"libm.so":      {},
		"libz.so":      {},
	}

	NDKHighLevel = map[string]struct{}{
		"libandroid.so":     {},
		"libcamera2ndk.so":  {},
		"libEGL.so":         {},
		"libGLESv1_CM.so":   {},
		"libGLESv2.so":      {},
		"libGLESv3.so":      {},
		"libjnigraphics.so": {},
		"libmediandk.so":    {},
		"libOpenMAXAL.so":   {},
		"libOpenSLES.so":    {},
		"libvulkan.so":      {},
	}
)

// IsNDKName reports whether baseName (e.g. "libc.so") is a known NDK
// library, low-level or high-level.
func IsNDKName(baseName string) bool {
	if _, ok := NDKLowLevel[baseName]; ok {
		return true
	}
	_, ok := NDKHighLevel[baseName]
	return ok
}

// IsHighLevelNDKName reports whether baseName is specifically a
// high-level NDK library (used for the supplemented "high-level NDK use"
// warning, SPEC_FULL.md supplement #4).
func IsHighLevelNDKName(baseName string) bool {
	_, ok := NDKHighLevel[baseName]
	return ok
}

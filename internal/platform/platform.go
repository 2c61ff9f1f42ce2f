//go:build !ios && !android && (amd64 || arm64)

// Package platform names shared libraries the way each operating system's
// dynamic linker expects them.
package platform

import (
	"fmt"
	"runtime"
	"unsafe"
)

// Is64Bit indicates whether the platform is 64-bit. Handles are pointer-sized,
// and purego only supports 64-bit targets.
const Is64Bit = unsafe.Sizeof(uintptr(0)) == 8

// LibraryExtension is the file extension for shared libraries on this platform.
var LibraryExtension = extensionFor(runtime.GOOS)

// LibraryPrefix is the prefix for shared library names on this platform.
var LibraryPrefix = prefixFor(runtime.GOOS)

func extensionFor(goos string) string {
	switch goos {
	case "darwin":
		return ".dylib"
	case "windows":
		return ".dll"
	default: // linux, freebsd, etc.
		return ".so"
	}
}

func prefixFor(goos string) string {
	if goos == "windows" {
		return ""
	}
	return "lib"
}

// FormatLibraryName returns the platform-specific library filename.
// If version is 0, returns the unversioned library name.
//
// Examples:
//   - Linux:   FormatLibraryName("engine", 2) -> "libengine.so.2"
//   - macOS:   FormatLibraryName("engine", 2) -> "libengine.2.dylib"
//   - Windows: FormatLibraryName("engine", 2) -> "engine-2.dll"
func FormatLibraryName(name string, version int) string {
	return formatFor(runtime.GOOS, name, version)
}

func formatFor(goos, name string, version int) string {
	prefix, ext := prefixFor(goos), extensionFor(goos)
	if version <= 0 {
		return prefix + name + ext
	}
	switch goos {
	case "darwin":
		return fmt.Sprintf("%s%s.%d%s", prefix, name, version, ext)
	case "windows":
		return fmt.Sprintf("%s%s-%d%s", prefix, name, version, ext)
	default:
		return fmt.Sprintf("%s%s%s.%d", prefix, name, ext, version)
	}
}

//go:build !ios && !android && (amd64 || arm64)

// Package loader opens host shared libraries and resolves symbols from them
// using purego, so native callbacks can be bound without cgo.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/amgo/internal/platform"
)

// Open loads a library by name, trying versioned names first.
//
// name may also be a path (anything containing a separator), in which case it
// is opened as is. Otherwise every candidate from Candidates is tried, then the
// dynamic linker's own lookup of the bare names.
func Open(name string, versions []int) (uintptr, error) {
	if isPath(name) {
		lib, err := tryOpen(name)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrLibraryNotFound, name, err)
		}
		return lib, nil
	}

	for _, path := range Candidates(name, versions) {
		if lib, err := tryOpen(path); err == nil {
			return lib, nil
		}
	}
	for _, file := range fileNames(name, versions) {
		if lib, err := tryOpen(file); err == nil {
			return lib, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// Candidates lists the files Open tries for name, in order: each search path
// with each version, then the unversioned name.
func Candidates(name string, versions []int) []string {
	if isPath(name) {
		return []string{name}
	}
	files := fileNames(name, versions)
	var paths []string
	for _, dir := range SearchPaths() {
		for _, file := range files {
			paths = append(paths, filepath.Join(dir, file))
		}
	}
	return paths
}

func fileNames(name string, versions []int) []string {
	files := make([]string, 0, len(versions)+1)
	for _, ver := range versions {
		if ver > 0 {
			files = append(files, platform.FormatLibraryName(name, ver))
		}
	}
	return append(files, platform.FormatLibraryName(name, 0))
}

func isPath(name string) bool {
	return filepath.Base(name) != name
}

// Symbol resolves name in lib.
func Symbol(lib uintptr, name string) (uintptr, error) {
	if lib == 0 {
		return 0, fmt.Errorf("%w: %s (library not loaded)", ErrSymbolNotFound, name)
	}
	sym, err := purego.Dlsym(lib, name)
	if err != nil || sym == 0 {
		return 0, fmt.Errorf("%w: %s", ErrSymbolNotFound, name)
	}
	return sym, nil
}

// Close unloads lib.
func Close(lib uintptr) error {
	if lib == 0 {
		return nil
	}
	return purego.Dlclose(lib)
}

// tryOpen opens a library with RTLD_NOW | RTLD_GLOBAL, so symbols of one host
// library are visible to others it depends on.
func tryOpen(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

// Find returns the first existing file among the candidates for name,
// without loading it. A library the dynamic linker resolves from its own cache
// is not found here.
func Find(name string, versions []int) (string, error) {
	for _, path := range Candidates(name, versions) {
		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// SearchPaths returns platform-specific library search paths.
func SearchPaths() []string {
	var paths []string

	switch runtime.GOOS {
	case "linux":
		if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
			paths = append(paths, filepath.SplitList(ldPath)...)
		}
		paths = append(paths,
			"/usr/lib/x86_64-linux-gnu",
			"/usr/lib/aarch64-linux-gnu",
			"/usr/local/lib",
			"/usr/lib",
			"/lib/x86_64-linux-gnu",
			"/lib/aarch64-linux-gnu",
			"/lib",
		)

	case "darwin":
		if dyldPath := os.Getenv("DYLD_LIBRARY_PATH"); dyldPath != "" {
			paths = append(paths, filepath.SplitList(dyldPath)...)
		}
		paths = append(paths,
			"/opt/homebrew/lib", // Apple Silicon
			"/usr/local/lib",    // Intel
			"/usr/lib",
		)

	case "windows":
		if winPath := os.Getenv("PATH"); winPath != "" {
			paths = append(paths, filepath.SplitList(winPath)...)
		}
		if exe, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Dir(exe))
		}

	case "freebsd":
		if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
			paths = append(paths, filepath.SplitList(ldPath)...)
		}
		paths = append(paths,
			"/usr/local/lib",
			"/usr/lib",
		)
	}

	return paths
}

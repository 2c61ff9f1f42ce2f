package loader

import "errors"

// ErrLibraryNotFound is returned when a host library cannot be found.
var ErrLibraryNotFound = errors.New("amgo: host library not found")

// ErrSymbolNotFound is returned when a symbol is missing from a loaded library.
var ErrSymbolNotFound = errors.New("amgo: symbol not found")

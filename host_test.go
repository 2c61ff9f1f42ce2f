//go:build !ios && !android && (amd64 || arm64)

package amgo

import (
	"os"
	"runtime"
	"testing"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/amgo/internal/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenHostLibraryMissing(t *testing.T) {
	_, err := OpenHostLibrary("amgo-definitely-missing", 1)
	assert.ErrorIs(t, err, ErrLibraryNotFound)
}

// Integration test - only runs where the C library is discoverable
func TestHostLibraryLibc(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("libc name is linux-specific")
	}
	lib, err := OpenHostLibrary("c", 6)
	if err != nil {
		t.Skipf("libc not found: %v", err)
	}
	assert.Equal(t, "c", lib.Name())
	if path := lib.Path(); path != "" {
		assert.FileExists(t, path)
	}

	_, err = lib.TaskFunc("amgo_no_such_symbol")
	assert.ErrorIs(t, err, ErrSymbolNotFound)
	_, err = lib.ThreadFunc("amgo_no_such_symbol")
	assert.ErrorIs(t, err, ErrSymbolNotFound)

	// getpid ignores its arguments, which makes it a safe stand-in for a
	// native task.
	fn, err := lib.TaskFunc("getpid")
	require.NoError(t, err)

	c := quiet()
	pool := c.CreatePool(1)
	defer c.DestroyPool(pool)

	done := make(chan struct{})
	task := c.CreateTask(func(h Handle, p unsafe.Pointer) {
		fn(h, p)
		close(done)
	}, nil)
	require.True(t, c.SubmitTask(pool, task))
	<-done

	sym, err := lib.Symbol("getpid")
	require.NoError(t, err)
	pid, _, _ := purego.SyscallN(sym)
	assert.EqualValues(t, os.Getpid(), pid)
}

func TestHostLibraryPathFromFile(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("libc name is linux-specific")
	}
	path, err := loader.Find("c", []int{6})
	if err != nil {
		t.Skipf("libc not found: %v", err)
	}

	lib, err := OpenHostLibrary(path)
	if err != nil {
		t.Skipf("%s is not loadable: %v", path, err)
	}
	assert.Equal(t, path, lib.Path())
	assert.Equal(t, path, lib.Name())

	_, err = lib.Symbol("getpid")
	assert.NoError(t, err)
}

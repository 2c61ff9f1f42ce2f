package amgo

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskUnitNotReadyUntilSet(t *testing.T) {
	var calls int
	u := NewTaskUnit(func(Handle, unsafe.Pointer) { calls++ }, nil)
	assert.False(t, u.Ready())

	u.Run()
	assert.Equal(t, 1, calls)
	assert.False(t, u.Ready(), "Run must not mark the unit ready")

	u.SetReady()
	u.SetReady()
	assert.True(t, u.Ready())
}

func TestTaskUnitCallbackArguments(t *testing.T) {
	payload := new(int)
	var gotHandle Handle
	var gotPayload unsafe.Pointer

	u := NewTaskUnit(func(h Handle, p unsafe.Pointer) {
		gotHandle, gotPayload = h, p
	}, unsafe.Pointer(payload))
	u.Run()

	assert.Equal(t, u.Handle(), gotHandle)
	assert.Equal(t, unsafe.Pointer(payload), gotPayload)
}

func TestTaskUnitNilFunc(t *testing.T) {
	assert.NotPanics(t, func() {
		NewTaskUnit(nil, nil).Run()
		NewAwaitableTaskUnit(nil, nil).Run()
	})
}

func TestTaskUnitReadyVisibleAcrossGoroutines(t *testing.T) {
	u := NewTaskUnit(nil, nil)
	done := make(chan struct{})
	go func() {
		u.SetReady()
		close(done)
	}()
	<-done
	assert.True(t, u.Ready())
}

func TestAwaitableSelfReady(t *testing.T) {
	var u *AwaitableTaskUnit
	u = NewAwaitableTaskUnit(func(Handle, unsafe.Pointer) { u.SetReady() }, nil)

	go u.Run()
	u.Await()
	assert.True(t, u.Ready())
}

func TestAwaitBeforeSetReady(t *testing.T) {
	u := NewAwaitableTaskUnit(nil, nil)

	var waiting sync.WaitGroup
	var finished atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		waiting.Add(1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			waiting.Done()
			u.Await()
			finished.Add(1)
		}()
	}
	waiting.Wait()
	time.Sleep(10 * time.Millisecond)
	assert.Zero(t, finished.Load(), "waiters returned before SetReady")

	u.SetReady()
	wg.Wait()
	assert.EqualValues(t, 4, finished.Load())
}

func TestAwaitAlreadyReady(t *testing.T) {
	u := NewAwaitableTaskUnit(nil, nil)
	u.SetReady()
	u.SetReady()
	u.Await()
	assert.True(t, u.AwaitFor(time.Millisecond))
}

func TestAwaitForTimeout(t *testing.T) {
	u := NewAwaitableTaskUnit(nil, nil)

	start := time.Now()
	ok := u.AwaitFor(50 * time.Millisecond)
	elapsed := time.Since(start)

	assert.False(t, ok)
	assert.False(t, u.Ready())
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
}

func TestAwaitForReadyInTime(t *testing.T) {
	u := NewAwaitableTaskUnit(nil, nil)
	go func() {
		time.Sleep(5 * time.Millisecond)
		u.SetReady()
	}()
	require.True(t, u.AwaitFor(5*time.Second))
}

func TestAwaitForNonPositive(t *testing.T) {
	u := NewAwaitableTaskUnit(nil, nil)
	assert.False(t, u.AwaitFor(0))
	assert.False(t, u.AwaitFor(-time.Second))
	u.SetReady()
	assert.True(t, u.AwaitFor(0))
}

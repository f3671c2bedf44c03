//go:build cgo && (linux || darwin)

package native

import (
	"testing"
	"unsafe"
)

// CountHandleCloses counts dlclose calls until the test ends.
func CountHandleCloses(t testing.TB) *int {
	t.Helper()
	n := new(int)
	orig := closeHandle
	closeHandle = func(handle unsafe.Pointer) {
		*n++
		orig(handle)
	}
	t.Cleanup(func() { closeHandle = orig })
	return n
}

//go:build wasip1

package abi

import (
	"unsafe"

	"github.com/joecorcoran/talks/domain/entities"
)

// memory tracks every buffer the guest hands to the host, whether requested
// by the host through allocate or produced by an export such as tail. It
// keeps a reference to each slice so the Go GC cannot collect memory the
// host still addresses.
var memory = NewTracker()

// allocate reserves memory in linear memory for the host to write into.
// Returns 0 when size is 0 or the allocation limit would be exceeded.
//
//go:wasmexport allocate
func allocate(size uint32) uint32 {
	ptr, err := Allocate(int(size), KindBuffer)
	if err != nil {
		return 0
	}
	return ptr
}

// deallocate releases a buffer obtained from allocate or a packed result
// such as describe's. The size argument is ignored; the tracked size is
// authoritative. Untracked pointers and the results of tail and tail_array
// are ignored; those have their own free exports.
//
//go:wasmexport deallocate
func deallocate(ptr uint32, _ uint32) {
	Free(ptr, KindBuffer)
}

// Allocate reserves size bytes of tracked linear memory as kind.
func Allocate(size int, kind Kind) (uint32, error) {
	ptr, err := memory.Allocate(size, kind, func(n int) (uintptr, any) {
		buf := make([]byte, n)
		return uintptr(unsafe.Pointer(&buf[0])), buf
	})
	return uint32(ptr), err
}

// Free releases a tracked buffer of the given kind. It reports false for
// pointers it does not own as kind, which makes a double free harmless.
func Free(ptr uint32, kind Kind) bool {
	_, ok := memory.Release(uintptr(ptr), kind)
	return ok
}

// Owns reports whether ptr is a live tracked buffer of the given kind.
func Owns(ptr uint32, kind Kind) bool {
	return memory.Owns(uintptr(ptr), kind)
}

// Stats reports the live tracked buffers.
func Stats() entities.AllocationStats {
	return memory.Stats()
}

// Configure adjusts the guest tracker, e.g. its allocation limit.
func Configure(opts ...TrackerOption) {
	memory.Configure(opts...)
}

// FreeAllTracked releases every tracked buffer.
func FreeAllTracked() {
	memory.Reset()
}

// PtrFromBytes copies data into tracked memory and returns it packed.
func PtrFromBytes(data []byte) (uint64, error) {
	if len(data) == 0 {
		return 0, nil
	}
	ptr, err := Allocate(len(data), KindBuffer)
	if err != nil {
		return 0, err
	}
	copy(View(ptr, uint32(len(data))), data)
	return PackPtrLen(ptr, uint32(len(data))), nil
}

// DeallocatePacked frees the buffer a packed value refers to.
func DeallocatePacked(packed uint64) {
	ptr, length := UnpackPtrLen(packed)
	if ptr != 0 && length > 0 {
		Free(ptr, KindBuffer)
	}
}

// View aliases length bytes of linear memory at ptr without copying.
func View(ptr uint32, length uint32) []byte {
	if ptr == 0 || length == 0 {
		return nil
	}
	//nolint:gosec // G103: linear memory offsets are addresses on wasm
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), length)
}

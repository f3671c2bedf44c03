// Command libintarray is the IntArray C-ABI shared library.
//
// Build:
//
//	go build -buildmode=c-shared -o target/release/libintarray.so ./cmd/libintarray
//
// The public header is include/intarray.h. Every buffer the library returns is
// tracked and must be released with its paired free export.
package main

/*
#cgo CFLAGS: -I${SRCDIR}/../../include
#define INTARRAY_BUILDING
#include <stdlib.h>
#include "intarray.h"
*/
import "C"

import (
	"unsafe"

	"github.com/joecorcoran/talks/domain/arrayops"
	"github.com/joecorcoran/talks/domain/entities"
	"github.com/joecorcoran/talks/internal/abi"
	"github.com/joecorcoran/talks/internal/export"
)

// tracker owns every C allocation handed to callers.
var tracker = abi.NewTracker(export.TrackerOptions()...)

func main() {}

//export add_one
func add_one(value C.int32_t) C.int32_t {
	return C.int32_t(arrayops.AddOne(int32(value)))
}

//export head
func head(array *C.IntArray) (result C.int32_t) {
	defer export.Guard(entities.SymbolHead)

	members, status := membersOf(array)
	if status != entities.StatusOK {
		export.SetStatus(entities.SymbolHead, status)
		return 0
	}
	v, _ := arrayops.Head(members)
	export.SetStatus(entities.SymbolHead, entities.StatusOK)
	return C.int32_t(v)
}

//export head_checked
func head_checked(array *C.IntArray, out *C.int32_t) (result C.int32_t) {
	result = C.int32_t(entities.StatusInternal)
	defer export.Guard(entities.SymbolHeadChecked)

	if out == nil {
		return C.int32_t(export.SetStatus(entities.SymbolHeadChecked, entities.StatusInvalidArgument))
	}
	members, status := membersOf(array)
	if status != entities.StatusOK {
		return C.int32_t(export.SetStatus(entities.SymbolHeadChecked, status))
	}
	v, _ := arrayops.Head(members)
	*out = C.int32_t(v)
	return C.int32_t(export.SetStatus(entities.SymbolHeadChecked, entities.StatusOK))
}

// tail returns NULL both for a singleton (the zero-length result) and on
// error; last_status tells them apart.
//
//export tail
func tail(array *C.IntArray) (result *C.int32_t) {
	defer export.Guard(entities.SymbolTail)

	members, status := membersOf(array)
	if status != entities.StatusOK {
		export.SetStatus(entities.SymbolTail, status)
		return nil
	}
	rest, _ := arrayops.Tail(members)
	ptr, err := allocMembers(rest)
	if err != nil {
		export.SetStatus(entities.SymbolTail, entities.StatusAllocationFailed)
		return nil
	}
	export.SetStatus(entities.SymbolTail, entities.StatusOK)
	return ptr
}

//export tail_array
func tail_array(array *C.IntArray) (result *C.IntArray) {
	defer export.Guard(entities.SymbolTailArray)

	members, status := membersOf(array)
	if status != entities.StatusOK {
		export.SetStatus(entities.SymbolTailArray, status)
		return nil
	}
	rest, _ := arrayops.Tail(members)

	structPtr, err := tracker.Allocate(int(C.sizeof_IntArray), abi.KindArray, cAlloc)
	if err != nil {
		export.SetStatus(entities.SymbolTailArray, entities.StatusAllocationFailed)
		return nil
	}
	membersPtr, err := allocMembers(rest)
	if err != nil {
		releaseC(structPtr, abi.KindArray)
		export.SetStatus(entities.SymbolTailArray, entities.StatusAllocationFailed)
		return nil
	}

	out := (*C.IntArray)(unsafe.Pointer(structPtr))
	out.length = C.int32_t(len(rest))
	out.members = membersPtr
	export.SetStatus(entities.SymbolTailArray, entities.StatusOK)
	return out
}

// free_members ignores anything tail did not return, including tail_array
// structs.
//
//export free_members
func free_members(members *C.int32_t) {
	releaseC(uintptr(unsafe.Pointer(members)), abi.KindMembers)
}

//export free_array
func free_array(array *C.IntArray) {
	if array == nil || !tracker.Owns(uintptr(unsafe.Pointer(array)), abi.KindArray) {
		return
	}
	releaseC(uintptr(unsafe.Pointer(array.members)), abi.KindMembers)
	releaseC(uintptr(unsafe.Pointer(array)), abi.KindArray)
}

//export last_status
func last_status() C.int32_t {
	return C.int32_t(export.LastStatus())
}

//export live_allocations
func live_allocations(bytes *C.int64_t) C.int32_t {
	stats := tracker.Stats()
	if bytes != nil {
		*bytes = C.int64_t(stats.Bytes)
	}
	return C.int32_t(stats.Count)
}

//export describe
func describe() (result *C.char) {
	defer export.Guard(entities.SymbolDescribe)

	data, err := export.Describe(nativeLayout(), entities.SymbolFreeString)
	if err != nil {
		export.SetStatus(entities.SymbolDescribe, entities.StatusInternal)
		return nil
	}
	ptr, err := tracker.Allocate(len(data)+1, abi.KindString, func(int) (uintptr, any) {
		return uintptr(unsafe.Pointer(C.CString(string(data)))), nil
	})
	if err != nil {
		export.SetStatus(entities.SymbolDescribe, entities.StatusAllocationFailed)
		return nil
	}
	export.SetStatus(entities.SymbolDescribe, entities.StatusOK)
	return (*C.char)(unsafe.Pointer(ptr))
}

//export free_string
func free_string(s *C.char) {
	releaseC(uintptr(unsafe.Pointer(s)), abi.KindString)
}

// membersOf views the caller's buffer without copying it.
func membersOf(array *C.IntArray) ([]int32, entities.Status) {
	if array == nil {
		return nil, entities.StatusInvalidArgument
	}
	h := abi.Header{
		Length:  int32(array.length),
		Members: uint64(uintptr(unsafe.Pointer(array.members))),
	}
	if status := abi.CheckLength(h); status != entities.StatusOK {
		return nil, status
	}
	return unsafe.Slice((*int32)(unsafe.Pointer(array.members)), int(h.Length)), entities.StatusOK
}

// allocMembers copies members into a tracked C buffer. An empty slice
// yields NULL.
func allocMembers(members []int32) (*C.int32_t, error) {
	ptr, err := tracker.Allocate(len(members)*entities.Int32Size, abi.KindMembers, cAlloc)
	if err != nil || ptr == 0 {
		return nil, err
	}
	copy(unsafe.Slice((*int32)(unsafe.Pointer(ptr)), len(members)), members)
	return (*C.int32_t)(unsafe.Pointer(ptr)), nil
}

func cAlloc(size int) (uintptr, any) {
	return uintptr(C.malloc(C.size_t(size))), nil
}

// releaseC frees ptr only if the library handed it out as kind and has not
// freed it.
func releaseC(ptr uintptr, kind abi.Kind) {
	if ptr == 0 {
		return
	}
	if _, ok := tracker.Release(ptr, kind); ok {
		C.free(unsafe.Pointer(ptr))
	}
}

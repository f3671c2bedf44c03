//go:build wasip1

// Command wasmintarray is the IntArray library as a wasip1 reactor module.
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o target/release/intarray.wasm ./cmd/wasmintarray
//
// Exports mirror the C-ABI library with i32 addresses into linear memory and
// the wasm32 IntArray layout. Hosts place inputs with allocate and release
// results with the paired free exports or deallocate.
package main

import (
	"encoding/binary"
	"log/slog"

	"github.com/joecorcoran/talks/domain/arrayops"
	"github.com/joecorcoran/talks/domain/entities"
	"github.com/joecorcoran/talks/internal/abi"
	"github.com/joecorcoran/talks/internal/export"
	_ "github.com/joecorcoran/talks/log" // route slog to the host
)

var layout = entities.Wasm32Layout

func init() {
	abi.Configure(export.TrackerOptions()...)
}

func main() {}

//go:wasmexport add_one
func addOne(value int32) int32 {
	return arrayops.AddOne(value)
}

//go:wasmexport head
func head(array uint32) (result int32) {
	defer export.Guard(entities.SymbolHead)

	members, status := membersOf(array)
	if status != entities.StatusOK {
		export.SetStatus(entities.SymbolHead, status)
		return 0
	}
	v, _ := arrayops.Head(members)
	export.SetStatus(entities.SymbolHead, entities.StatusOK)
	return v
}

//go:wasmexport head_checked
func headChecked(array uint32, out uint32) (result int32) {
	result = int32(entities.StatusInternal)
	defer export.Guard(entities.SymbolHeadChecked)

	if out == 0 {
		return int32(export.SetStatus(entities.SymbolHeadChecked, entities.StatusInvalidArgument))
	}
	members, status := membersOf(array)
	if status != entities.StatusOK {
		return int32(export.SetStatus(entities.SymbolHeadChecked, status))
	}
	v, _ := arrayops.Head(members)
	binary.LittleEndian.PutUint32(abi.View(out, entities.Int32Size), uint32(v))
	return int32(export.SetStatus(entities.SymbolHeadChecked, entities.StatusOK))
}

// tail returns 0 both for a singleton and on error; last_status tells them
// apart.
//
//go:wasmexport tail
func tail(array uint32) (result uint32) {
	defer export.Guard(entities.SymbolTail)

	members, status := membersOf(array)
	if status != entities.StatusOK {
		export.SetStatus(entities.SymbolTail, status)
		return 0
	}
	rest, _ := arrayops.Tail(members)
	ptr, err := allocMembers(rest)
	if err != nil {
		export.SetStatus(entities.SymbolTail, entities.StatusAllocationFailed)
		return 0
	}
	export.SetStatus(entities.SymbolTail, entities.StatusOK)
	return ptr
}

//go:wasmexport tail_array
func tailArray(array uint32) (result uint32) {
	defer export.Guard(entities.SymbolTailArray)

	members, status := membersOf(array)
	if status != entities.StatusOK {
		export.SetStatus(entities.SymbolTailArray, status)
		return 0
	}
	rest, _ := arrayops.Tail(members)

	structPtr, err := abi.Allocate(layout.Size, abi.KindArray)
	if err != nil {
		export.SetStatus(entities.SymbolTailArray, entities.StatusAllocationFailed)
		return 0
	}
	membersPtr, err := allocMembers(rest)
	if err != nil {
		abi.Free(structPtr, abi.KindArray)
		export.SetStatus(entities.SymbolTailArray, entities.StatusAllocationFailed)
		return 0
	}

	abi.PutHeader(layout, abi.View(structPtr, uint32(layout.Size)), abi.Header{
		Length:  int32(len(rest)),
		Members: uint64(membersPtr),
	})
	export.SetStatus(entities.SymbolTailArray, entities.StatusOK)
	return structPtr
}

// free_members ignores anything tail did not return, including tail_array
// structs.
//
//go:wasmexport free_members
func freeMembers(members uint32) {
	abi.Free(members, abi.KindMembers)
}

//go:wasmexport free_array
func freeArray(array uint32) {
	if array == 0 || !abi.Owns(array, abi.KindArray) {
		return
	}
	if h, err := abi.DecodeHeader(layout, abi.View(array, uint32(layout.Size))); err == nil {
		abi.Free(uint32(h.Members), abi.KindMembers)
	}
	abi.Free(array, abi.KindArray)
}

//go:wasmexport last_status
func lastStatus() int32 {
	return int32(export.LastStatus())
}

//go:wasmexport live_allocations
func liveAllocations(bytesOut uint32) int32 {
	stats := abi.Stats()
	if bytesOut != 0 {
		binary.LittleEndian.PutUint64(abi.View(bytesOut, 8), uint64(stats.Bytes))
	}
	return int32(stats.Count)
}

// describe returns the descriptor JSON packed as ptr<<32|len. The host
// releases it with deallocate.
//
//go:wasmexport describe
func describe() (result uint64) {
	defer export.Guard(entities.SymbolDescribe)

	data, err := export.Describe(layout, entities.SymbolAllocate, entities.SymbolDeallocate)
	if err != nil {
		export.SetStatus(entities.SymbolDescribe, entities.StatusInternal)
		return 0
	}
	packed, err := abi.PtrFromBytes(data)
	if err != nil {
		slog.Warn("intarray: describe allocation refused", "error", err)
		export.SetStatus(entities.SymbolDescribe, entities.StatusAllocationFailed)
		return 0
	}
	export.SetStatus(entities.SymbolDescribe, entities.StatusOK)
	return packed
}

// membersOf copies the caller's members out of linear memory.
func membersOf(array uint32) ([]int32, entities.Status) {
	if array == 0 {
		return nil, entities.StatusInvalidArgument
	}
	h, err := abi.DecodeHeader(layout, abi.View(array, uint32(layout.Size)))
	if err != nil {
		return nil, entities.StatusInvalidArgument
	}
	if status := abi.CheckLength(h); status != entities.StatusOK {
		return nil, status
	}
	raw := abi.View(uint32(h.Members), uint32(layout.MembersSize(int(h.Length))))
	members, err := abi.DecodeMembers(layout.ByteOrder, raw)
	if err != nil {
		return nil, entities.StatusInvalidArgument
	}
	return members, entities.StatusOK
}

// allocMembers copies members into tracked linear memory. An empty slice
// yields 0.
func allocMembers(members []int32) (uint32, error) {
	ptr, err := abi.Allocate(layout.MembersSize(len(members)), abi.KindMembers)
	if err != nil || ptr == 0 {
		return 0, err
	}
	abi.PutMembers(layout.ByteOrder, abi.View(ptr, uint32(layout.MembersSize(len(members)))), members)
	return ptr, nil
}

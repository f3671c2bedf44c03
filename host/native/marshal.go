//go:build cgo && (linux || darwin)

package native

/*
#include <stdlib.h>
#include "intarray.h"
*/
import "C"

import (
	"unsafe"

	"github.com/joecorcoran/talks/domain/entities"
	liberrors "github.com/joecorcoran/talks/domain/errors"
	"github.com/joecorcoran/talks/internal/abi"
)

// cArray is an IntArray and its members in C heap memory, owned by the
// host for the duration of one call.
type cArray struct {
	ptr     *C.IntArray
	members unsafe.Pointer
}

// putArray encodes members per the library layout. An empty slice yields
// a zero length and a NULL members pointer.
func (l *Library) putArray(members []int32) (*cArray, error) {
	a := &cArray{}

	if len(members) > 0 {
		size := l.layout.MembersSize(len(members))
		a.members = C.malloc(C.size_t(size))
		if a.members == nil {
			return nil, &liberrors.MemoryError{Requested: size}
		}
		abi.PutMembers(l.layout.ByteOrder, unsafe.Slice((*byte)(a.members), size), members)
	}

	raw := C.calloc(1, C.size_t(l.layout.Size))
	if raw == nil {
		a.free()
		return nil, &liberrors.MemoryError{Requested: l.layout.Size}
	}
	abi.PutHeader(l.layout, unsafe.Slice((*byte)(raw), l.layout.Size), abi.Header{
		Length:  int32(len(members)), //nolint:gosec // G115: inputs beyond int32 cannot cross the boundary
		Members: uint64(uintptr(a.members)),
	})
	a.ptr = (*C.IntArray)(raw)
	return a, nil
}

func (a *cArray) free() {
	if a.ptr != nil {
		C.free(unsafe.Pointer(a.ptr))
		a.ptr = nil
	}
	if a.members != nil {
		C.free(a.members)
		a.members = nil
	}
}

// cLayout reports IntArray as laid out by the C compiler building the host.
func cLayout() entities.Layout {
	var a C.IntArray
	return entities.Layout{
		Size:          int(unsafe.Sizeof(a)),
		Align:         int(unsafe.Alignof(a)),
		LengthOffset:  int(unsafe.Offsetof(a.length)),
		MembersOffset: int(unsafe.Offsetof(a.members)),
		PointerSize:   int(unsafe.Sizeof(a.members)),
		ByteOrder:     entities.NativeLayout().ByteOrder,
	}
}

package main

/*
#cgo CFLAGS: -I${SRCDIR}/../../include
#define INTARRAY_BUILDING
#include <stddef.h>
#include "intarray.h"

static size_t ia_sizeof(void) { return sizeof(IntArray); }
static size_t ia_alignof(void) { return _Alignof(IntArray); }
static size_t ia_length_offset(void) { return offsetof(IntArray, length); }
static size_t ia_members_offset(void) { return offsetof(IntArray, members); }
static size_t ia_pointer_size(void) { return sizeof(void *); }
*/
import "C"

import "github.com/joecorcoran/talks/domain/entities"

// nativeLayout reports IntArray as laid out by the C compiler that built
// this library.
func nativeLayout() entities.Layout {
	return entities.Layout{
		Size:          int(C.ia_sizeof()),
		Align:         int(C.ia_alignof()),
		LengthOffset:  int(C.ia_length_offset()),
		MembersOffset: int(C.ia_members_offset()),
		PointerSize:   int(C.ia_pointer_size()),
		ByteOrder:     entities.NativeLayout().ByteOrder,
	}
}

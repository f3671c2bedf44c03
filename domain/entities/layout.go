package entities

import (
	"encoding/binary"
	"fmt"
	"unsafe"
)

// Int32Size is the width in bytes of IntArray.length and of every member.
const Int32Size = 4

// ByteOrder names the integer encoding used by a Layout.
type ByteOrder string

const (
	LittleEndian ByteOrder = "little"
	BigEndian    ByteOrder = "big"
)

// Binary returns the encoding/binary implementation of o.
func (o ByteOrder) Binary() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Layout is the byte-level contract of the transfer struct:
//
//	typedef struct {
//	    int32_t        length;
//	    const int32_t *members;
//	} IntArray;
//
// Field order is fixed. Offsets follow the C rules of the target ABI, so
// Layout is computed explicitly rather than derived from a Go struct.
type Layout struct {
	Size          int       `json:"size" yaml:"size" validate:"gt=0"`
	Align         int       `json:"align" yaml:"align" validate:"gt=0"`
	LengthOffset  int       `json:"length_offset" yaml:"length_offset" validate:"gte=0"`
	MembersOffset int       `json:"members_offset" yaml:"members_offset" validate:"gt=0"`
	PointerSize   int       `json:"pointer_size" yaml:"pointer_size" validate:"oneof=4 8" jsonschema:"enum=4,enum=8"`
	ByteOrder     ByteOrder `json:"byte_order" yaml:"byte_order" validate:"oneof=little big" jsonschema:"enum=little,enum=big"`
}

// Wasm32Layout is the layout inside wasm32 linear memory.
var Wasm32Layout = LayoutFor(4, LittleEndian)

// LayoutFor lays out IntArray for a target with the given pointer width,
// assuming pointers are naturally aligned.
func LayoutFor(pointerSize int, order ByteOrder) Layout {
	align := max(Int32Size, pointerSize)
	membersOffset := alignUp(Int32Size, pointerSize)
	return Layout{
		Size:          alignUp(membersOffset+pointerSize, align),
		Align:         align,
		LengthOffset:  0,
		MembersOffset: membersOffset,
		PointerSize:   pointerSize,
		ByteOrder:     order,
	}
}

// NativeLayout returns the layout of the platform this binary runs on.
func NativeLayout() Layout {
	return LayoutFor(int(unsafe.Sizeof(uintptr(0))), nativeByteOrder())
}

// Validate checks that l describes a well-formed IntArray.
func (l Layout) Validate() error {
	switch {
	case l.PointerSize != 4 && l.PointerSize != 8:
		return fmt.Errorf("unsupported pointer size %d", l.PointerSize)
	case l.LengthOffset != 0:
		return fmt.Errorf("length must be the first field, found at offset %d", l.LengthOffset)
	case l.MembersOffset < l.LengthOffset+Int32Size:
		return fmt.Errorf("members offset %d overlaps length", l.MembersOffset)
	case l.MembersOffset%l.PointerSize != 0:
		return fmt.Errorf("members offset %d is not %d-byte aligned", l.MembersOffset, l.PointerSize)
	case l.Align <= 0 || l.Size%l.Align != 0:
		return fmt.Errorf("size %d is not a multiple of alignment %d", l.Size, l.Align)
	case l.Size < l.MembersOffset+l.PointerSize:
		return fmt.Errorf("size %d truncates members", l.Size)
	case l.ByteOrder != LittleEndian && l.ByteOrder != BigEndian:
		return fmt.Errorf("unknown byte order %q", l.ByteOrder)
	}
	return nil
}

// Equal reports whether l and o describe the same bytes.
func (l Layout) Equal(o Layout) bool {
	return l.Size == o.Size &&
		l.Align == o.Align &&
		l.LengthOffset == o.LengthOffset &&
		l.MembersOffset == o.MembersOffset &&
		l.PointerSize == o.PointerSize &&
		l.ByteOrder == o.ByteOrder
}

// MembersSize is the byte length of a buffer holding n members.
func (l Layout) MembersSize(n int) int {
	return n * Int32Size
}

func (l Layout) String() string {
	return fmt.Sprintf("IntArray{size=%d align=%d length@%d members@%d ptr=%d %s}",
		l.Size, l.Align, l.LengthOffset, l.MembersOffset, l.PointerSize, l.ByteOrder)
}

func alignUp(n, align int) int {
	return (n + align - 1) / align * align
}

func nativeByteOrder() ByteOrder {
	probe := uint16(1)
	if *(*byte)(unsafe.Pointer(&probe)) == 1 {
		return LittleEndian
	}
	return BigEndian
}

package abi

import (
	"fmt"

	"github.com/joecorcoran/talks/domain/entities"
)

// Header is the decoded transfer struct: a length and the address of the
// members buffer in the callee's address space.
type Header struct {
	Length  int32
	Members uint64
}

// EncodeHeader writes h into a fresh buffer of l.Size bytes. Padding is zero.
func EncodeHeader(l entities.Layout, h Header) []byte {
	buf := make([]byte, l.Size)
	PutHeader(l, buf, h)
	return buf
}

// PutHeader writes h into buf, which must hold at least l.Size bytes.
func PutHeader(l entities.Layout, buf []byte, h Header) {
	order := l.ByteOrder.Binary()
	order.PutUint32(buf[l.LengthOffset:], uint32(h.Length))
	if l.PointerSize == 4 {
		order.PutUint32(buf[l.MembersOffset:], uint32(h.Members))
		return
	}
	order.PutUint64(buf[l.MembersOffset:], h.Members)
}

// DecodeHeader reads a transfer struct laid out per l.
func DecodeHeader(l entities.Layout, buf []byte) (Header, error) {
	if len(buf) < l.Size {
		return Header{}, fmt.Errorf("abi: header needs %d bytes, have %d", l.Size, len(buf))
	}
	order := l.ByteOrder.Binary()
	h := Header{Length: int32(order.Uint32(buf[l.LengthOffset:]))}
	if l.PointerSize == 4 {
		h.Members = uint64(order.Uint32(buf[l.MembersOffset:]))
	} else {
		h.Members = order.Uint64(buf[l.MembersOffset:])
	}
	return h, nil
}

// EncodeMembers serialises members as contiguous int32 values.
func EncodeMembers(order entities.ByteOrder, members []int32) []byte {
	buf := make([]byte, len(members)*entities.Int32Size)
	PutMembers(order, buf, members)
	return buf
}

// PutMembers writes members into buf, which must be large enough.
func PutMembers(order entities.ByteOrder, buf []byte, members []int32) {
	bo := order.Binary()
	for i, m := range members {
		bo.PutUint32(buf[i*entities.Int32Size:], uint32(m))
	}
}

// DecodeMembers reads contiguous int32 values. An empty buffer yields an
// empty, non-nil slice.
func DecodeMembers(order entities.ByteOrder, buf []byte) ([]int32, error) {
	if len(buf)%entities.Int32Size != 0 {
		return nil, fmt.Errorf("abi: members buffer of %d bytes is not a whole number of int32", len(buf))
	}
	bo := order.Binary()
	out := make([]int32, len(buf)/entities.Int32Size)
	for i := range out {
		out[i] = int32(bo.Uint32(buf[i*entities.Int32Size:]))
	}
	return out, nil
}

// CheckLength validates a length read off the boundary against the
// hardened contract: negative lengths and a null members pointer with
// elements are invalid, zero is empty.
func CheckLength(h Header) entities.Status {
	switch {
	case h.Length < 0:
		return entities.StatusInvalidArgument
	case h.Length > 0 && h.Members == 0:
		return entities.StatusInvalidArgument
	case h.Length == 0:
		return entities.StatusEmptyArray
	}
	return entities.StatusOK
}

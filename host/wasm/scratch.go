package wasm

import (
	"context"
	"fmt"

	"github.com/joecorcoran/talks/domain/entities"
	liberrors "github.com/joecorcoran/talks/domain/errors"
	"github.com/joecorcoran/talks/internal/abi"
	"github.com/tetratelabs/wazero/api"
)

// scratch owns the guest buffers the host places for a single call.
type scratch struct {
	lib   *Library
	ptrs  []uint32
	sizes []uint32
}

func (l *Library) scratch() *scratch {
	return &scratch{lib: l}
}

// alloc reserves size bytes of guest memory through allocate.
func (s *scratch) alloc(ctx context.Context, size int) (uint32, error) {
	if size <= 0 {
		return 0, nil
	}
	res, err := s.lib.call(ctx, entities.SymbolAllocate, api.EncodeU32(uint32(size))) //nolint:gosec // G115: sizes are bounded by wasm32
	if err != nil {
		return 0, err
	}
	ptr := api.DecodeU32(res)
	if ptr == 0 {
		return 0, &liberrors.StatusError{Op: entities.SymbolAllocate, Status: entities.StatusAllocationFailed}
	}
	s.ptrs = append(s.ptrs, ptr)
	s.sizes = append(s.sizes, uint32(size)) //nolint:gosec // G115: checked above
	return ptr, nil
}

// write copies data into guest memory at ptr.
func (s *scratch) write(ptr uint32, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if !s.lib.module.Memory().Write(ptr, data) {
		return fmt.Errorf("wasm: write %d bytes at %#x: out of range", len(data), ptr)
	}
	return nil
}

// putArray places members and an IntArray pointing at them in guest memory
// and returns the struct's address. An empty slice yields a struct with a
// zero length and a null members pointer.
func (s *scratch) putArray(ctx context.Context, members []int32) (uint32, error) {
	layout := s.lib.layout

	var membersPtr uint32
	if len(members) > 0 {
		ptr, err := s.alloc(ctx, layout.MembersSize(len(members)))
		if err != nil {
			return 0, err
		}
		if err := s.write(ptr, abi.EncodeMembers(layout.ByteOrder, members)); err != nil {
			return 0, err
		}
		membersPtr = ptr
	}

	array, err := s.alloc(ctx, layout.Size)
	if err != nil {
		return 0, err
	}
	header := abi.EncodeHeader(layout, abi.Header{
		Length:  int32(len(members)), //nolint:gosec // G115: wasm32 cannot address more
		Members: uint64(membersPtr),
	})
	if err := s.write(array, header); err != nil {
		return 0, err
	}
	return array, nil
}

// release deallocates every buffer in reverse order.
func (s *scratch) release(ctx context.Context) {
	for i := len(s.ptrs) - 1; i >= 0; i-- {
		if _, err := s.lib.call(ctx, entities.SymbolDeallocate, uint64(s.ptrs[i]), uint64(s.sizes[i])); err != nil {
			s.lib.logger.Warn("wasm: failed to release scratch buffer",
				"library", s.lib.name, "ptr", s.ptrs[i], "error", err)
		}
	}
	s.ptrs = s.ptrs[:0]
	s.sizes = s.sizes[:0]
}

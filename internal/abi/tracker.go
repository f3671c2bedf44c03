package abi

import (
	"sync"

	"github.com/joecorcoran/talks/domain/entities"
	"github.com/joecorcoran/talks/domain/errors"
)

// DefaultMaxTotalAllocations bounds the bytes a library may have handed out
// and not yet had freed.
const DefaultMaxTotalAllocations = 100 * 1024 * 1024 // 100 MB

// AllocFunc obtains size bytes and returns their address. keep is retained
// by the tracker until the block is released, which pins Go-allocated memory
// against the garbage collector. A zero address means the allocation failed.
type AllocFunc func(size int) (ptr uintptr, keep any)

// Kind names what a tracked block holds. Each free export accepts exactly
// one kind so a pointer handed to the wrong free is ignored rather than
// releasing part of a larger allocation.
type Kind uint8

const (
	// KindBuffer is raw memory the host requested or a packed result.
	KindBuffer Kind = iota + 1
	// KindMembers is an int32 members buffer returned by tail.
	KindMembers
	// KindArray is an IntArray struct returned by tail_array.
	KindArray
	// KindString is a NUL-terminated string returned by describe.
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBuffer:
		return "buffer"
	case KindMembers:
		return "members"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

type block struct {
	keep any
	size int
	kind Kind
}

// Tracker records every block a library hands across the boundary so that
// frees can be validated and leaks observed.
type Tracker struct {
	blocks map[uintptr]block
	total  int
	limit  int
	mu     sync.Mutex
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithMaxTotalAllocations sets the byte limit. Non-positive values are ignored.
func WithMaxTotalAllocations(limit int) TrackerOption {
	return func(t *Tracker) {
		if limit > 0 {
			t.limit = limit
		}
	}
}

// NewTracker creates an empty Tracker.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		blocks: make(map[uintptr]block),
		limit:  DefaultMaxTotalAllocations,
	}
	t.Configure(opts...)
	return t
}

// Configure applies opts to an existing Tracker.
func (t *Tracker) Configure(opts ...TrackerOption) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, opt := range opts {
		opt(t)
	}
}

// Allocate obtains size bytes through alloc and tracks them as kind. A zero
// size returns 0 without calling alloc.
func (t *Tracker) Allocate(size int, kind Kind, alloc AllocFunc) (uintptr, error) {
	if size <= 0 {
		return 0, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.total+size > t.limit {
		return 0, &errors.MemoryError{Requested: size, Current: t.total, Limit: t.limit}
	}

	ptr, keep := alloc(size)
	if ptr == 0 {
		return 0, errors.ErrAllocationFailed
	}

	t.blocks[ptr] = block{keep: keep, size: size, kind: kind}
	t.total += size
	return ptr, nil
}

// Release forgets ptr and returns the size it was tracked with. Untracked
// pointers, including ones already released, and pointers tracked as a
// different kind report ok=false so that neither reaches the underlying
// allocator.
func (t *Tracker) Release(ptr uintptr, kind Kind) (size int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, exists := t.blocks[ptr]
	if !exists || b.kind != kind {
		return 0, false
	}
	delete(t.blocks, ptr)
	t.total -= b.size
	if t.total < 0 {
		t.total = 0
	}
	return b.size, true
}

// Owns reports whether ptr is a live block of the given kind.
func (t *Tracker) Owns(ptr uintptr, kind Kind) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	b, ok := t.blocks[ptr]
	return ok && b.kind == kind
}

// Stats returns the number of live blocks and their total size.
func (t *Tracker) Stats() entities.AllocationStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return entities.AllocationStats{Count: len(t.blocks), Bytes: int64(t.total)}
}

// Reset forgets every block and returns their addresses so the caller can
// free them.
func (t *Tracker) Reset() []uintptr {
	t.mu.Lock()
	defer t.mu.Unlock()

	ptrs := make([]uintptr, 0, len(t.blocks))
	for ptr := range t.blocks {
		ptrs = append(ptrs, ptr)
	}
	clear(t.blocks)
	t.total = 0
	return ptrs
}

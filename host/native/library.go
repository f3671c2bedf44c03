//go:build cgo && (linux || darwin)

package native

/*
#cgo linux LDFLAGS: -ldl
#cgo CFLAGS: -I${SRCDIR}/../../include
#include <dlfcn.h>
#include <stdlib.h>
#include <stdint.h>
#include "intarray.h"

static void* ia_dlopen(const char* path) {
	return dlopen(path, RTLD_NOW | RTLD_LOCAL);
}
static int ia_dlclose(void* h) {
	return dlclose(h);
}
static const char* ia_dlerror(void) {
	return dlerror();
}
// Clear dlerror, call dlsym, and return the error (if any) alongside the symbol.
static void* ia_dlsym(void* h, const char* name, const char** err) {
	dlerror();
	void* p = dlsym(h, name);
	const char* e = dlerror();
	if (e) { *err = e; return NULL; }
	*err = NULL;
	return p;
}

// Typed trampolines: cgo cannot call through a C function pointer directly.
static int32_t ia_call_add_one(void* fn, int32_t v) {
	return ((int32_t (*)(int32_t))fn)(v);
}
static int32_t ia_call_head(void* fn, const IntArray* a) {
	return ((int32_t (*)(const IntArray*))fn)(a);
}
static int32_t ia_call_head_checked(void* fn, const IntArray* a, int32_t* out) {
	return ((int32_t (*)(const IntArray*, int32_t*))fn)(a, out);
}
static int32_t* ia_call_tail(void* fn, const IntArray* a) {
	return ((int32_t* (*)(const IntArray*))fn)(a);
}
static IntArray* ia_call_tail_array(void* fn, const IntArray* a) {
	return ((IntArray* (*)(const IntArray*))fn)(a);
}
static void ia_call_free(void* fn, void* p) {
	((void (*)(void*))fn)(p);
}
static int32_t ia_call_status(void* fn) {
	return ((int32_t (*)(void))fn)();
}
static int32_t ia_call_live(void* fn, int64_t* bytes) {
	return ((int32_t (*)(int64_t*))fn)(bytes);
}
static char* ia_call_describe(void* fn) {
	return ((char* (*)(void))fn)();
}
*/
import "C"

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	"github.com/joecorcoran/talks/domain/entities"
	liberrors "github.com/joecorcoran/talks/domain/errors"
	"github.com/joecorcoran/talks/domain/ports"
	"github.com/joecorcoran/talks/internal/abi"
)

var _ ports.Library = (*Library)(nil)

// closeHandle releases a dlopen handle.
var closeHandle = func(handle unsafe.Pointer) {
	C.ia_dlclose(handle)
}

// requiredExports are resolved at load time.
var requiredExports = append([]string{entities.SymbolFreeString}, entities.CoreExports...)

// Library is a loaded C-ABI IntArray library. Calls are serialised so that
// last_status always reports the call that preceded it.
type Library struct {
	handle unsafe.Pointer
	syms   map[string]unsafe.Pointer
	logger *slog.Logger
	path   string
	layout entities.Layout
	mu     sync.Mutex
	closed bool
}

// Open loads the shared library at path and resolves its exports.
func Open(_ context.Context, path string, opts ...Option) (*Library, error) {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	handle := C.ia_dlopen(cpath)
	if handle == nil {
		return nil, &liberrors.LoadError{Path: path, Err: errors.New(C.GoString(C.ia_dlerror()))}
	}

	syms := make(map[string]unsafe.Pointer, len(requiredExports))
	for _, name := range requiredExports {
		sym, err := lookup(handle, name)
		if err != nil {
			closeHandle(handle)
			return nil, err
		}
		syms[name] = sym
	}

	cfg.logger.Debug("native: library loaded", "path", path, "exports", len(syms))
	return &Library{
		handle: handle,
		syms:   syms,
		logger: cfg.logger,
		path:   path,
		layout: entities.NativeLayout(),
	}, nil
}

func lookup(handle unsafe.Pointer, name string) (unsafe.Pointer, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	var cerr *C.char
	sym := C.ia_dlsym(handle, cname, &cerr)
	if cerr != nil {
		return nil, &liberrors.SymbolError{Symbol: name, Err: errors.New(C.GoString(cerr))}
	}
	if sym == nil {
		return nil, &liberrors.SymbolError{Symbol: name}
	}
	return sym, nil
}

// Path returns the file the library was loaded from.
func (l *Library) Path() string {
	return l.path
}

// Layout returns the layout the host encodes inputs with.
func (l *Library) Layout() entities.Layout {
	return l.layout
}

// AddOne calls add_one.
func (l *Library) AddOne(_ context.Context, value int32) (int32, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, ErrClosed
	}

	return int32(C.ia_call_add_one(l.syms[entities.SymbolAddOne], C.int32_t(value))), nil
}

// Head calls head_checked.
func (l *Library) Head(_ context.Context, members []int32) (int32, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, ErrClosed
	}

	array, err := l.putArray(members)
	if err != nil {
		return 0, err
	}
	defer array.free()

	out := (*C.int32_t)(C.malloc(C.size_t(entities.Int32Size)))
	if out == nil {
		return 0, liberrors.NewStatusError(entities.SymbolHeadChecked, entities.StatusAllocationFailed)
	}
	defer C.free(unsafe.Pointer(out))

	status := entities.Status(C.ia_call_head_checked(l.syms[entities.SymbolHeadChecked], array.ptr, out))
	if err := liberrors.NewStatusError(entities.SymbolHeadChecked, status); err != nil {
		return 0, err
	}
	return int32(*out), nil
}

// HeadRaw calls head and reads last_status.
func (l *Library) HeadRaw(_ context.Context, members []int32) (int32, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, ErrClosed
	}

	array, err := l.putArray(members)
	if err != nil {
		return 0, err
	}
	defer array.free()

	v := int32(C.ia_call_head(l.syms[entities.SymbolHead], array.ptr))
	if err := l.lastStatus(entities.SymbolHead); err != nil {
		return 0, err
	}
	return v, nil
}

// Tail calls tail_array and frees the result with free_array.
func (l *Library) Tail(_ context.Context, members []int32) ([]int32, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrClosed
	}

	array, err := l.putArray(members)
	if err != nil {
		return nil, err
	}
	defer array.free()

	result := C.ia_call_tail_array(l.syms[entities.SymbolTailArray], array.ptr)
	if result == nil {
		if err := l.lastStatus(entities.SymbolTailArray); err != nil {
			return nil, err
		}
		return nil, liberrors.NewStatusError(entities.SymbolTailArray, entities.StatusInternal)
	}
	defer C.ia_call_free(l.syms[entities.SymbolFreeArray], unsafe.Pointer(result))

	h, err := abi.DecodeHeader(l.layout, unsafe.Slice((*byte)(unsafe.Pointer(result)), l.layout.Size))
	if err != nil {
		return nil, err
	}
	if h.Length < 0 {
		return nil, fmt.Errorf("native: %s returned negative length %d", entities.SymbolTailArray, h.Length)
	}
	return l.readMembers(uintptr(h.Members), int(h.Length))
}

// TailRaw calls tail, reads len(members)-1 values and frees them with
// free_members.
func (l *Library) TailRaw(_ context.Context, members []int32) ([]int32, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrClosed
	}

	array, err := l.putArray(members)
	if err != nil {
		return nil, err
	}
	defer array.free()

	result := C.ia_call_tail(l.syms[entities.SymbolTail], array.ptr)
	if result == nil {
		// NULL with OK is the singleton case.
		if err := l.lastStatus(entities.SymbolTail); err != nil {
			return nil, err
		}
		return []int32{}, nil
	}
	defer C.ia_call_free(l.syms[entities.SymbolFreeMembers], unsafe.Pointer(result))

	return l.readMembers(uintptr(unsafe.Pointer(result)), len(members)-1)
}

// Describe calls describe and releases the string with free_string.
func (l *Library) Describe(_ context.Context) (*entities.Descriptor, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrClosed
	}

	cs := C.ia_call_describe(l.syms[entities.SymbolDescribe])
	if cs == nil {
		if err := l.lastStatus(entities.SymbolDescribe); err != nil {
			return nil, err
		}
		return nil, liberrors.NewStatusError(entities.SymbolDescribe, entities.StatusInternal)
	}
	data := C.GoString(cs)
	C.ia_call_free(l.syms[entities.SymbolFreeString], unsafe.Pointer(cs))

	var d entities.Descriptor
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		return nil, fmt.Errorf("native: decode descriptor: %w", err)
	}
	return &d, nil
}

// Stats calls live_allocations.
func (l *Library) Stats(_ context.Context) (entities.AllocationStats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return entities.AllocationStats{}, ErrClosed
	}

	var bytes C.int64_t
	count := C.ia_call_live(l.syms[entities.SymbolLiveAllocations], &bytes)
	return entities.AllocationStats{Count: int(count), Bytes: int64(bytes)}, nil
}

// Close invalidates the Library. The handle stays open: a shared library
// carrying its own Go runtime cannot be unloaded.
func (l *Library) Close(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.closed {
		l.closed = true
		l.logger.Debug("native: library closed", "path", l.path)
	}
	return nil
}

func (l *Library) lastStatus(op string) error {
	status := entities.Status(C.ia_call_status(l.syms[entities.SymbolLastStatus]))
	return liberrors.NewStatusError(op, status)
}

// readMembers copies n int32 values the library placed at addr.
func (l *Library) readMembers(addr uintptr, n int) ([]int32, error) {
	if n <= 0 {
		return []int32{}, nil
	}
	if addr == 0 {
		return nil, fmt.Errorf("native: null members with length %d", n)
	}
	//nolint:govet // addr is C heap memory owned by the library until freed
	raw := unsafe.Slice((*byte)(unsafe.Pointer(addr)), l.layout.MembersSize(n))
	return abi.DecodeMembers(l.layout.ByteOrder, raw)
}

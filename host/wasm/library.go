// Package wasm loads the IntArray library compiled to a wasip1 reactor and
// calls it through wazero.
//
// Inputs are placed in guest linear memory with the module's allocate
// export, encoded per entities.Wasm32Layout. Every buffer the host places is
// released with deallocate before a call returns, and every result the
// library hands out is released through its paired free export.
package wasm

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/joecorcoran/talks/domain/entities"
	liberrors "github.com/joecorcoran/talks/domain/errors"
	"github.com/joecorcoran/talks/domain/ports"
	adapter "github.com/joecorcoran/talks/infrastructure/wazero"
	"github.com/joecorcoran/talks/internal/abi"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

var _ ports.Library = (*Library)(nil)

// requiredExports are resolved at load time.
var requiredExports = append([]string{entities.SymbolAllocate, entities.SymbolDeallocate}, entities.CoreExports...)

// Library is a loaded wasm IntArray library. Calls are serialised because a
// module instance is not safe for concurrent use.
type Library struct {
	runtime wazero.Runtime
	module  api.Module
	fns     map[string]api.Function
	logger  *slog.Logger
	name    string
	layout  entities.Layout
	mu      sync.Mutex
}

type config struct {
	logger         *slog.Logger
	name           string
	maxMemoryPages uint32
}

// Option configures Load.
type Option func(*config)

// WithLogger sets the logger for host diagnostics and replayed guest logs.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxMemoryPages caps guest linear memory in 64 KiB pages.
func WithMaxMemoryPages(pages uint32) Option {
	return func(c *config) {
		c.maxMemoryPages = pages
	}
}

// WithName sets the module instance name used in logs.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// LoadFile reads a wasm module from path and loads it.
func LoadFile(ctx context.Context, path string, opts ...Option) (*Library, error) {
	wasmBytes, err := os.ReadFile(path) //nolint:gosec // G304: path is operator configuration
	if err != nil {
		return nil, &liberrors.LoadError{Path: path, Err: err}
	}
	lib, err := Load(ctx, wasmBytes, opts...)
	if err != nil {
		var le *liberrors.LoadError
		if errors.As(err, &le) && le.Path == "" {
			le.Path = path
		}
		return nil, err
	}
	return lib, nil
}

// Load instantiates wasmBytes and resolves the library's exports.
func Load(ctx context.Context, wasmBytes []byte, opts ...Option) (*Library, error) {
	cfg := config{logger: slog.Default(), name: entities.LibraryName}
	for _, opt := range opts {
		opt(&cfg)
	}

	rc := wazero.NewRuntimeConfig()
	if cfg.maxMemoryPages > 0 {
		rc = rc.WithMemoryLimitPages(cfg.maxMemoryPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, rc)

	lib, err := instantiate(ctx, rt, wasmBytes, cfg)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	return lib, nil
}

func instantiate(ctx context.Context, rt wazero.Runtime, wasmBytes []byte, cfg config) (*Library, error) {
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		return nil, &liberrors.LoadError{Err: fmt.Errorf("instantiate wasi: %w", err)}
	}
	if err := adapter.RegisterWithRuntime(ctx, rt, adapter.WithLogger(cfg.logger)); err != nil {
		return nil, &liberrors.LoadError{Err: fmt.Errorf("register host module: %w", err)}
	}

	ctx = adapter.WithLibraryName(ctx, cfg.name)
	modCfg := wazero.NewModuleConfig().
		WithName(cfg.name).
		WithStderr(os.Stderr)
	mod, err := rt.InstantiateWithConfig(ctx, wasmBytes, modCfg)
	if err != nil {
		return nil, &liberrors.LoadError{Err: fmt.Errorf("instantiate module: %w", err)}
	}

	// Reactor modules initialise the Go runtime here.
	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			return nil, &liberrors.LoadError{Err: fmt.Errorf("call _initialize: %w", err)}
		}
	}

	fns := make(map[string]api.Function, len(requiredExports))
	for _, sym := range requiredExports {
		fn := mod.ExportedFunction(sym)
		if fn == nil {
			return nil, &liberrors.SymbolError{Symbol: sym}
		}
		fns[sym] = fn
	}

	cfg.logger.Debug("wasm: library loaded", "library", cfg.name, "exports", len(fns))
	return &Library{
		runtime: rt,
		module:  mod,
		fns:     fns,
		logger:  cfg.logger,
		name:    cfg.name,
		layout:  entities.Wasm32Layout,
	}, nil
}

// Layout returns the layout the host encodes inputs with.
func (l *Library) Layout() entities.Layout {
	return l.layout
}

// AddOne calls add_one.
func (l *Library) AddOne(ctx context.Context, value int32) (int32, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	res, err := l.call(ctx, entities.SymbolAddOne, api.EncodeI32(value))
	if err != nil {
		return 0, err
	}
	return api.DecodeI32(res), nil
}

// Head calls head_checked.
func (l *Library) Head(ctx context.Context, members []int32) (int32, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.scratch()
	defer s.release(ctx)

	array, err := s.putArray(ctx, members)
	if err != nil {
		return 0, err
	}
	out, err := s.alloc(ctx, entities.Int32Size)
	if err != nil {
		return 0, err
	}

	res, err := l.call(ctx, entities.SymbolHeadChecked, uint64(array), uint64(out))
	if err != nil {
		return 0, err
	}
	if err := liberrors.NewStatusError(entities.SymbolHeadChecked, entities.Status(api.DecodeI32(res))); err != nil {
		return 0, err
	}
	raw, err := l.read(out, entities.Int32Size)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(raw)), nil //nolint:gosec // G115: two's complement reinterpretation
}

// HeadRaw calls head and reads last_status.
func (l *Library) HeadRaw(ctx context.Context, members []int32) (int32, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.scratch()
	defer s.release(ctx)

	array, err := s.putArray(ctx, members)
	if err != nil {
		return 0, err
	}
	res, err := l.call(ctx, entities.SymbolHead, uint64(array))
	if err != nil {
		return 0, err
	}
	if err := l.lastStatus(ctx, entities.SymbolHead); err != nil {
		return 0, err
	}
	return api.DecodeI32(res), nil
}

// Tail calls tail_array and frees the result with free_array.
func (l *Library) Tail(ctx context.Context, members []int32) ([]int32, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.scratch()
	defer s.release(ctx)

	array, err := s.putArray(ctx, members)
	if err != nil {
		return nil, err
	}
	res, err := l.call(ctx, entities.SymbolTailArray, uint64(array))
	if err != nil {
		return nil, err
	}
	result := api.DecodeU32(res)
	if result == 0 {
		if err := l.lastStatus(ctx, entities.SymbolTailArray); err != nil {
			return nil, err
		}
		return nil, liberrors.NewStatusError(entities.SymbolTailArray, entities.StatusInternal)
	}
	defer l.free(ctx, entities.SymbolFreeArray, result)

	raw, err := l.read(result, uint32(l.layout.Size))
	if err != nil {
		return nil, err
	}
	h, err := abi.DecodeHeader(l.layout, raw)
	if err != nil {
		return nil, err
	}
	if h.Length < 0 {
		return nil, fmt.Errorf("wasm: %s returned negative length %d", entities.SymbolTailArray, h.Length)
	}
	return l.readMembers(uint32(h.Members), int(h.Length))
}

// TailRaw calls tail, reads len(members)-1 values and frees them with
// free_members.
func (l *Library) TailRaw(ctx context.Context, members []int32) ([]int32, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.scratch()
	defer s.release(ctx)

	array, err := s.putArray(ctx, members)
	if err != nil {
		return nil, err
	}
	res, err := l.call(ctx, entities.SymbolTail, uint64(array))
	if err != nil {
		return nil, err
	}
	result := api.DecodeU32(res)
	if result == 0 {
		// 0 with OK is the singleton case.
		if err := l.lastStatus(ctx, entities.SymbolTail); err != nil {
			return nil, err
		}
		return []int32{}, nil
	}
	defer l.free(ctx, entities.SymbolFreeMembers, result)

	return l.readMembers(result, len(members)-1)
}

// Describe calls describe and releases the returned JSON with deallocate.
func (l *Library) Describe(ctx context.Context) (*entities.Descriptor, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	packed, err := l.call(ctx, entities.SymbolDescribe)
	if err != nil {
		return nil, err
	}
	ptr, length := abi.UnpackPtrLen(packed)
	if ptr == 0 || length == 0 {
		if err := l.lastStatus(ctx, entities.SymbolDescribe); err != nil {
			return nil, err
		}
		return nil, liberrors.NewStatusError(entities.SymbolDescribe, entities.StatusInternal)
	}
	defer func() {
		if _, err := l.call(ctx, entities.SymbolDeallocate, uint64(ptr), uint64(length)); err != nil {
			l.logger.Warn("wasm: failed to release descriptor", "library", l.name, "error", err)
		}
	}()

	data, err := l.read(ptr, length)
	if err != nil {
		return nil, err
	}
	var d entities.Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("wasm: decode descriptor: %w", err)
	}
	return &d, nil
}

// Stats calls live_allocations. The out-parameter the host allocates for the
// call is itself live while the library counts, so it is subtracted.
func (l *Library) Stats(ctx context.Context) (entities.AllocationStats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.scratch()
	defer s.release(ctx)

	const outSize = 8
	out, err := s.alloc(ctx, outSize)
	if err != nil {
		return entities.AllocationStats{}, err
	}
	res, err := l.call(ctx, entities.SymbolLiveAllocations, uint64(out))
	if err != nil {
		return entities.AllocationStats{}, err
	}
	raw, err := l.read(out, outSize)
	if err != nil {
		return entities.AllocationStats{}, err
	}
	return entities.AllocationStats{
		Count: int(api.DecodeI32(res)) - 1,
		Bytes: int64(binary.LittleEndian.Uint64(raw)) - outSize, //nolint:gosec // G115: byte totals fit in int64
	}, nil
}

// Close tears down the runtime and every module in it.
func (l *Library) Close(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.runtime.Close(ctx)
}

func (l *Library) call(ctx context.Context, symbol string, params ...uint64) (uint64, error) {
	ctx = adapter.WithLibraryName(ctx, l.name)
	results, err := l.fns[symbol].Call(ctx, params...)
	if err != nil {
		return 0, fmt.Errorf("wasm: call %s: %w", symbol, err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0], nil
}

func (l *Library) lastStatus(ctx context.Context, op string) error {
	res, err := l.call(ctx, entities.SymbolLastStatus)
	if err != nil {
		return err
	}
	return liberrors.NewStatusError(op, entities.Status(api.DecodeI32(res)))
}

func (l *Library) free(ctx context.Context, symbol string, ptr uint32) {
	if _, err := l.call(ctx, symbol, uint64(ptr)); err != nil {
		l.logger.Warn("wasm: failed to release result", "library", l.name, "symbol", symbol, "error", err)
	}
}

// read copies length bytes of guest memory at ptr.
func (l *Library) read(ptr, length uint32) ([]byte, error) {
	view, ok := l.module.Memory().Read(ptr, length)
	if !ok {
		return nil, fmt.Errorf("wasm: read %d bytes at %#x: out of range", length, ptr)
	}
	data := make([]byte, length)
	copy(data, view)
	return data, nil
}

func (l *Library) readMembers(ptr uint32, n int) ([]int32, error) {
	if n <= 0 {
		return []int32{}, nil
	}
	raw, err := l.read(ptr, uint32(l.layout.MembersSize(n))) //nolint:gosec // G115: n is bounded by the input length
	if err != nil {
		return nil, err
	}
	return abi.DecodeMembers(l.layout.ByteOrder, raw)
}

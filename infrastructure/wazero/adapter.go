package wazero

import (
	"context"
	"log/slog"

	intlog "github.com/joecorcoran/talks/log"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// DefaultModuleName is the import module the wasm library links against.
const DefaultModuleName = "intarray_host"

// DefaultMaxMessageSize bounds a single log record read from guest memory.
const DefaultMaxMessageSize = 64 * 1024

// AdapterConfig holds configuration for the wazero adapter.
type AdapterConfig struct {
	// Logger receives replayed guest records (default: slog.Default()).
	Logger *slog.Logger

	// ModuleName is the host module name (default: "intarray_host").
	ModuleName string

	// MaxMessageSize limits the size of a log record read from guest memory.
	MaxMessageSize uint32
}

// AdapterOption configures the adapter.
type AdapterOption func(*AdapterConfig)

// WithModuleName sets the host module name.
func WithModuleName(name string) AdapterOption {
	return func(c *AdapterConfig) {
		c.ModuleName = name
	}
}

// WithMaxMessageSize sets the maximum log record size.
func WithMaxMessageSize(size uint32) AdapterOption {
	return func(c *AdapterConfig) {
		c.MaxMessageSize = size
	}
}

// WithLogger sets the logger guest records are replayed into.
func WithLogger(l *slog.Logger) AdapterOption {
	return func(c *AdapterConfig) {
		if l != nil {
			c.Logger = l
		}
	}
}

func defaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		ModuleName:     DefaultModuleName,
		MaxMessageSize: DefaultMaxMessageSize,
	}
}

// RegisterWithRuntime instantiates the host module in runtime. It must be
// called before the library module is instantiated.
func RegisterWithRuntime(ctx context.Context, runtime wazero.Runtime, opts ...AdapterOption) error {
	cfg := defaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	builder := runtime.NewHostModuleBuilder(cfg.ModuleName)

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			handleLogMessage(ctx, mod, stack[0], cfg)
		}), []api.ValueType{api.ValueTypeI64}, []api.ValueType{}).
		Export("log_message")

	_, err := builder.Instantiate(ctx)
	return err
}

// handleLogMessage reads a record from guest memory and replays it. The
// guest owns the buffer and frees it after the call returns.
func handleLogMessage(ctx context.Context, mod api.Module, packed uint64, cfg AdapterConfig) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	library := GetLibraryName(ctx, mod)

	ptr, length := unpackPtrLen(packed)
	if length > cfg.MaxMessageSize {
		logger.WarnContext(ctx, "wazero: guest log message too large",
			"library", library, "size", length, "max", cfg.MaxMessageSize)
		return
	}

	payload, ok := mod.Memory().Read(ptr, length)
	if !ok {
		logger.WarnContext(ctx, "wazero: failed to read guest log message", "library", library)
		return
	}

	msg, err := intlog.Decode(payload)
	if err != nil {
		logger.InfoContext(ctx, "guest log (raw)", "library", library, "payload", string(payload))
		return
	}
	intlog.Replay(ctx, logger, msg, slog.String("source", "guest"), slog.String("library", library))
}

func unpackPtrLen(packed uint64) (ptr, length uint32) {
	//nolint:gosec // G115: the packed format stores 32-bit values
	ptr = uint32(packed >> 32)
	//nolint:gosec // G115: the packed format stores 32-bit values
	length = uint32(packed & 0xFFFFFFFF)
	return ptr, length
}

package host

import (
	"context"
	"fmt"

	"github.com/joecorcoran/talks/domain/entities"
	liberrors "github.com/joecorcoran/talks/domain/errors"
	"github.com/joecorcoran/talks/domain/ports"
	"github.com/joecorcoran/talks/host/native"
	"github.com/joecorcoran/talks/host/wasm"
)

// Open resolves configuration, loads the library and verifies it.
func Open(ctx context.Context, opts ...Option) (ports.Library, error) {
	oc := defaultOpenConfig()
	for _, opt := range opts {
		opt(&oc)
	}

	cfg, err := oc.resolve()
	if err != nil {
		return nil, err
	}
	path, err := Locate(cfg)
	if err != nil {
		return nil, err
	}

	logger := oc.logger.With("backend", string(cfg.Backend), "path", path)

	var lib ports.Library
	switch cfg.Backend {
	case entities.BackendWasm:
		lib, err = wasm.LoadFile(ctx, path,
			wasm.WithLogger(oc.logger),
			wasm.WithMaxMemoryPages(cfg.MaxMemoryPages),
		)
	default:
		lib, err = native.Open(ctx, path, native.WithLogger(oc.logger))
	}
	if err != nil {
		return nil, fmt.Errorf("open %s library: %w", cfg.Backend, err)
	}

	if err := Verify(ctx, lib, ExpectedLayout(cfg.Backend), cfg.VerifyLayout); err != nil {
		_ = lib.Close(ctx)
		logger.Error("host: library rejected", "error", err)
		return nil, err
	}

	logger.Debug("host: library ready")
	return lib, nil
}

// ExpectedLayout is the layout the host encodes with for backend b.
func ExpectedLayout(b entities.Backend) entities.Layout {
	if b == entities.BackendWasm {
		return entities.Wasm32Layout
	}
	return entities.NativeLayout()
}

// Verify fetches the library's descriptor and checks it lists every core
// export and reports a well-formed layout. When checkLayout is set the
// reported layout must equal want.
func Verify(ctx context.Context, lib ports.Library, want entities.Layout, checkLayout bool) error {
	d, err := lib.Describe(ctx)
	if err != nil {
		return fmt.Errorf("describe library: %w", err)
	}
	if err := ValidateDescriptor(d); err != nil {
		return err
	}
	if err := d.Layout.Validate(); err != nil {
		return &liberrors.ConfigError{Field: "Descriptor.Layout", Err: err}
	}
	if missing := d.MissingExports(entities.CoreExports); len(missing) > 0 {
		return &liberrors.MissingExportsError{Symbols: missing}
	}
	if checkLayout && !d.Layout.Equal(want) {
		return &liberrors.LayoutMismatchError{Want: want, Got: d.Layout}
	}
	return nil
}

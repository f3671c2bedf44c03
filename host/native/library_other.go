//go:build !cgo || !(linux || darwin)

package native

import (
	"context"

	liberrors "github.com/joecorcoran/talks/domain/errors"
	"github.com/joecorcoran/talks/domain/ports"
)

// Library is unavailable on this platform.
type Library struct {
	ports.Library
}

// Open always fails with ErrUnsupported.
func Open(_ context.Context, path string, _ ...Option) (*Library, error) {
	return nil, &liberrors.LoadError{Path: path, Err: ErrUnsupported}
}

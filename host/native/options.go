package native

import (
	"errors"
	"log/slog"
)

// ErrClosed is returned by calls on a closed Library.
var ErrClosed = errors.New("native: library closed")

// ErrUnsupported is returned by Open when the package was built without cgo
// or for a platform without dlopen.
var ErrUnsupported = errors.New("native: dynamic loading requires cgo on linux or darwin")

type config struct {
	logger *slog.Logger
}

// Option configures Open.
type Option func(*config)

// WithLogger sets the logger for load diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

package wazero

import (
	"context"

	"github.com/tetratelabs/wazero/api"
)

type contextKey struct {
	name string
}

var libraryNameKey = &contextKey{name: "library_name"}

// WithLibraryName records which library a call is made on behalf of.
func WithLibraryName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, libraryNameKey, name)
}

// LibraryNameFromContext retrieves the library name from the context.
func LibraryNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(libraryNameKey).(string)
	return name, ok
}

// GetLibraryName extracts the library name from ctx, falling back to the
// module name.
func GetLibraryName(ctx context.Context, mod api.Module) string {
	if name, ok := LibraryNameFromContext(ctx); ok {
		return name
	}
	if mod != nil {
		return mod.Name()
	}
	return "unknown"
}

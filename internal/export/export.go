// Package export holds the bookkeeping every library export shares: the
// last-status cell read by last_status, panic containment at the boundary,
// and the descriptor returned by describe.
package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"

	"github.com/joecorcoran/talks/domain/entities"
)

var lastStatus atomic.Int32

// SetStatus records s as the outcome of op and returns it.
func SetStatus(op string, s entities.Status) entities.Status {
	lastStatus.Store(int32(s))
	if s != entities.StatusOK {
		slog.Debug("intarray: rejected call", "symbol", op, "status", s.String())
	}
	return s
}

// LastStatus returns the status of the most recent call.
func LastStatus() entities.Status {
	return entities.Status(lastStatus.Load())
}

// Guard stops a panic at the export boundary and records StatusInternal.
// It must be deferred directly by the export:
//
//	defer export.Guard(entities.SymbolTail)
func Guard(op string) {
	if r := recover(); r != nil {
		lastStatus.Store(int32(entities.StatusInternal))
		slog.Error("intarray: recovered panic",
			"symbol", op,
			"panic", fmt.Sprint(r),
			"stack", string(debug.Stack()))
	}
}

// Describe renders the descriptor of a library built with layout that
// exports CoreExports plus extra.
func Describe(layout entities.Layout, extra ...string) ([]byte, error) {
	exports := make([]string, 0, len(entities.CoreExports)+len(extra))
	exports = append(exports, entities.CoreExports...)
	exports = append(exports, extra...)

	data, err := json.Marshal(entities.Descriptor{
		Name:    entities.LibraryName,
		Version: entities.LibraryVersion,
		Layout:  layout,
		Exports: exports,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal descriptor: %w", err)
	}
	return data, nil
}

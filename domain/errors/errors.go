// Package errors provides the typed errors of the IntArray boundary.
// All error types support unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/joecorcoran/talks/domain/entities"
)

// Sentinels for the non-OK status codes. StatusError wraps the matching one.
var (
	ErrInvalidArgument  = stdErrors.New("invalid argument")
	ErrEmptyArray       = stdErrors.New("empty array")
	ErrAllocationFailed = stdErrors.New("allocation failed")
	ErrInternal         = stdErrors.New("internal library error")
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// DetailedError is implemented by errors that can describe themselves as an
// ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts err to a structured ErrorDetail.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	if status, ok := StatusOf(err); ok {
		return entities.NewErrorDetail(statusType(status), err.Error()).WithCode(status.String())
	}

	return entities.NewErrorDetail("internal", err.Error())
}

// FromStatus maps a status code to its sentinel. StatusOK maps to nil.
func FromStatus(s entities.Status) error {
	switch s {
	case entities.StatusOK:
		return nil
	case entities.StatusInvalidArgument:
		return ErrInvalidArgument
	case entities.StatusEmptyArray:
		return ErrEmptyArray
	case entities.StatusAllocationFailed:
		return ErrAllocationFailed
	default:
		return ErrInternal
	}
}

// StatusOf recovers the status code carried by err, if any.
func StatusOf(err error) (entities.Status, bool) {
	var se *StatusError
	if stdErrors.As(err, &se) {
		return se.Status, true
	}
	switch {
	case stdErrors.Is(err, ErrInvalidArgument):
		return entities.StatusInvalidArgument, true
	case stdErrors.Is(err, ErrEmptyArray):
		return entities.StatusEmptyArray, true
	case stdErrors.Is(err, ErrAllocationFailed):
		return entities.StatusAllocationFailed, true
	case stdErrors.Is(err, ErrInternal):
		return entities.StatusInternal, true
	}
	return entities.StatusOK, false
}

func statusType(s entities.Status) string {
	switch s {
	case entities.StatusInvalidArgument, entities.StatusEmptyArray:
		return "argument"
	case entities.StatusAllocationFailed:
		return "memory"
	default:
		return "internal"
	}
}

// StatusError is a non-OK status returned by a library export.
type StatusError struct {
	Op     string
	Status entities.Status
}

// NewStatusError returns nil for StatusOK and a *StatusError otherwise.
func NewStatusError(op string, s entities.Status) error {
	if s == entities.StatusOK {
		return nil
	}
	return &StatusError{Op: op, Status: s}
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %v (status %d)", e.Op, FromStatus(e.Status), int32(e.Status))
}

func (e *StatusError) Unwrap() error {
	return FromStatus(e.Status)
}

// ToErrorDetail implements DetailedError.
func (e *StatusError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail(statusType(e.Status), e.Error()).
		WithCode(e.Status.String()).
		WithDetails(map[string]any{"symbol": e.Op})
}

// LayoutMismatchError reports that a library lays out IntArray differently
// from what the host expects.
type LayoutMismatchError struct {
	Want entities.Layout
	Got  entities.Layout
}

func (e *LayoutMismatchError) Error() string {
	return fmt.Sprintf("layout mismatch: host expects %s, library reports %s", e.Want, e.Got)
}

// ToErrorDetail implements DetailedError.
func (e *LayoutMismatchError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message: e.Error(),
		Type:    "layout",
		Code:    "layout_mismatch",
		Details: map[string]any{"want": e.Want, "got": e.Got},
	}
}

// SymbolError reports an export that could not be resolved.
type SymbolError struct {
	Err    error
	Symbol string
}

func (e *SymbolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("symbol %q: %v", e.Symbol, e.Err)
	}
	return fmt.Sprintf("symbol %q not exported", e.Symbol)
}

func (e *SymbolError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *SymbolError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "symbol", Code: e.Symbol}
}

// MissingExportsError reports a descriptor that omits required symbols.
type MissingExportsError struct {
	Symbols []string
}

func (e *MissingExportsError) Error() string {
	return fmt.Sprintf("library does not export: %s", strings.Join(e.Symbols, ", "))
}

// ToErrorDetail implements DetailedError.
func (e *MissingExportsError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message: e.Error(),
		Type:    "symbol",
		Code:    "missing_exports",
		Details: map[string]any{"symbols": e.Symbols},
	}
}

// LoadError reports a library that could not be located or loaded.
type LoadError struct {
	Err  error
	Path string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("load library %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("load library: %v", e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *LoadError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "load", Code: e.Path}
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "config", Code: e.Field}
}

// MemoryError represents an allocation refused by the tracker's limit.
type MemoryError struct {
	Requested int
	Current   int
	Limit     int
}

func (e *MemoryError) Error() string {
	return fmt.Sprintf("memory allocation failed: requested %d bytes, current %d bytes, limit %d bytes",
		e.Requested, e.Current, e.Limit)
}

func (e *MemoryError) Unwrap() error {
	return ErrAllocationFailed
}

// ToErrorDetail implements DetailedError.
func (e *MemoryError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "memory", Code: "memory_limit"}
}

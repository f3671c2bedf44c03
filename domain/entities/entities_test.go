package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_String(t *testing.T) {
	tests := map[Status]string{
		StatusOK:               "ok",
		StatusInvalidArgument:  "invalid_argument",
		StatusEmptyArray:       "empty_array",
		StatusAllocationFailed: "allocation_failed",
		StatusInternal:         "internal",
		Status(99):             "unknown",
	}
	for s, want := range tests {
		assert.Equal(t, want, s.String())
	}
}

func TestStatus_ABIValues(t *testing.T) {
	assert.Equal(t, int32(0), int32(StatusOK))
	assert.Equal(t, int32(1), int32(StatusInvalidArgument))
	assert.Equal(t, int32(2), int32(StatusEmptyArray))
	assert.Equal(t, int32(3), int32(StatusAllocationFailed))
	assert.Equal(t, int32(4), int32(StatusInternal))
}

func TestDescriptor_Exports(t *testing.T) {
	d := &Descriptor{Exports: []string{SymbolAddOne, SymbolHead}}

	assert.True(t, d.HasExport(SymbolHead))
	assert.False(t, d.HasExport(SymbolTail))
	assert.Equal(t, []string{SymbolTail}, d.MissingExports([]string{SymbolAddOne, SymbolTail}))
	assert.Nil(t, d.MissingExports([]string{SymbolAddOne}))
}

func TestDefaultHostConfig(t *testing.T) {
	cfg := DefaultHostConfig()

	assert.Equal(t, BackendNative, cfg.Backend)
	assert.True(t, cfg.VerifyLayout)
	assert.Equal(t, DefaultSearchDirs, cfg.SearchDirs)

	cfg.SearchDirs[0] = "changed"
	assert.Equal(t, "target/release", DefaultSearchDirs[0], "defaults must be copied")
}

func TestBackend_ArtifactNames(t *testing.T) {
	assert.Equal(t, []string{"intarray.wasm"}, BackendWasm.ArtifactNames())
	assert.Contains(t, BackendNative.ArtifactNames(), "libintarray.so")
	assert.Contains(t, BackendNative.ArtifactNames(), "libintarray.dylib")
}

func TestErrorDetail_Error(t *testing.T) {
	inner := NewErrorDetail("memory", "limit reached")
	outer := NewErrorDetail("argument", "bad input").WithCode("empty_array")
	outer.Wrapped = inner

	assert.Equal(t, "argument: bad input [empty_array]: memory: limit reached", outer.Error())
	assert.Equal(t, "boom", NewErrorDetail("internal", "boom").Error())

	var nilDetail *ErrorDetail
	assert.Equal(t, "", nilDetail.Error())

	d := NewErrorDetail("symbol", "x").WithDetails(map[string]any{"symbol": "tail"})
	assert.Equal(t, "tail", d.Details["symbol"])
}

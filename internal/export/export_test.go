package export

import (
	"encoding/json"
	"testing"

	"github.com/joecorcoran/talks/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetStatus(t *testing.T) {
	assert.Equal(t, entities.StatusEmptyArray, SetStatus("head", entities.StatusEmptyArray))
	assert.Equal(t, entities.StatusEmptyArray, LastStatus())

	SetStatus("head", entities.StatusOK)
	assert.Equal(t, entities.StatusOK, LastStatus())
}

func TestGuard_RecoversPanic(t *testing.T) {
	SetStatus("tail", entities.StatusOK)

	assert.NotPanics(t, func() {
		defer Guard("tail")
		panic("boom")
	})
	assert.Equal(t, entities.StatusInternal, LastStatus())
}

func TestGuard_NoPanicLeavesStatus(t *testing.T) {
	func() {
		defer Guard("head")
		SetStatus("head", entities.StatusOK)
	}()
	assert.Equal(t, entities.StatusOK, LastStatus())
}

func TestDescribe(t *testing.T) {
	data, err := Describe(entities.Wasm32Layout, entities.SymbolAllocate, entities.SymbolDeallocate)
	require.NoError(t, err)

	var d entities.Descriptor
	require.NoError(t, json.Unmarshal(data, &d))
	assert.Equal(t, entities.LibraryName, d.Name)
	assert.Equal(t, entities.LibraryVersion, d.Version)
	assert.Equal(t, entities.Wasm32Layout, d.Layout)
	assert.Empty(t, d.MissingExports(entities.CoreExports))
	assert.True(t, d.HasExport(entities.SymbolAllocate))
	assert.False(t, d.HasExport(entities.SymbolFreeString))
}

//go:build wasip1

package abi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateDeallocate(t *testing.T) {
	FreeAllTracked()

	ptr := allocate(1024)
	require.NotZero(t, ptr, "allocate returned 0")

	stats := Stats()
	assert.Equal(t, 1, stats.Count)
	assert.Equal(t, int64(1024), stats.Bytes)

	data := []byte("hello world")
	copy(View(ptr, uint32(len(data))), data)
	assert.Equal(t, data, View(ptr, uint32(len(data))))

	deallocate(ptr, 1024)
	assert.Zero(t, Stats().Count)
}

func TestAllocate_ZeroSize(t *testing.T) {
	assert.Zero(t, allocate(0), "allocate(0) should return 0")
}

func TestAllocate_LimitReturnsZero(t *testing.T) {
	FreeAllTracked()
	Configure(WithMaxTotalAllocations(1024))
	defer Configure(WithMaxTotalAllocations(DefaultMaxTotalAllocations))

	assert.Zero(t, allocate(2048))
	ptr := allocate(512)
	assert.NotZero(t, ptr)
	deallocate(ptr, 512)
}

func TestDeallocate_Idempotent(t *testing.T) {
	FreeAllTracked()

	ptr := allocate(100)
	deallocate(ptr, 100)
	deallocate(ptr, 100)

	assert.Zero(t, Stats().Bytes)
}

func TestPtrFromBytes(t *testing.T) {
	FreeAllTracked()

	data := []byte("test data")
	packed, err := PtrFromBytes(data)
	require.NoError(t, err)

	ptr, length := UnpackPtrLen(packed)
	assert.NotZero(t, ptr)
	assert.Equal(t, uint32(len(data)), length)
	assert.Equal(t, data, View(ptr, length))

	DeallocatePacked(packed)
	assert.Zero(t, Stats().Count)
}

func TestPtrFromBytes_Empty(t *testing.T) {
	packed, err := PtrFromBytes(nil)
	require.NoError(t, err)
	assert.Zero(t, packed)
	assert.Nil(t, View(0, 0))
	DeallocatePacked(0)
}

func TestDeallocate_IgnoresOtherKinds(t *testing.T) {
	FreeAllTracked()

	ptr, err := Allocate(8, KindArray)
	require.NoError(t, err)

	deallocate(ptr, 8)
	assert.True(t, Owns(ptr, KindArray))
	assert.False(t, Free(ptr, KindMembers))

	assert.True(t, Free(ptr, KindArray))
	assert.Zero(t, Stats().Count)
}

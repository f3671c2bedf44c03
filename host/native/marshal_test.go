//go:build cgo && (linux || darwin)

package native

import (
	"testing"
	"unsafe"

	"github.com/joecorcoran/talks/domain/entities"
	"github.com/joecorcoran/talks/internal/abi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLayout_MatchesNativeLayout(t *testing.T) {
	got := cLayout()

	require.NoError(t, got.Validate())
	assert.Equal(t, entities.NativeLayout(), got)
}

func TestPutArray(t *testing.T) {
	l := &Library{layout: entities.NativeLayout()}

	a, err := l.putArray([]int32{3, 4, 5})
	require.NoError(t, err)
	defer a.free()

	assert.Equal(t, int32(3), int32(a.ptr.length))
	assert.Equal(t, a.members, unsafe.Pointer(a.ptr.members))

	got, err := l.readMembers(uintptr(a.members), 3)
	require.NoError(t, err)
	assert.Equal(t, []int32{3, 4, 5}, got)

	h, err := abi.DecodeHeader(l.layout, unsafe.Slice((*byte)(unsafe.Pointer(a.ptr)), l.layout.Size))
	require.NoError(t, err)
	assert.Equal(t, abi.Header{Length: 3, Members: uint64(uintptr(a.members))}, h)
}

func TestPutArray_Empty(t *testing.T) {
	l := &Library{layout: entities.NativeLayout()}

	a, err := l.putArray(nil)
	require.NoError(t, err)
	defer a.free()

	assert.Equal(t, int32(0), int32(a.ptr.length))
	assert.Nil(t, a.members)
	assert.Nil(t, unsafe.Pointer(a.ptr.members))
}

func TestReadMembers_Empty(t *testing.T) {
	l := &Library{layout: entities.NativeLayout()}

	got, err := l.readMembers(0, 0)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	_, err = l.readMembers(0, 2)
	assert.Error(t, err)
}

func TestCArray_FreeIsIdempotent(t *testing.T) {
	l := &Library{layout: entities.NativeLayout()}

	a, err := l.putArray([]int32{1})
	require.NoError(t, err)
	a.free()
	a.free()
	assert.Nil(t, a.ptr)
}

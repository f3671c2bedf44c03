package abi

import (
	"math"
	"testing"

	"github.com/joecorcoran/talks/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeader_Layouts(t *testing.T) {
	tests := []struct {
		name   string
		layout entities.Layout
		header Header
		want   []byte
	}{
		{
			name:   "wasm32",
			layout: entities.Wasm32Layout,
			header: Header{Length: 3, Members: 0x01020304},
			want:   []byte{3, 0, 0, 0, 0x04, 0x03, 0x02, 0x01},
		},
		{
			name:   "lp64 little endian pads after length",
			layout: entities.LayoutFor(8, entities.LittleEndian),
			header: Header{Length: 2, Members: 0x1122334455667788},
			want: []byte{
				2, 0, 0, 0, 0, 0, 0, 0,
				0x88, 0x77, 0x66, 0x55, 0x44, 0x33, 0x22, 0x11,
			},
		},
		{
			name:   "lp64 big endian",
			layout: entities.LayoutFor(8, entities.BigEndian),
			header: Header{Length: 1, Members: 0x10},
			want: []byte{
				0, 0, 0, 1, 0, 0, 0, 0,
				0, 0, 0, 0, 0, 0, 0, 0x10,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := EncodeHeader(tt.layout, tt.header)
			assert.Equal(t, tt.want, buf)
			require.Len(t, buf, tt.layout.Size)

			got, err := DecodeHeader(tt.layout, buf)
			require.NoError(t, err)
			assert.Equal(t, tt.header, got)
		})
	}
}

func TestHeader_StableAcrossCycles(t *testing.T) {
	layout := entities.NativeLayout()
	h := Header{Length: 5, Members: 0xcafe}

	buf := EncodeHeader(layout, h)
	for range 10 {
		decoded, err := DecodeHeader(layout, buf)
		require.NoError(t, err)
		again := EncodeHeader(layout, decoded)
		require.Equal(t, buf, again)
		require.Len(t, again, layout.Size)
		buf = again
	}
}

func TestDecodeHeader_Short(t *testing.T) {
	_, err := DecodeHeader(entities.Wasm32Layout, make([]byte, 4))
	assert.Error(t, err)
}

func TestMembers(t *testing.T) {
	in := []int32{0, 1, -1, math.MaxInt32, math.MinInt32}
	for _, order := range []entities.ByteOrder{entities.LittleEndian, entities.BigEndian} {
		t.Run(string(order), func(t *testing.T) {
			buf := EncodeMembers(order, in)
			assert.Len(t, buf, len(in)*entities.Int32Size)

			out, err := DecodeMembers(order, buf)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		})
	}
}

func TestDecodeMembers_Empty(t *testing.T) {
	out, err := DecodeMembers(entities.LittleEndian, nil)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestDecodeMembers_Ragged(t *testing.T) {
	_, err := DecodeMembers(entities.LittleEndian, make([]byte, 6))
	assert.Error(t, err)
}

func TestCheckLength(t *testing.T) {
	tests := []struct {
		name   string
		header Header
		want   entities.Status
	}{
		{"valid", Header{Length: 2, Members: 8}, entities.StatusOK},
		{"empty", Header{Length: 0}, entities.StatusEmptyArray},
		{"empty with pointer", Header{Length: 0, Members: 8}, entities.StatusEmptyArray},
		{"negative", Header{Length: -1, Members: 8}, entities.StatusInvalidArgument},
		{"null members", Header{Length: 3}, entities.StatusInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckLength(tt.header))
		})
	}
}

func FuzzMembersRoundTrip(f *testing.F) {
	f.Add([]byte{1, 0, 0, 0, 2, 0, 0, 0})
	f.Add([]byte{})
	f.Fuzz(func(t *testing.T, raw []byte) {
		raw = raw[:len(raw)/entities.Int32Size*entities.Int32Size]
		members, err := DecodeMembers(entities.LittleEndian, raw)
		require.NoError(t, err)
		assert.Equal(t, raw, EncodeMembers(entities.LittleEndian, members))
	})
}

func BenchmarkEncodeMembers(b *testing.B) {
	members := make([]int32, 1024)
	for i := range members {
		members[i] = int32(i)
	}
	b.ReportAllocs()
	for b.Loop() {
		_ = EncodeMembers(entities.LittleEndian, members)
	}
}

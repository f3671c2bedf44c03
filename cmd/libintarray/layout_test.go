//go:build cgo

package main

import (
	"testing"

	"github.com/joecorcoran/talks/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNativeLayout_MatchesComputed(t *testing.T) {
	got := nativeLayout()
	require.NoError(t, got.Validate())
	assert.Equal(t, entities.NativeLayout(), got)
}

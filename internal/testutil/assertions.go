// Package testutil provides common test utilities for the host and library tests.
package testutil

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/joecorcoran/talks/domain/entities"
	"github.com/joecorcoran/talks/domain/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertJSONEqual compares two JSON strings for equality, ignoring formatting
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()

	var expectedJSON, actualJSON interface{}
	require.NoError(t, json.Unmarshal([]byte(expected), &expectedJSON), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal([]byte(actual), &actualJSON), "actual JSON is invalid")

	assert.Equal(t, expectedJSON, actualJSON, msgAndArgs...)
}

// AssertNoLiveAllocations asserts that lib holds no allocations it handed
// out.
func AssertNoLiveAllocations(t *testing.T, lib ports.Library) {
	t.Helper()

	stats, err := lib.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entities.AllocationStats{}, stats, "library leaked allocations")
}

// AssertSplits asserts that head and tail of members reassemble members.
func AssertSplits(t *testing.T, lib ports.Library, members []int32) {
	t.Helper()
	ctx := context.Background()

	head, err := lib.Head(ctx, members)
	require.NoError(t, err)
	tail, err := lib.Tail(ctx, members)
	require.NoError(t, err)

	assert.Equal(t, members, append([]int32{head}, tail...))
}

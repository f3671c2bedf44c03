package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/joecorcoran/talks/domain/entities"
	"github.com/joecorcoran/talks/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMembers(t *testing.T) {
	got, err := parseMembers([]string{"3", "-4", "2147483647"})
	require.NoError(t, err)
	assert.Equal(t, []int32{3, -4, 2147483647}, got)

	_, err = parseMembers([]string{"2147483648"})
	assert.Error(t, err)

	_, err = parseMembers([]string{"three"})
	assert.Error(t, err)
}

func TestReport(t *testing.T) {
	var out bytes.Buffer
	lib := testutil.NewFakeLibrary(entities.NativeLayout())

	require.NoError(t, report(context.Background(), lib, []int32{3, 4, 5}, &out))

	assert.Contains(t, out.String(), "add_one(3) = 4\n")
	assert.Contains(t, out.String(), "head([3 4 5]) = 3\n")
	assert.Contains(t, out.String(), "tail([3 4 5]) = [4 5]\n")
	assert.Contains(t, out.String(), "live allocations: 0 (0 bytes)\n")
}

func TestRun_Schema(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-schema", "descriptor"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &decoded))
	assert.Contains(t, decoded, "properties")
}

func TestRun_LibraryNotFound(t *testing.T) {
	var stdout, stderr bytes.Buffer
	missing := filepath.Join(t.TempDir(), "libintarray.so")

	code := run(context.Background(), []string{"-lib", missing, "1", "2"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), `"type":"load"`)
	assert.Empty(t, stdout.String())
}

func TestRun_BadArgument(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"x"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "not a 32-bit integer")
}

func TestRun_BadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-nope"}, &stdout, &stderr)
	assert.Equal(t, 2, code)
}

// Package arrayops implements the operations exported across the IntArray
// boundary. Both the C-ABI and the wasm artifacts delegate here, so the
// semantics are identical regardless of how the library is loaded.
package arrayops

import (
	"github.com/joecorcoran/talks/domain/errors"
)

// AddOne returns v+1. math.MaxInt32 wraps to math.MinInt32.
func AddOne(v int32) int32 {
	return v + 1
}

// Head returns the first member.
func Head(members []int32) (int32, error) {
	if len(members) == 0 {
		return 0, errors.ErrEmptyArray
	}
	return members[0], nil
}

// Tail returns a fresh copy of every member after the first. members is not
// modified. A singleton yields an empty, non-nil slice.
func Tail(members []int32) ([]int32, error) {
	if len(members) == 0 {
		return nil, errors.ErrEmptyArray
	}
	out := make([]int32, len(members)-1)
	copy(out, members[1:])
	return out, nil
}

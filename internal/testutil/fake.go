package testutil

import (
	"context"

	"github.com/joecorcoran/talks/domain/arrayops"
	"github.com/joecorcoran/talks/domain/entities"
	liberrors "github.com/joecorcoran/talks/domain/errors"
	"github.com/joecorcoran/talks/domain/ports"
)

// FakeLibrary is an in-process ports.Library backed by arrayops. Its
// descriptor and stats can be set to exercise host-side checks.
type FakeLibrary struct {
	Descriptor  *entities.Descriptor
	DescribeErr error
	Live        entities.AllocationStats
	Closed      bool
}

var _ ports.Library = (*FakeLibrary)(nil)

// NewFakeLibrary returns a FakeLibrary describing itself with layout.
func NewFakeLibrary(layout entities.Layout) *FakeLibrary {
	return &FakeLibrary{
		Descriptor: &entities.Descriptor{
			Name:    entities.LibraryName,
			Version: entities.LibraryVersion,
			Layout:  layout,
			Exports: append([]string(nil), entities.CoreExports...),
		},
	}
}

// AddOne implements ports.Library.
func (f *FakeLibrary) AddOne(_ context.Context, value int32) (int32, error) {
	return arrayops.AddOne(value), nil
}

// Head implements ports.Library.
func (f *FakeLibrary) Head(_ context.Context, members []int32) (int32, error) {
	v, err := arrayops.Head(members)
	if err != nil {
		return 0, &liberrors.StatusError{Op: entities.SymbolHeadChecked, Status: entities.StatusEmptyArray}
	}
	return v, nil
}

// HeadRaw implements ports.Library.
func (f *FakeLibrary) HeadRaw(ctx context.Context, members []int32) (int32, error) {
	return f.Head(ctx, members)
}

// Tail implements ports.Library.
func (f *FakeLibrary) Tail(_ context.Context, members []int32) ([]int32, error) {
	rest, err := arrayops.Tail(members)
	if err != nil {
		return nil, &liberrors.StatusError{Op: entities.SymbolTailArray, Status: entities.StatusEmptyArray}
	}
	return rest, nil
}

// TailRaw implements ports.Library.
func (f *FakeLibrary) TailRaw(ctx context.Context, members []int32) ([]int32, error) {
	return f.Tail(ctx, members)
}

// Describe implements ports.Library.
func (f *FakeLibrary) Describe(_ context.Context) (*entities.Descriptor, error) {
	if f.DescribeErr != nil {
		return nil, f.DescribeErr
	}
	return f.Descriptor, nil
}

// Stats implements ports.Library.
func (f *FakeLibrary) Stats(_ context.Context) (entities.AllocationStats, error) {
	return f.Live, nil
}

// Close implements ports.Library.
func (f *FakeLibrary) Close(_ context.Context) error {
	f.Closed = true
	return nil
}

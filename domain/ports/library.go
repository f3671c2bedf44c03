package ports

import (
	"context"

	"github.com/joecorcoran/talks/domain/entities"
)

// Library is a loaded IntArray library as seen from the host. Implementations
// marshal Go slices into the transfer struct, call the export and copy the
// result back out, releasing every library allocation before returning.
type Library interface {
	// AddOne calls add_one.
	AddOne(ctx context.Context, value int32) (int32, error)

	// Head calls head_checked. An empty slice yields errors.ErrEmptyArray.
	Head(ctx context.Context, members []int32) (int32, error)

	// HeadRaw calls the original head symbol and consults last_status.
	HeadRaw(ctx context.Context, members []int32) (int32, error)

	// Tail calls tail_array, whose result carries its own length, and frees
	// it with free_array.
	Tail(ctx context.Context, members []int32) ([]int32, error)

	// TailRaw calls the original tail symbol, reads len(members)-1 values
	// from the returned address and frees it with free_members.
	TailRaw(ctx context.Context, members []int32) ([]int32, error)

	// Describe returns the library's self-description.
	Describe(ctx context.Context) (*entities.Descriptor, error)

	// Stats reports allocations the library has handed out and not had
	// returned.
	Stats(ctx context.Context) (entities.AllocationStats, error)

	// Close unloads the library.
	Close(ctx context.Context) error
}

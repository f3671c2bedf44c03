// Package host opens an IntArray library for use from Go.
//
// It resolves configuration (defaults, YAML file, INTARRAY_* environment,
// functional options), locates the artifact for the selected backend, loads
// it through host/native or host/wasm and verifies that the library lays out
// the transfer struct the way the host encodes it.
//
//	lib, err := host.Open(ctx, host.WithBackend(entities.BackendWasm))
//	if err != nil {
//	    return err
//	}
//	defer lib.Close(ctx)
//
//	rest, err := lib.Tail(ctx, []int32{3, 4, 5})
package host

// Package wazero registers the host module the wasm IntArray library imports.
//
// The library imports a single function, intarray_host.log_message, which
// receives a packed i64 pointer+length of a JSON log record. The adapter:
//
//   - Converts the packed value into a byte slice of guest memory
//   - Enforces a maximum message size
//   - Decodes the record and replays it into the host's slog logger
//
// # Basic Usage
//
//	runtime := wazero.NewRuntime(ctx)
//	err := adapter.RegisterWithRuntime(ctx, runtime,
//	    adapter.WithLogger(slog.Default()),
//	)
package wazero

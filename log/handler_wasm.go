//go:build wasip1

package log

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joecorcoran/talks/internal/abi"
)

// Signature of the host import registered by the wasm host.
//
//go:wasmimport intarray_host log_message
//nolint:revive // intentional snake_case to match WASM import convention
func host_log_message(messagePacked uint64)

// defaultSink copies the message into tracked memory, lets the host read it
// and releases it once the call returns.
func defaultSink(data []byte) {
	packed, err := abi.PtrFromBytes(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "intarray: dropped log message: %v\n", err)
		return
	}
	host_log_message(packed)
	abi.DeallocatePacked(packed)
}

func init() {
	slog.SetDefault(slog.New(NewHandler(WithLevel(slog.LevelDebug))))
}

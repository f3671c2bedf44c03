//go:build !wasip1

package log

import (
	"context"
	"log/slog"
)

// defaultSink replays records into slog.Default outside wasm, e.g. in tests.
func defaultSink(data []byte) {
	msg, err := Decode(data)
	if err != nil {
		return
	}
	Replay(context.Background(), slog.Default(), msg)
}

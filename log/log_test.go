package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToLogAttrWire(t *testing.T) {
	tests := []struct {
		name     string
		attr     slog.Attr
		wantType string
		wantVal  string
	}{
		{
			name:     "string",
			attr:     slog.String("key", "value"),
			wantType: "string",
			wantVal:  "value",
		},
		{
			name:     "int64",
			attr:     slog.Int64("key", 123),
			wantType: "int64",
			wantVal:  "123",
		},
		{
			name:     "uint64",
			attr:     slog.Uint64("key", 7),
			wantType: "uint64",
			wantVal:  "7",
		},
		{
			name:     "bool",
			attr:     slog.Bool("key", true),
			wantType: "bool",
			wantVal:  "true",
		},
		{
			name:     "float64",
			attr:     slog.Float64("key", 1.25),
			wantType: "float64",
			wantVal:  "1.25",
		},
		{
			name:     "time",
			attr:     slog.Time("key", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			wantType: "time",
			wantVal:  "2024-01-01T00:00:00Z",
		},
		{
			name:     "duration",
			attr:     slog.Duration("key", 1*time.Hour),
			wantType: "duration",
			wantVal:  "1h0m0s",
		},
		{
			name:     "error",
			attr:     slog.Any("key", errors.New("empty array")),
			wantType: "error",
			wantVal:  "empty array",
		},
		{
			name:     "nil",
			attr:     slog.Any("key", nil),
			wantType: "any",
			wantVal:  "<nil>",
		},
		{
			name:     "slice as json",
			attr:     slog.Any("key", []int32{4, 5}),
			wantType: "json",
			wantVal:  "[4,5]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire := toLogAttrWire(tt.attr)
			assert.Equal(t, tt.attr.Key, wire.Key)
			assert.Equal(t, tt.wantType, wire.Type)
			assert.Equal(t, tt.wantVal, wire.Value)
		})
	}
}

func TestToLogAttrWire_LogValuer(t *testing.T) {
	wire := toLogAttrWire(slog.Any("key", logValuer{val: "resolved"}))

	assert.Equal(t, "key", wire.Key)
	assert.Equal(t, "string", wire.Type)
	assert.Equal(t, "resolved", wire.Value)
}

type logValuer struct {
	val string
}

func (l logValuer) LogValue() slog.Value {
	return slog.StringValue(l.val)
}

func TestNewHandler_Defaults(t *testing.T) {
	h := NewHandler()
	assert.True(t, h.Enabled(context.TODO(), slog.LevelInfo))
	assert.False(t, h.Enabled(context.TODO(), slog.LevelDebug))
}

func TestNewHandler_Options(t *testing.T) {
	h := NewHandler(WithLevel(slog.LevelDebug), WithSource(true))
	assert.True(t, h.Enabled(context.TODO(), slog.LevelDebug))
}

func capture(t *testing.T, opts ...HandlerOption) (*slog.Logger, func() LogMessageWire) {
	t.Helper()
	var last []byte
	opts = append(opts, WithSink(func(b []byte) { last = b }))
	logger := slog.New(NewHandler(opts...))
	return logger, func() LogMessageWire {
		t.Helper()
		require.NotNil(t, last, "nothing was logged")
		msg, err := Decode(last)
		require.NoError(t, err)
		return msg
	}
}

func TestHandler_Handle(t *testing.T) {
	logger, last := capture(t)

	logger.Warn("rejected call", "symbol", "head", "status", 2)

	msg := last()
	assert.Equal(t, "WARN", msg.Level)
	assert.Equal(t, "rejected call", msg.Message)
	assert.False(t, msg.Timestamp.IsZero())
	assert.Equal(t, []LogAttrWire{
		{Key: "symbol", Type: "string", Value: "head"},
		{Key: "status", Type: "int64", Value: "2"},
	}, msg.Attrs)
	assert.Empty(t, msg.Source)
}

func TestHandler_AttrsAndGroups(t *testing.T) {
	logger, last := capture(t)

	logger.With("lib", "intarray").WithGroup("call").Info("done", "symbol", "tail")

	msg := last()
	assert.Equal(t, []LogAttrWire{
		{Key: "lib", Type: "string", Value: "intarray"},
		{Key: "call.symbol", Type: "string", Value: "tail"},
	}, msg.Attrs)
}

func TestHandler_Source(t *testing.T) {
	logger, last := capture(t, WithSource(true))

	logger.Info("here")

	assert.Contains(t, last().Source, "log_test.go:")
}

func TestHandler_LevelFilter(t *testing.T) {
	called := false
	logger := slog.New(NewHandler(WithSink(func([]byte) { called = true })))

	logger.Debug("hidden")
	assert.False(t, called)
}

func TestReplay(t *testing.T) {
	var buf bytes.Buffer
	host := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	Replay(context.Background(), host, LogMessageWire{
		Level:   "DEBUG",
		Message: "intarray: rejected call",
		Attrs:   []LogAttrWire{{Key: "symbol", Type: "string", Value: "tail"}},
		Source:  "main.go:10",
	}, slog.String("source", "guest"))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "DEBUG", out["level"])
	assert.Equal(t, "intarray: rejected call", out["msg"])
	assert.Equal(t, "tail", out["symbol"])
	assert.Equal(t, "main.go:10", out["guest_source"])
	assert.Equal(t, "guest", out["source"])
}

func TestReplay_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	host := slog.New(slog.NewTextHandler(&buf, nil))

	Replay(context.Background(), host, LogMessageWire{Level: "LOUD", Message: "m"})
	assert.True(t, strings.Contains(buf.String(), "level=INFO"))
}

func TestReplay_RespectsHostLevel(t *testing.T) {
	var buf bytes.Buffer
	host := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	Replay(context.Background(), host, LogMessageWire{Level: "INFO", Message: "m"})
	assert.Empty(t, buf.String())
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte("{"))
	assert.Error(t, err)
}

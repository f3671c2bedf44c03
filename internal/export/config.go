package export

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joecorcoran/talks/internal/abi"
)

// Config is read by a library from its process environment when it loads.
type Config struct {
	// MaxAllocationBytes caps the bytes handed out and not yet freed.
	MaxAllocationBytes int `env:"MAX_ALLOCATION_BYTES" envDefault:"104857600"`
}

// LoadConfig reads INTARRAY_* variables. environ replaces the process
// environment when non-nil.
func LoadConfig(environ map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{Prefix: "INTARRAY_"}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("parse library env: %w", err)
	}
	if cfg.MaxAllocationBytes <= 0 {
		return cfg, fmt.Errorf("INTARRAY_MAX_ALLOCATION_BYTES must be positive, got %d", cfg.MaxAllocationBytes)
	}
	return cfg, nil
}

// TrackerOptions turns the environment into tracker options. A bad
// environment is logged and the defaults are kept.
func TrackerOptions() []abi.TrackerOption {
	cfg, err := LoadConfig(nil)
	if err != nil {
		slog.Warn("intarray: ignoring library environment", "error", err)
		return nil
	}
	return []abi.TrackerOption{abi.WithMaxTotalAllocations(cfg.MaxAllocationBytes)}
}

package host

import (
	"log/slog"

	"github.com/joecorcoran/talks/domain/entities"
	"github.com/joecorcoran/talks/domain/ports"
	"github.com/joecorcoran/talks/infrastructure/parser"
)

// EnvPrefix prefixes every environment variable read by LoadConfig.
const EnvPrefix = "INTARRAY_"

// openConfig holds everything Open needs beyond the HostConfig itself.
type openConfig struct {
	parser     ports.ConfigParser
	logger     *slog.Logger
	environ    map[string]string
	configFile string
	overrides  []func(*entities.HostConfig)
	skipEnv    bool
}

func defaultOpenConfig() openConfig {
	return openConfig{
		parser: parser.NewYamlConfigParser(),
		logger: slog.Default(),
	}
}

// Option configures Open and LoadConfig.
type Option func(*openConfig)

// WithConfigFile reads a YAML HostConfig from path. Values it sets override
// the defaults and are overridden by the environment and other options.
func WithConfigFile(path string) Option {
	return func(c *openConfig) {
		c.configFile = path
	}
}

// WithConfigParser sets a custom config file parser.
func WithConfigParser(p ports.ConfigParser) Option {
	return func(c *openConfig) {
		c.parser = p
	}
}

// WithEnvironment reads INTARRAY_* variables from environ instead of the
// process environment.
func WithEnvironment(environ map[string]string) Option {
	return func(c *openConfig) {
		c.environ = environ
	}
}

// WithoutEnvironment ignores INTARRAY_* variables.
func WithoutEnvironment() Option {
	return func(c *openConfig) {
		c.skipEnv = true
	}
}

// WithLogger sets the logger for load diagnostics and guest logs.
func WithLogger(l *slog.Logger) Option {
	return func(c *openConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBackend selects the native or wasm artifact.
func WithBackend(b entities.Backend) Option {
	return override(func(cfg *entities.HostConfig) {
		cfg.Backend = b
	})
}

// WithLibraryPath loads the artifact at path, skipping discovery.
func WithLibraryPath(path string) Option {
	return override(func(cfg *entities.HostConfig) {
		cfg.LibraryPath = path
	})
}

// WithSearchDirs replaces the directories probed during discovery.
func WithSearchDirs(dirs ...string) Option {
	return override(func(cfg *entities.HostConfig) {
		cfg.SearchDirs = append([]string(nil), dirs...)
	})
}

// WithVerifyLayout enables/disables the descriptor layout check.
// Disable only when loading a library known to share the host's ABI.
func WithVerifyLayout(enabled bool) Option {
	return override(func(cfg *entities.HostConfig) {
		cfg.VerifyLayout = enabled
	})
}

// WithMaxMemoryPages caps wasm linear memory.
func WithMaxMemoryPages(pages uint32) Option {
	return override(func(cfg *entities.HostConfig) {
		cfg.MaxMemoryPages = pages
	})
}

func override(fn func(*entities.HostConfig)) Option {
	return func(c *openConfig) {
		c.overrides = append(c.overrides, fn)
	}
}

package entities

// Backend selects which artifact a host loads.
type Backend string

const (
	// BackendNative loads the C-ABI shared object through dlopen.
	BackendNative Backend = "native"
	// BackendWasm loads the wasip1 module into wazero.
	BackendWasm Backend = "wasm"
)

// DefaultSearchDirs are the conventional build-output locations probed when
// no explicit library path is configured.
var DefaultSearchDirs = []string{"target/release", "."}

// HostConfig controls how a host locates and loads a library.
// Sources apply in order: DefaultHostConfig, YAML file, INTARRAY_* environment,
// functional options.
type HostConfig struct {
	// Backend is "native" or "wasm".
	Backend Backend `json:"backend" yaml:"backend" env:"BACKEND" validate:"required,oneof=native wasm" jsonschema:"enum=native,enum=wasm"`

	// LibraryPath is an explicit artifact path. Discovery is skipped when set.
	LibraryPath string `json:"library_path,omitempty" yaml:"library_path,omitempty" env:"LIBRARY_PATH"`

	// SearchDirs are probed in order for the backend's artifact file names.
	SearchDirs []string `json:"search_dirs,omitempty" yaml:"search_dirs,omitempty" env:"SEARCH_DIRS" envSeparator:":" validate:"required_without=LibraryPath,dive,required"`

	// VerifyLayout compares the library's reported layout with the host's.
	VerifyLayout bool `json:"verify_layout" yaml:"verify_layout" env:"VERIFY_LAYOUT"`

	// MaxMemoryPages caps wasm linear memory (64 KiB pages). Zero keeps the
	// runtime default.
	MaxMemoryPages uint32 `json:"max_memory_pages,omitempty" yaml:"max_memory_pages,omitempty" env:"MAX_MEMORY_PAGES" validate:"lte=65536"`
}

// DefaultHostConfig returns the default host configuration.
func DefaultHostConfig() HostConfig {
	return HostConfig{
		Backend:      BackendNative,
		SearchDirs:   append([]string(nil), DefaultSearchDirs...),
		VerifyLayout: true,
	}
}

// ArtifactNames returns the conventional file names for b, most specific
// first.
func (b Backend) ArtifactNames() []string {
	if b == BackendWasm {
		return []string{"intarray.wasm"}
	}
	return []string{"libintarray.so", "libintarray.dylib", "intarray.dll", "libintarray.dll"}
}

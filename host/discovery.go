package host

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joecorcoran/talks/domain/entities"
	liberrors "github.com/joecorcoran/talks/domain/errors"
)

// ErrLibraryNotFound is wrapped by the LoadError Locate returns when no
// artifact exists in any search directory.
var ErrLibraryNotFound = errors.New("library not found")

// Locate returns the artifact path for cfg: LibraryPath when set, otherwise
// the first of the backend's artifact names found in SearchDirs.
func Locate(cfg entities.HostConfig) (string, error) {
	if cfg.LibraryPath != "" {
		if _, err := os.Stat(cfg.LibraryPath); err != nil {
			return "", &liberrors.LoadError{Path: cfg.LibraryPath, Err: err}
		}
		return cfg.LibraryPath, nil
	}

	names := cfg.Backend.ArtifactNames()
	for _, dir := range cfg.SearchDirs {
		for _, name := range names {
			path := filepath.Join(dir, name)
			info, err := os.Stat(path)
			if err == nil && !info.IsDir() {
				return path, nil
			}
		}
	}
	return "", &liberrors.LoadError{
		Err: fmt.Errorf("%w: %s backend looked for %v in %v", ErrLibraryNotFound, cfg.Backend, names, cfg.SearchDirs),
	}
}

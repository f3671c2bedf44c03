package testutil

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/joecorcoran/talks/domain/entities"
)

// ModuleRoot walks up from the working directory to the directory holding
// go.mod.
func ModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found")
		}
		dir = parent
	}
}

// BuildArtifact builds the library for backend into dir and returns its
// path. Tests call it from TestMain and skip when it fails.
func BuildArtifact(backend entities.Backend, dir string) (string, error) {
	root, err := ModuleRoot()
	if err != nil {
		return "", err
	}

	pkg := "./cmd/libintarray"
	env := os.Environ()
	if backend == entities.BackendWasm {
		pkg = "./cmd/wasmintarray"
		env = append(env, "GOOS=wasip1", "GOARCH=wasm", "CGO_ENABLED=0")
	}

	out := filepath.Join(dir, backend.ArtifactNames()[0])
	cmd := exec.Command("go", "build", "-buildmode=c-shared", "-o", out, pkg) //nolint:gosec // G204: fixed arguments
	cmd.Dir = root
	cmd.Env = env
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("build %s: %w\n%s", out, err, output)
	}
	return out, nil
}

// Package native loads the IntArray C-ABI shared library with dlopen and
// calls its exports through C trampolines.
//
// Inputs are copied into C heap memory encoded per entities.NativeLayout, so
// the library never sees Go pointers. Results the library allocates are
// copied out and released through the paired free export before a call
// returns.
//
// The package requires cgo on a platform with dlfcn.h. Without it, Open
// returns ErrUnsupported.
package native

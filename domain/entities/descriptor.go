package entities

import "slices"

// LibraryName and LibraryVersion identify the artifacts built from this module.
const (
	LibraryName    = "intarray"
	LibraryVersion = "0.1.0"
)

// Exported symbol names.
const (
	SymbolAddOne          = "add_one"
	SymbolHead            = "head"
	SymbolHeadChecked     = "head_checked"
	SymbolTail            = "tail"
	SymbolTailArray       = "tail_array"
	SymbolFreeMembers     = "free_members"
	SymbolFreeArray       = "free_array"
	SymbolLastStatus      = "last_status"
	SymbolLiveAllocations = "live_allocations"
	SymbolDescribe        = "describe"
	SymbolFreeString      = "free_string"
	SymbolAllocate        = "allocate"
	SymbolDeallocate      = "deallocate"
)

// CoreExports lists the symbols every artifact must export.
var CoreExports = []string{
	SymbolAddOne,
	SymbolHead,
	SymbolHeadChecked,
	SymbolTail,
	SymbolTailArray,
	SymbolFreeMembers,
	SymbolFreeArray,
	SymbolLastStatus,
	SymbolLiveAllocations,
	SymbolDescribe,
}

// Descriptor is what a library reports about itself through describe.
// Layout is measured by the compiler that built the library.
type Descriptor struct {
	Name    string   `json:"name" validate:"required"`
	Version string   `json:"version" validate:"required"`
	Layout  Layout   `json:"layout"`
	Exports []string `json:"exports" validate:"required,min=1,dive,required"`
}

// HasExport reports whether the descriptor lists symbol.
func (d *Descriptor) HasExport(symbol string) bool {
	return slices.Contains(d.Exports, symbol)
}

// MissingExports returns the symbols of want that d does not list.
func (d *Descriptor) MissingExports(want []string) []string {
	var missing []string
	for _, s := range want {
		if !d.HasExport(s) {
			missing = append(missing, s)
		}
	}
	return missing
}

// AllocationStats counts allocations a library has handed out and not yet
// had returned.
type AllocationStats struct {
	Count int   `json:"count"`
	Bytes int64 `json:"bytes"`
}

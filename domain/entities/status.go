package entities

// Status is the int32 result code returned by the hardened exports and by
// last_status. The numeric values are part of the ABI.
type Status int32

const (
	StatusOK Status = iota
	StatusInvalidArgument
	StatusEmptyArray
	StatusAllocationFailed
	StatusInternal
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInvalidArgument:
		return "invalid_argument"
	case StatusEmptyArray:
		return "empty_array"
	case StatusAllocationFailed:
		return "allocation_failed"
	case StatusInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Package tensor provides the dense float32 tensor used by the layer builders
// and the typed element descriptions used by the on-disk container format.
package tensor

// DataType represents runtime element type information.
//
// Activations and variables are always Float32. Float64 and Int64 exist so
// that interpolation tables can be written without a lossy conversion.
type DataType int

// Supported data types.
const (
	Float32 DataType = iota
	Float64
	Int64
)

// DefaultDType is the element type of every activation and variable.
const DefaultDType = Float32

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case Float64, Int64:
		return 8
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int64:
		return "int64"
	default:
		return "unknown"
	}
}

// ParseDataType converts a name produced by String back into a DataType.
func ParseDataType(s string) (DataType, bool) {
	switch s {
	case "float32":
		return Float32, true
	case "float64":
		return Float64, true
	case "int64":
		return Int64, true
	default:
		return 0, false
	}
}

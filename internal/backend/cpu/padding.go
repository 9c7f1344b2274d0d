package cpu

import "fmt"

// Padding selects how spatial borders are handled by Conv2D and MaxPool2D.
type Padding string

// Supported padding modes.
const (
	// Same pads so that out = ceil(in / stride).
	Same Padding = "SAME"
	// Valid uses no padding: out = ceil((in - k + 1) / stride).
	Valid Padding = "VALID"
)

// Supported reports whether p names a supported padding mode.
func (p Padding) Supported() bool {
	return p == Same || p == Valid
}

// OutputSize returns the output extent and the leading pad along one axis.
//
// For SAME the total pad is max((out-1)*stride + k - in, 0), split so the
// extra pixel goes to the trailing side.
func (p Padding) OutputSize(in, k, stride int) (out, padBefore int) {
	switch p {
	case Same:
		out = (in + stride - 1) / stride
		total := max((out-1)*stride+k-in, 0)
		return out, total / 2
	case Valid:
		if in < k {
			return 0, 0
		}
		return (in-k)/stride + 1, 0
	default:
		panic(fmt.Sprintf("padding: unsupported mode %q", string(p)))
	}
}

//go:build amd64 || arm64 || arm

package subcrack

import "math"

// Based on constants taken from the 'approximate' library, which collects
// a stack of useful discovered techniques for fast approximate math with
// links to resources:
// https://github.com/ekmett/approximate/blob/master/cbits/fast.c
//
// Only used for the acceptance test, where the argument is a non-positive
// score delta and a few parts per thousand of error do not matter.
func expFast(a float64) float64 {
	if a >= 0 {
		return 1
	}
	if a < -700 {
		return 0
	}
	var ux, vx uint64
	ux = uint64(3248660424278399*a + 0x3fdf127e83d16f12)
	vx = uint64(0x3fdf127e83d16f12 - 3248660424278399*a)
	return math.Float64frombits(ux) / math.Float64frombits(vx)
}

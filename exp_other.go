//go:build !(amd64 || arm64 || arm)

package subcrack

import "math"

func expFast(a float64) float64 {
	if a >= 0 {
		return 1
	}
	return math.Exp(a)
}

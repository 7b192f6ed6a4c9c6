package ledger

import "math"

// Money values are 2-decimal-place quantities. Adding them as raw float64
// accumulates binary drift below the cent, so both helpers scale by 100,
// round to the nearest integer and rescale.

// FloatAdd adds two currency amounts with 2 decimal precision.
func FloatAdd(a, b float64) float64 {
	return math.Round(a*100+b*100) / 100
}

// FloatSubtract subtracts two currency amounts with 2 decimal precision.
func FloatSubtract(a, b float64) float64 {
	return math.Round(a*100-b*100) / 100
}

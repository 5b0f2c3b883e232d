// Package xmath holds small numeric helpers shared by pairgen, extend, and
// delay, kept in one place so the floor/clip conventions in spec.md §4.3 and
// §4.6 are applied identically everywhere they are used.
package xmath

import "math"

// FloorTravelTime applies the numerical floor ptt <- max(ptt, direct) used
// after every passenger-travel-time computation to absorb routing-oracle
// rounding (spec.md §4.3 Step E).
func FloorTravelTime(ptt, direct float64) float64 {
	return math.Max(ptt, direct)
}

// Clip clamps v into [lo, hi]. Used by the delay optimizer to clip the
// centering shift into its feasible range (spec.md §4.6 step 3).
func Clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

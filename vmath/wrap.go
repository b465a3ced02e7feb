package vmath

import "math"

// Wrap folds v into [0, extent). Returns v unchanged for non-positive extent
func Wrap(v, extent float64) float64 {
	if extent <= 0 {
		return v
	}
	if v >= 0 && v < extent {
		return v
	}
	r := math.Mod(v, extent)
	if r < 0 {
		r += extent
	}
	// Mod of a tiny negative value can round up to extent
	if r >= extent {
		r = 0
	}
	return r
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

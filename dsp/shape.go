package dsp

import "golang.org/x/exp/constraints"

// Clamp limits x to [lo, hi]. NaN maps to lo so a bad control voltage can
// never leak into the engine.
func Clamp[T constraints.Float](x, lo, hi T) T {
	if !(x >= lo) {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// QuadraticBipolar squares x while keeping its sign.
func QuadraticBipolar[T constraints.Float](x T) T {
	x2 := x * x
	if x < 0 {
		return -x2
	}
	return x2
}

// QuarticBipolar raises x to the fourth power while keeping its sign.
func QuarticBipolar[T constraints.Float](x T) T {
	x2 := x * x
	x4 := x2 * x2
	if x < 0 {
		return -x4
	}
	return x4
}

// Crossfade blends a into b by t in [0, 1].
func Crossfade[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}

// Rescale maps x linearly from [xMin, xMax] onto [yMin, yMax] without clamping.
func Rescale[T constraints.Float](x, xMin, xMax, yMin, yMax T) T {
	return yMin + (x-xMin)/(xMax-xMin)*(yMax-yMin)
}

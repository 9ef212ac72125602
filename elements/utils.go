package elements

import (
	"math"

	"github.com/cwbudde/algo-approx"
)

const ln2 = 0.69314718055994530942

func pow2Approx(x float32) float32 {
	return approx.FastExp(x * ln2)
}

// noteToFreq converts a fractional MIDI note to Hz.
func noteToFreq(note float32) float32 {
	return 440.0 * pow2Approx((note-69.0)/12.0)
}

// t60Coefficient is the per-sample gain that reaches -60 dB after seconds.
func t60Coefficient(seconds float32, sampleRate float32) float32 {
	if seconds <= 0 {
		return 0
	}
	return float32(math.Exp(-6.907755278982137 / float64(seconds*sampleRate)))
}

// softLimit is a rational tanh approximation that saturates at +/-1.
func softLimit(x float32) float32 {
	if x <= -3 {
		return -1
	}
	if x >= 3 {
		return 1
	}
	x2 := x * x
	return x * (27 + x2) / (27 + 9*x2)
}

func isFinite(x float32) bool {
	return !math.IsNaN(float64(x)) && !math.IsInf(float64(x), 0)
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

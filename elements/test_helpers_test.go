package elements

import (
	"math"
	"testing"
)

// render runs p for n frames with a constant performance state.
func render(p *Part, ps PerformanceState, n int) (main, aux []float32) {
	main = make([]float32, n)
	aux = make([]float32, n)
	for off := 0; off < n; off += BlockSize {
		end := min(off+BlockSize, n)
		p.Process(ps, nil, nil, main[off:end], aux[off:end])
	}
	return main, aux
}

func rms(x []float32) float64 {
	if len(x) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(x)))
}

func requireFinite(t *testing.T, name string, x []float32) {
	t.Helper()
	for i, v := range x {
		if !isFinite(v) {
			t.Fatalf("%s: non-finite sample at %d", name, i)
		}
	}
}

// peakFrequency scans [lo, hi] in 1 Hz steps with a direct DFT.
func peakFrequency(x []float32, lo, hi float64) float64 {
	best, bestMag := lo, -1.0
	for f := lo; f <= hi; f++ {
		w := 2 * math.Pi * f / SampleRate
		var re, im float64
		for i, v := range x {
			re += float64(v) * math.Cos(w*float64(i))
			im -= float64(v) * math.Sin(w*float64(i))
		}
		if mag := re*re + im*im; mag > bestMag {
			best, bestMag = f, mag
		}
	}
	return best
}

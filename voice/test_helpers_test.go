package voice

import (
	"math"
	"testing"
)

// run steps v n times and records both outputs as float64 volts.
func run(v *Voice, n int) (main, aux []float64) {
	main = make([]float64, n)
	aux = make([]float64, n)
	for i := 0; i < n; i++ {
		v.Step()
		main[i] = float64(v.Output(MainOutput))
		aux[i] = float64(v.Output(AuxOutput))
	}
	return main, aux
}

func newVoice(t *testing.T, rate float64) *Voice {
	t.Helper()
	v, err := New(rate, WithSeed(1, 2, 3))
	if err != nil {
		t.Fatalf("New(%v): %v", rate, err)
	}
	return v
}

func requireFinite(t *testing.T, name string, x []float64) {
	t.Helper()
	for i, s := range x {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			t.Fatalf("%s: non-finite sample at %d", name, i)
		}
	}
}


package host

import "sort"

// Event changes the gate or pitch at a given frame.
type Event struct {
	Frame int
	Gate  bool
	Pitch float32
}

// Render drives r offline for frames ticks, applying events on time. blow and
// strike may be shorter than frames or nil; missing input is silence.
func Render(r *Rack, events []Event, blow, strike []float32, frames int) (main, aux []float32) {
	main = make([]float32, frames)
	aux = make([]float32, frames)

	sorted := append([]Event(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Frame < sorted[j].Frame })

	next := 0
	for i := 0; i < frames; i++ {
		for next < len(sorted) && sorted[next].Frame <= i {
			r.SetPitch(sorted[next].Pitch)
			r.SetGate(sorted[next].Gate)
			next++
		}
		main[i], aux[i] = r.Tick(sampleAt(blow, i), sampleAt(strike, i))
	}
	return main, aux
}

func sampleAt(x []float32, i int) float32 {
	if i < len(x) {
		return x[i]
	}
	return 0
}

package elements

import (
	"math"
	"sync"

	"github.com/cwbudde/algo-approx"
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
	pdefd "github.com/cwbudde/algo-pde/fd"
	pdepoisson "github.com/cwbudde/algo-pde/poisson"

	"github.com/cwbudde/algo-elements/dsp"
)

const (
	numModes = 24

	// Grid size for the string eigenproblem. The lowest numModes ratios land
	// within a couple of cents of the ideal harmonic series.
	eigenGrid = 512
)

// modeTables holds log partial ratios of a fixed string (from the discrete
// Dirichlet Laplacian) and log mode orders.
type modeTables struct {
	logRatio [numModes]float32
	logOrder [numModes]float32
}

var loadModeTables = sync.OnceValue(func() modeTables {
	var t modeTables
	ev := pdefd.Eigenvalues(eigenGrid, 1.0/float64(eigenGrid+1), pdepoisson.Dirichlet)
	for k := 0; k < numModes; k++ {
		t.logOrder[k] = float32(math.Log(float64(k + 1)))
		if k < len(ev) && len(ev) > 0 && ev[0] > 0 && ev[k] > 0 {
			// Frequencies scale with sqrt of the Laplacian eigenvalues.
			t.logRatio[k] = float32(0.5 * math.Log(ev[k]/ev[0]))
			continue
		}
		t.logRatio[k] = t.logOrder[k]
	}
	return t
})

type modalResonator struct {
	active int

	cosW    [numModes]float32
	sinW    [numModes]float32
	decay   [numModes]float32
	gainIn  [numModes]float32
	ampMain [numModes]float32
	ampAux  [numModes]float32

	re [numModes]float32
	im [numModes]float32
}

// configure retunes every mode for one block. Geometry bends the partial
// series from a string (k) to a stiff bar (k^2); brightness tilts the
// spectrum and the decay of upper modes; position is the pickup point.
func (r *modalResonator) configure(p *Patch, f0 float32) {
	tables := loadModeTables()

	geometry := dsp.Clamp(p.ResonatorGeometry, 0, 1)
	brightness := dsp.Clamp(p.ResonatorBrightness, 0, 1)
	stretch := 1.0 + geometry*geometry
	tilt := 1.6 - 1.4*brightness
	decaySeconds := 8.0 * approx.FastExp(-5.5*dsp.Clamp(p.ResonatorDamping, 0, 1))
	// Keep both pickups off the fixed ends.
	position := 0.05 + 0.9*dsp.Clamp(p.ResonatorPosition, 0, 1)
	auxPosition := 0.13 + 0.5*position

	nyquistGuard := float32(0.45 * SampleRate)
	r.active = 0
	for k := 0; k < numModes; k++ {
		f := f0 * approx.FastExp(stretch*tables.logRatio[k])
		if f >= nyquistGuard || !isFinite(f) {
			break
		}

		w := 2.0 * math.Pi * float64(f) / SampleRate
		r.cosW[k] = float32(math.Cos(w))
		r.sinW[k] = float32(math.Sin(w))

		t60 := decaySeconds / (1.0 + float32(k)*(0.05+0.25*(1-brightness)))
		d := t60Coefficient(t60, SampleRate)
		r.decay[k] = d
		r.gainIn[k] = float32(math.Sqrt(float64(1 - d*d)))

		rolloff := approx.FastExp(-tilt * tables.logOrder[k])
		order := float64(k + 1)
		r.ampMain[k] = rolloff * float32(math.Sin(math.Pi * order * float64(position)))
		r.ampAux[k] = rolloff * float32(math.Sin(math.Pi * order * float64(auxPosition)))

		r.re[k] = float32(dspcore.FlushDenormals(float64(r.re[k])))
		r.im[k] = float32(dspcore.FlushDenormals(float64(r.im[k])))
		r.active++
	}
	// Modes pushed above the guard stop ringing instead of aliasing.
	for k := r.active; k < numModes; k++ {
		r.re[k], r.im[k] = 0, 0
	}
}

func (r *modalResonator) process(x float32) (main, aux float32) {
	for k := 0; k < r.active; k++ {
		re := r.re[k]*r.cosW[k] - r.im[k]*r.sinW[k]
		im := r.re[k]*r.sinW[k] + r.im[k]*r.cosW[k]
		re = re*r.decay[k] + x*r.gainIn[k]
		im *= r.decay[k]
		r.re[k] = re
		r.im[k] = im
		main += im * r.ampMain[k]
		aux += im * r.ampAux[k]
	}
	return main, aux
}

func (r *modalResonator) reset() {
	r.re = [numModes]float32{}
	r.im = [numModes]float32{}
}

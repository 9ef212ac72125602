package elements

import (
	"math/rand"

	"github.com/cwbudde/algo-elements/dsp"
)

// exciter mixes the bow, blow and strike sources into one drive signal.
type exciter struct {
	rng *rand.Rand

	bowLevel    float32
	bowSlope    float32
	blowLevel   float32
	flow        float32
	strikeLevel float32
	strength    float32

	blowFilter   dsp.OnePole
	strikeFilter dsp.OnePole
	mallet       mallet
}

func newExciter() exciter {
	return exciter{rng: rand.New(rand.NewSource(1))}
}

func (e *exciter) configure(p *Patch, strength float32) {
	e.strength = dsp.Clamp(strength, 0, 1)
	e.bowLevel = p.ExciterBowLevel
	e.blowLevel = p.ExciterBlowLevel
	e.strikeLevel = p.ExciterStrikeLevel
	e.flow = dsp.Clamp(p.ExciterBlowMeta, 0, 1)

	// Low timbre presses the bow harder and slows stick-slip.
	e.bowSlope = 5.0 - 4.0*dsp.Clamp(p.ExciterBowTimbre, 0, 1)

	e.blowFilter.SetCutoff(150*pow2Approx(7.0*p.ExciterBlowTimbre), SampleRate)
	e.strikeFilter.SetCutoff(300*pow2Approx(6.0*p.ExciterStrikeTimbre), SampleRate)
}

// trigger launches the mallet on a gate edge.
func (e *exciter) trigger(hardness float32) {
	e.mallet.strike(e.strength, hardness)
}

// process returns the drive for one sample. env is the bow/blow envelope and
// feedback the latest resonator output, against which the bow rubs.
func (e *exciter) process(blowIn, strikeIn, env, feedback float32) float32 {
	noise := e.rng.Float32()*2 - 1

	var out float32
	if e.bowLevel > 0 {
		dv := 0.3*env*e.strength - feedback
		out += e.bowLevel * dv * bowTable(dv, e.bowSlope)
	}

	breath := env * e.strength * ((1-e.flow)*0.4 + e.flow*noise)
	out += e.blowLevel * e.blowFilter.Process(breath+blowIn)

	hit := e.mallet.step()
	out += e.strikeLevel * e.strikeFilter.Process(hit+strikeIn)
	return out
}

func (e *exciter) reset() {
	e.blowFilter.Reset()
	e.strikeFilter.Reset()
	e.mallet.reset()
}

// bowTable is the classic friction curve: near-sticking for small velocity
// differences, falling off as the hair slips.
func bowTable(dv, slope float32) float32 {
	x := absf(dv*slope) + 0.75
	x2 := x * x
	f := 1.0 / (x2 * x2)
	return dsp.Clamp(f, 0.01, 0.98)
}
